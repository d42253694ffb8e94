package dispatch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/config"
	"github.com/selvester69/notifications/internal/domain"
)

func assertErrorKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	var deliveryErr *Error
	assert.True(t, errors.As(err, &deliveryErr), "expected a classified delivery error, got %v", err)
	assert.Equal(t, kind, deliveryErr.Kind)
}

func TestEmailSender_Deliver_Success(t *testing.T) {
	var sentTo string
	sender := &EmailSender{
		addr: "localhost:25",
		from: "no-reply@example.com",
		send: func(addr, from, to string, payload []byte) error {
			sentTo = to
			assert.Contains(t, string(payload), "Subject: Order 42 shipped")
			return nil
		},
		log: zap.NewNop(),
	}

	err := sender.Deliver(context.Background(), "ada@example.com", domain.RenderedMessage{
		Channel: domain.ChannelEmail,
		Subject: "Order 42 shipped",
		Body:    "On its way",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ada@example.com", sentTo)
}

func TestEmailSender_Deliver_InvalidRecipient(t *testing.T) {
	sender := NewEmailSender(config.Senders{}, zap.NewNop())

	err := sender.Deliver(context.Background(), "not-an-address", domain.RenderedMessage{})

	assertErrorKind(t, err, domain.ErrorKindInvalidRecipient)
}

func TestEmailSender_Deliver_SMTPErrorIsTransient(t *testing.T) {
	sender := &EmailSender{
		addr: "localhost:25",
		from: "no-reply@example.com",
		send: func(addr, from, to string, payload []byte) error {
			return errors.New("connection refused")
		},
		log: zap.NewNop(),
	}

	err := sender.Deliver(context.Background(), "ada@example.com", domain.RenderedMessage{})

	assertErrorKind(t, err, domain.ErrorKindTransient)
}

func TestEmailSender_UnresponsiveServerBoundedByTimeout(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer func() { _ = listener.Close() }()

	// accept connections but never send the SMTP greeting
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn
		}
	}()

	host, port, err := net.SplitHostPort(listener.Addr().String())
	assert.NoError(t, err)

	registry, err := NewRegistry(100*time.Millisecond, zap.NewNop(),
		NewEmailSender(config.Senders{
			SMTPHost: host,
			SMTPPort: port,
			SMTPFrom: "no-reply@example.com",
		}, zap.NewNop()))
	assert.NoError(t, err)

	done := make(chan domain.DispatchOutcome, 1)
	go func() {
		done <- registry.Dispatch(context.Background(), "ada@example.com", domain.RenderedMessage{
			Channel: domain.ChannelEmail,
			Subject: "hi",
			Body:    "body",
		})
	}()

	select {
	case outcome := <-done:
		assert.False(t, outcome.Success)
		assert.Equal(t, domain.ErrorKindTransient, outcome.ErrorKind)
		assert.Contains(t, outcome.Detail, "timed out")
	case <-time.After(3 * time.Second):
		t.Fatal("Dispatch did not return after the timeout elapsed")
	}
}

func TestSMSSender_Deliver_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewSMSSender(config.Senders{SMSGatewayURL: server.URL}, zap.NewNop())

	err := sender.Deliver(context.Background(), "+4915112345678", domain.RenderedMessage{
		Channel: domain.ChannelSMS,
		Body:    "Order 42 shipped",
	})

	assert.NoError(t, err)
}

func TestSMSSender_Deliver_InvalidRecipient(t *testing.T) {
	sender := NewSMSSender(config.Senders{}, zap.NewNop())

	err := sender.Deliver(context.Background(), "user-123", domain.RenderedMessage{})

	assertErrorKind(t, err, domain.ErrorKindInvalidRecipient)
}

func TestSMSSender_Deliver_GatewayRejectionIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewSMSSender(config.Senders{SMSGatewayURL: server.URL}, zap.NewNop())

	err := sender.Deliver(context.Background(), "+4915112345678", domain.RenderedMessage{})

	assertErrorKind(t, err, domain.ErrorKindPermanent)
}

func TestSMSSender_Deliver_GatewayOutageIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sender := NewSMSSender(config.Senders{SMSGatewayURL: server.URL}, zap.NewNop())

	err := sender.Deliver(context.Background(), "+4915112345678", domain.RenderedMessage{})

	assertErrorKind(t, err, domain.ErrorKindTransient)
}

func TestPushSender_Deliver_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewPushSender(config.Senders{PushGatewayURL: server.URL}, zap.NewNop())

	err := sender.Deliver(context.Background(), "device-token-1", domain.RenderedMessage{
		Channel: domain.ChannelPush,
		Subject: "Order shipped",
		Body:    "Order 42 shipped",
	})

	assert.NoError(t, err)
}

func TestPushSender_Deliver_EmptyToken(t *testing.T) {
	sender := NewPushSender(config.Senders{}, zap.NewNop())

	err := sender.Deliver(context.Background(), "", domain.RenderedMessage{})

	assertErrorKind(t, err, domain.ErrorKindInvalidRecipient)
}

// mockSlackAPI fakes the Slack chat.postMessage call
type mockSlackAPI struct {
	err      error
	lastChan string
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.lastChan = channelID
	return channelID, "", m.err
}

func TestSlackSender_Deliver_Success(t *testing.T) {
	api := &mockSlackAPI{}
	sender := &SlackSender{client: api, log: zap.NewNop()}

	err := sender.Deliver(context.Background(), "C0123456", domain.RenderedMessage{
		Channel: domain.ChannelSlack,
		Subject: "Order shipped",
		Body:    "Order 42 shipped",
	})

	assert.NoError(t, err)
	assert.Equal(t, "C0123456", api.lastChan)
}

func TestSlackSender_Deliver_ChannelNotFound(t *testing.T) {
	api := &mockSlackAPI{err: errors.New("channel_not_found")}
	sender := &SlackSender{client: api, log: zap.NewNop()}

	err := sender.Deliver(context.Background(), "C404", domain.RenderedMessage{})

	assertErrorKind(t, err, domain.ErrorKindInvalidRecipient)
}

func TestSlackSender_Deliver_BadTokenIsPermanent(t *testing.T) {
	api := &mockSlackAPI{err: errors.New("invalid_auth")}
	sender := &SlackSender{client: api, log: zap.NewNop()}

	err := sender.Deliver(context.Background(), "C0123456", domain.RenderedMessage{})

	assertErrorKind(t, err, domain.ErrorKindPermanent)
}
