package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/selvester69/notifications/internal/domain"
)

// Sender delivers a rendered message on one channel. Implementations
// report failure through the returned error only; the registry turns
// it into outcome data so the orchestrator's fan-out loop stays
// uniform.
type Sender interface {
	// Channel returns the delivery channel this sender handles
	Channel() domain.Channel

	// Deliver sends the rendered message to the recipient
	Deliver(ctx context.Context, recipientID string, message domain.RenderedMessage) error
}

// Error is a delivery failure classified for outcome reporting
type Error struct {
	Kind domain.ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient wraps an error as a retryable delivery failure
func Transient(err error) *Error {
	return &Error{Kind: domain.ErrorKindTransient, Err: err}
}

// Permanent wraps an error as a non-retryable delivery failure
func Permanent(err error) *Error {
	return &Error{Kind: domain.ErrorKindPermanent, Err: err}
}

// InvalidRecipient reports a recipient the channel cannot address
func InvalidRecipient(recipientID string) *Error {
	return &Error{Kind: domain.ErrorKindInvalidRecipient, Err: fmt.Errorf("invalid recipient %q", recipientID)}
}

// classify maps a delivery error to its outcome kind. Timeouts and
// unclassified errors count as transient so an external retry of the
// event can still succeed.
func classify(err error) domain.ErrorKind {
	var deliveryErr *Error
	if errors.As(err, &deliveryErr) {
		return deliveryErr.Kind
	}
	return domain.ErrorKindTransient
}
