package domain

// Channel is a delivery medium for notifications
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelPush  Channel = "PUSH"
	ChannelSlack Channel = "SLACK"
)

// RenderedMessage is the per-channel payload produced from a template
type RenderedMessage struct {
	Channel Channel `json:"channel"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
}

// ErrorKind classifies a failed dispatch attempt
type ErrorKind string

const (
	ErrorKindChannelNotSupported ErrorKind = "CHANNEL_NOT_SUPPORTED"
	ErrorKindTemplateNotFound    ErrorKind = "TEMPLATE_NOT_FOUND"
	ErrorKindTransient           ErrorKind = "TRANSIENT_DELIVERY_FAILURE"
	ErrorKindPermanent           ErrorKind = "PERMANENT_DELIVERY_FAILURE"
	ErrorKindInvalidRecipient    ErrorKind = "INVALID_RECIPIENT"
)

// DispatchOutcome is the result of one per-channel delivery attempt
type DispatchOutcome struct {
	Channel   Channel   `json:"channel"`
	Success   bool      `json:"success"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
