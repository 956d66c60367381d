package notifications

import "context"

type Kind string

const (
	KindWelcome       Kind = "welcome"
	KindPasswordReset Kind = "password_reset"
)

// Message is a rendered plain-text email. Body may carry secrets such as a
// reset link and must never be logged.
type Message struct {
	Kind    Kind
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
