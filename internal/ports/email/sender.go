package email

import "context"

type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender manda email transaccional. La composición es del caller.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
