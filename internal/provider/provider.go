package provider

import "context"

// Message is one outbound campaign email, fully rendered.
type Message struct {
	To        string
	ToName    string
	FromName  string
	FromEmail string
	Subject   string
	HTML      string
	Text      string
}

// Sender is the outbound email delivery port.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
