// Package mail delivers transactional email for invoice and quote sends.
package mail

import (
	"context"
)

// Attachment is a file attached to an outgoing message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outgoing email
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	ReplyTo     string
	Attachments []Attachment
}

// Mailer defines the interface for sending email
type Mailer interface {
	// Send delivers the message, returning the provider's message ID
	Send(ctx context.Context, msg *Message) (string, error)
}
