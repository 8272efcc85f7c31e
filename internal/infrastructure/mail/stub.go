package mail

import (
	"context"
	"fmt"
	"sync"
)

// StubMailer records messages instead of sending them. Used in
// development and tests when no provider is configured.
type StubMailer struct {
	mu   sync.Mutex
	sent []Message
}

// NewStubMailer creates a new StubMailer
func NewStubMailer() *StubMailer {
	return &StubMailer{}
}

// Send records the message and returns a synthetic message ID
func (m *StubMailer) Send(ctx context.Context, msg *Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, *msg)
	return fmt.Sprintf("stub-%d", len(m.sent)), nil
}

// Sent returns all recorded messages
func (m *StubMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// Ensure StubMailer implements Mailer
var _ Mailer = (*StubMailer)(nil)
