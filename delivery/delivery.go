// Package delivery defines the message-delivery collaborator: a plain
// request/response interface business services use to send newsletters and
// parent communication. The core adds no resilience here; callers wrap
// Deliver with the execution primitives when they want retries.
package delivery

import (
	"context"
	"fmt"
	"sync"
)

// Message is one outbound communication.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Deliverer sends a message to its recipient.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}

// Recorder is an in-process Deliverer that records every message instead of
// sending it. Safe for concurrent use; intended for tests and local
// development.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Deliver implements Deliverer by appending the message to the record.
func (r *Recorder) Deliver(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("message recipient is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a snapshot of every recorded message.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}
