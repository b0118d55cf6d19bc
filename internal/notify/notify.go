// Package notify computes who hears about activity on a voted entry and hands
// the resulting notifications to an optional delivery sink.
package notify

import (
	"context"
	"errors"
)

// Sink delivers notifications. Delivery itself is outside this package.
type Sink interface {
	Send(ctx context.Context, recipients []uint64, eventType string, payload map[string]any) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, recipients []uint64, eventType string, payload map[string]any) error

// Send calls f.
func (f SinkFunc) Send(ctx context.Context, recipients []uint64, eventType string, payload map[string]any) error {
	return f(ctx, recipients, eventType, payload)
}

// Notification is a single event addressed to a set of users.
type Notification struct {
	EventType  string
	Recipients []uint64
	Payload    map[string]any
}

// Multi fans out every notification to all sinks and joins their errors.
type Multi []Sink

// Send delivers to each sink even if an earlier one fails.
func (m Multi) Send(ctx context.Context, recipients []uint64, eventType string, payload map[string]any) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Send(ctx, recipients, eventType, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
