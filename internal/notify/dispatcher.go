package notify

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Dispatcher hands notifications to a sink after the triggering action has committed.
// Delivery is best effort: failures are logged and never reach the caller.
// A nil Dispatcher, or one without a sink, drops everything.
type Dispatcher struct {
	sink   Sink
	pool   *pool.Pool
	logger *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAsync delivers notifications on a bounded pool of goroutines instead of
// on the caller's goroutine.
func WithAsync(workers int) Option {
	return func(d *Dispatcher) {
		d.pool = pool.New().WithMaxGoroutines(max(workers, 1))
	}
}

// NewDispatcher creates a dispatcher around sink, which may be nil.
func NewDispatcher(sink Sink, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:   sink,
		logger: logger.Named("notify"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enabled reports whether notifications will be delivered anywhere.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.sink != nil
}

// Dispatch delivers each notification that has at least one recipient.
func (d *Dispatcher) Dispatch(ctx context.Context, notifications ...Notification) {
	if !d.Enabled() {
		return
	}

	// Delivery outlives the request that triggered it
	ctx = context.WithoutCancel(ctx)

	for _, n := range notifications {
		if len(n.Recipients) == 0 {
			continue
		}

		if d.pool == nil {
			d.send(ctx, n)
			continue
		}

		d.pool.Go(func() {
			d.send(ctx, n)
		})
	}
}

// Wait blocks until queued notifications are delivered. The dispatcher must
// not be used afterwards when running asynchronously.
func (d *Dispatcher) Wait() {
	if d != nil && d.pool != nil {
		d.pool.Wait()
	}
}

func (d *Dispatcher) send(ctx context.Context, n Notification) {
	if err := d.sink.Send(ctx, n.Recipients, n.EventType, n.Payload); err != nil {
		d.logger.Error("Failed to send notification",
			zap.Error(err),
			zap.String("eventType", n.EventType),
			zap.Uint64s("recipients", n.Recipients))
		return
	}

	d.logger.Debug("Sent notification",
		zap.String("eventType", n.EventType),
		zap.Int("recipients", len(n.Recipients)))
}
