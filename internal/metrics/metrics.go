package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robalyx/votedentry/internal/notify"
)

// Action outcomes recorded by ObserveAction.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Collector records voting activity as Prometheus metrics.
type Collector struct {
	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	notifications  *prometheus.CounterVec
}

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "votedentry_actions_total",
			Help: "Handled actions by kind, action and outcome.",
		}, []string{"kind", "action", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "votedentry_action_duration_seconds",
			Help:    "Time spent handling an action.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "action"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "votedentry_notifications_total",
			Help: "Notifications handed to the sink by event type and result.",
		}, []string{"event", "result"}),
	}

	reg.MustRegister(c.actions, c.actionDuration, c.notifications)

	return c
}

// ObserveAction records one handled action.
func (c *Collector) ObserveAction(kind, action, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.actions.WithLabelValues(kind, action, outcome).Inc()
	c.actionDuration.WithLabelValues(kind, action).Observe(duration.Seconds())
}

// InstrumentSink wraps sink so every delivery attempt is counted.
func (c *Collector) InstrumentSink(sink notify.Sink) notify.Sink {
	if c == nil || sink == nil {
		return sink
	}

	return notify.SinkFunc(func(ctx context.Context, recipients []uint64, eventType string, payload map[string]any) error {
		err := sink.Send(ctx, recipients, eventType, payload)

		result := "sent"
		if err != nil {
			result = "failed"
		}
		c.notifications.WithLabelValues(eventType, result).Inc()

		return err
	})
}

// Handler returns the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
