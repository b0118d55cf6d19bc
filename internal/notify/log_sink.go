package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes notifications to a logger. Useful when no delivery backend is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs every notification at info level.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("notify_log")}
}

// Send logs the notification.
func (s *LogSink) Send(_ context.Context, recipients []uint64, eventType string, payload map[string]any) error {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}

	s.logger.Info("Notification",
		zap.String("eventType", eventType),
		zap.Uint64s("recipients", recipients),
		zap.Strings("payload", keys))

	return nil
}
