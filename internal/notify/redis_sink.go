package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "votedentry:notifications"

// RedisSink appends notifications to a Redis stream for an external deliverer to consume.
type RedisSink struct {
	client rueidis.Client
	stream string
	maxLen int64
}

// NewRedisSink creates a sink writing to stream. A positive maxLen approximately
// caps the stream length.
func NewRedisSink(client rueidis.Client, stream string, maxLen int64) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}

	return &RedisSink{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Send adds one stream entry per notification.
func (s *RedisSink) Send(ctx context.Context, recipients []uint64, eventType string, payload map[string]any) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	ids := make([]string, len(recipients))
	for i, id := range recipients {
		ids[i] = strconv.FormatUint(id, 10)
	}

	var cmd rueidis.Completed
	if s.maxLen > 0 {
		cmd = s.client.B().Xadd().Key(s.stream).
			Maxlen().Almost().Threshold(strconv.FormatInt(s.maxLen, 10)).
			Id("*").FieldValue().
			FieldValue("id", uuid.NewString()).
			FieldValue("event", eventType).
			FieldValue("recipients", strings.Join(ids, ",")).
			FieldValue("payload", string(data)).
			FieldValue("created_at", time.Now().UTC().Format(time.RFC3339Nano)).
			Build()
	} else {
		cmd = s.client.B().Xadd().Key(s.stream).
			Id("*").FieldValue().
			FieldValue("id", uuid.NewString()).
			FieldValue("event", eventType).
			FieldValue("recipients", strings.Join(ids, ",")).
			FieldValue("payload", string(data)).
			FieldValue("created_at", time.Now().UTC().Format(time.RFC3339Nano)).
			Build()
	}

	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to append notification to stream %s: %w", s.stream, err)
	}

	return nil
}
