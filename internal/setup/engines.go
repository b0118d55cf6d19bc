package setup

import (
	"context"
	"fmt"

	"github.com/robalyx/votedentry/internal/metrics"
	"github.com/robalyx/votedentry/internal/notify"
	"github.com/robalyx/votedentry/internal/redis"
	"github.com/robalyx/votedentry/internal/setup/config"
	"github.com/robalyx/votedentry/internal/voting"
	"go.uber.org/zap"
)

// NewNotifier builds the notification dispatcher for the configured sink.
// The redis sink also logs every notification it publishes. Deliveries are
// counted when collector is not nil.
func NewNotifier(
	ctx context.Context, cfg *config.Notification, redisManager *redis.Manager,
	collector *metrics.Collector, logger *zap.Logger,
) (*notify.Dispatcher, error) {
	var sink notify.Sink

	switch cfg.Sink {
	case config.SinkNone:
		logger.Warn("Notifications are disabled")
		return nil, nil
	case config.SinkLog:
		sink = notify.NewLogSink(logger)
	case config.SinkRedis:
		client, err := redisManager.Notifications(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get notification client: %w", err)
		}

		sink = notify.Multi{
			notify.NewRedisSink(client, cfg.Stream, cfg.MaxLen),
			notify.NewLogSink(logger),
		}
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSink, cfg.Sink)
	}

	var opts []notify.Option
	if cfg.Async {
		opts = append(opts, notify.WithAsync(cfg.Workers))
	}

	return notify.NewDispatcher(collector.InstrumentSink(sink), logger, opts...), nil
}

// NewEngines creates one voting engine per configured kind.
func NewEngines(
	cfg *config.CommonConfig, store voting.Store, notifier *notify.Dispatcher, logger *zap.Logger,
) (map[string]*voting.Engine, error) {
	var opts []voting.Option
	if cfg.Voting.MaxBodyLength > 0 {
		opts = append(opts, voting.WithMaxBodyLength(cfg.Voting.MaxBodyLength))
	}

	engines := make(map[string]*voting.Engine, len(cfg.Kinds))
	for _, k := range cfg.Kinds {
		kind := &voting.Kind{
			Name:            k.Name,
			GrouperRequired: k.GrouperRequired,
			BaseURL:         k.BaseURL,
			Events: notify.EventTypes{
				UpVote:       k.Events.UpVote,
				DownVote:     k.Events.DownVote,
				Comment:      k.Events.Comment,
				CommentOwner: k.Events.CommentOwner,
				EntryAdded:   k.Events.EntryAdded,
			},
			Messages: voting.Messages{
				EntryAdded:      k.Messages.EntryAdded,
				ThanksForVoting: k.Messages.ThanksForVoting,
				ConsiderComment: k.Messages.ConsiderComment,
				Unsubscribed:    k.Messages.Unsubscribed,
				CommentAdded:    k.Messages.CommentAdded,
			},
		}
		if len(k.Watchers) > 0 {
			kind.Extension = voting.Watchers(k.Watchers)
		}

		engine, err := voting.NewEngine(kind, store, notifier, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create engine for kind %q: %w", k.Name, err)
		}
		engines[kind.Name] = engine

		logger.Debug("Registered kind",
			zap.String("kind", kind.Name),
			zap.Bool("grouper_required", kind.GrouperRequired))
	}

	return engines, nil
}
