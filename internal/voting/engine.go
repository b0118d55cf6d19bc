// Package voting implements voted entries: vote toggling with consistent
// aggregates, comments, subscriptions and the notifications they trigger.
package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/notify"
	"go.uber.org/zap"
)

const (
	// DefaultMaxBodyLength is the default maximum length of entry and comment bodies in runes.
	DefaultMaxBodyLength = 10000

	maxConflictRetries = 5
)

// Engine runs the actions of a single kind of voted entry.
type Engine struct {
	kind          *Kind
	store         Store
	notifier      *notify.Dispatcher
	logger        *zap.Logger
	maxBodyLength int
	newBackOff    func() backoff.BackOff
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxBodyLength limits entry and comment bodies to n runes.
func WithMaxBodyLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxBodyLength = n
		}
	}
}

// WithConflictBackOff sets the backoff used between retries of a conflicting vote.
func WithConflictBackOff(fn func() backoff.BackOff) Option {
	return func(e *Engine) {
		e.newBackOff = fn
	}
}

// NewEngine creates an engine for kind. The notifier may be nil.
func NewEngine(kind *Kind, store Store, notifier *notify.Dispatcher, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		kind:          kind,
		store:         store,
		notifier:      notifier,
		logger:        logger.Named("voting").With(zap.String("kind", kind.Name)),
		maxBodyLength: DefaultMaxBodyLength,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(10*time.Millisecond),
				backoff.WithMaxInterval(200*time.Millisecond),
				backoff.WithMaxElapsedTime(2*time.Second),
			)
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Kind returns the descriptor of the entries this engine manages.
func (e *Engine) Kind() *Kind {
	return e.kind
}

// Entry returns an entry of this engine's kind.
func (e *Engine) Entry(ctx context.Context, id uint64) (*types.Entry, error) {
	entry, err := e.store.Entry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Kind != e.kind.Name {
		return nil, fmt.Errorf("%w: %d", types.ErrEntryNotFound, id)
	}
	return entry, nil
}

// lockEntry locks an entry of this engine's kind inside tx.
func (e *Engine) lockEntry(ctx context.Context, tx Tx, id uint64) (*types.Entry, error) {
	entry, err := tx.LockEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Kind != e.kind.Name {
		return nil, fmt.Errorf("%w: %d", types.ErrEntryNotFound, id)
	}
	return entry, nil
}

// retryConflicts runs fn again while it fails with types.ErrVoteConflict.
func (e *Engine) retryConflicts(ctx context.Context, fn func() error) error {
	attempt := 0
	b := backoff.WithContext(backoff.WithMaxRetries(e.newBackOff(), maxConflictRetries), ctx)

	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, types.ErrVoteConflict) {
			return backoff.Permanent(err)
		}

		e.logger.Debug("Retrying conflicting vote",
			zap.Error(err),
			zap.Int("attempt", attempt))
		return err
	}, b)
}

// dispatch hands notifications to the notifier after a commit.
func (e *Engine) dispatch(ctx context.Context, notifications []notify.Notification) {
	if len(notifications) == 0 {
		return
	}
	e.notifier.Dispatch(ctx, notifications...)
}
