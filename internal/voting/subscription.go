package voting

import (
	"context"
	"fmt"

	"github.com/robalyx/votedentry/internal/database/types"
)

// Subscribe adds a user to an entry's subscribers. Subscribing twice is a no-op.
func (e *Engine) Subscribe(ctx context.Context, entryID, userID uint64) error {
	return e.changeSubscription(ctx, entryID, userID, Tx.Subscribe)
}

// Unsubscribe removes a user from an entry's subscribers. It never notifies anyone
// and does nothing if the user was not subscribed.
func (e *Engine) Unsubscribe(ctx context.Context, entryID, userID uint64) error {
	return e.changeSubscription(ctx, entryID, userID, Tx.Unsubscribe)
}

func (e *Engine) changeSubscription(
	ctx context.Context, entryID, userID uint64,
	change func(Tx, context.Context, uint64, uint64) error,
) error {
	if userID == 0 {
		return types.ErrUnauthorized
	}

	err := e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := e.lockEntry(ctx, tx, entryID); err != nil {
			return err
		}
		return change(tx, ctx, entryID, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return nil
}

// IsSubscribed reports whether a user is subscribed to an entry.
func (e *Engine) IsSubscribed(ctx context.Context, entryID, userID uint64) (bool, error) {
	return e.store.IsSubscribed(ctx, entryID, userID)
}

// Subscribers returns the users subscribed to an entry.
func (e *Engine) Subscribers(ctx context.Context, entryID uint64) ([]uint64, error) {
	return e.store.Subscribers(ctx, entryID)
}

// SubscribedEntryIDs returns the IDs of all entries of this kind the user is subscribed to.
func (e *Engine) SubscribedEntryIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	return e.store.SubscribedEntryIDs(ctx, e.kind.Name, userID)
}
