package models

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SubscriptionModel handles database operations for entry subscriptions.
type SubscriptionModel struct {
	db     bun.IDB
	logger *zap.Logger
}

// NewSubscription creates a new SubscriptionModel instance.
func NewSubscription(db bun.IDB, logger *zap.Logger) *SubscriptionModel {
	return &SubscriptionModel{
		db:     db,
		logger: logger.Named("db_subscription"),
	}
}

// WithTx returns a copy of the model that runs its queries inside tx.
func (m *SubscriptionModel) WithTx(tx bun.IDB) *SubscriptionModel {
	return &SubscriptionModel{db: tx, logger: m.logger}
}

// Add subscribes a user to an entry. Subscribing twice is a no-op.
func (m *SubscriptionModel) Add(ctx context.Context, entryID, userID uint64) error {
	_, err := m.db.NewInsert().
		Model(&types.Subscription{
			EntryID:   entryID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}).
		On("CONFLICT (entry_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add subscription: %w", err)
	}

	return nil
}

// Remove unsubscribes a user from an entry. Removing a missing subscription is a no-op.
func (m *SubscriptionModel) Remove(ctx context.Context, entryID, userID uint64) error {
	_, err := m.db.NewDelete().
		Model((*types.Subscription)(nil)).
		Where("entry_id = ?", entryID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}

	return nil
}

// Exists reports whether the user is subscribed to the entry.
func (m *SubscriptionModel) Exists(ctx context.Context, entryID, userID uint64) (bool, error) {
	exists, err := m.db.NewSelect().
		Model((*types.Subscription)(nil)).
		Where("entry_id = ?", entryID).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}

	return exists, nil
}

// GetUserIDs returns the subscribers of an entry in ascending order.
func (m *SubscriptionModel) GetUserIDs(ctx context.Context, entryID uint64) ([]uint64, error) {
	var userIDs []uint64

	err := m.db.NewSelect().
		Model((*types.Subscription)(nil)).
		Column("user_id").
		Where("entry_id = ?", entryID).
		Order("user_id ASC").
		Scan(ctx, &userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscribers: %w", err)
	}

	return userIDs, nil
}

// GetEntryIDs returns the IDs of the entries of a kind that the user is subscribed to.
func (m *SubscriptionModel) GetEntryIDs(ctx context.Context, kind string, userID uint64) ([]uint64, error) {
	var entryIDs []uint64

	err := m.db.NewSelect().
		TableExpr("subscriptions AS s").
		ColumnExpr("s.entry_id").
		Join("JOIN entries AS e ON e.id = s.entry_id").
		Where("s.user_id = ?", userID).
		Where("e.kind = ?", kind).
		Order("s.entry_id ASC").
		Scan(ctx, &entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscribed entries: %w", err)
	}

	return entryIDs, nil
}
