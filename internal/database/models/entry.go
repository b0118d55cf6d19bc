package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// EntryModel handles database operations for voted entries.
type EntryModel struct {
	db     bun.IDB
	logger *zap.Logger
}

// NewEntry creates a new EntryModel instance.
func NewEntry(db bun.IDB, logger *zap.Logger) *EntryModel {
	return &EntryModel{
		db:     db,
		logger: logger.Named("db_entry"),
	}
}

// WithTx returns a copy of the model that runs its queries inside tx.
func (m *EntryModel) WithTx(tx bun.IDB) *EntryModel {
	return &EntryModel{db: tx, logger: m.logger}
}

// GetByID retrieves an entry by its ID.
func (m *EntryModel) GetByID(ctx context.Context, id uint64) (*types.Entry, error) {
	return m.get(ctx, id, false)
}

// LockByID retrieves an entry and locks its row until the surrounding transaction ends.
func (m *EntryModel) LockByID(ctx context.Context, id uint64) (*types.Entry, error) {
	return m.get(ctx, id, true)
}

func (m *EntryModel) get(ctx context.Context, id uint64, lock bool) (*types.Entry, error) {
	var entry types.Entry

	query := m.db.NewSelect().
		Model(&entry).
		Where("id = ?", id)
	if lock {
		query = query.For("UPDATE")
	}

	err := query.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return &entry, nil
}

// Insert creates a new entry and fills in its generated ID.
func (m *EntryModel) Insert(ctx context.Context, entry *types.Entry) error {
	now := time.Now()
	entry.CreatedAt = now
	entry.ModifiedAt = now
	entry.UserUpdatedAt = now

	_, err := m.db.NewInsert().
		Model(entry).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	m.logger.Debug("Inserted entry",
		zap.Uint64("entryID", entry.ID),
		zap.String("kind", entry.Kind),
		zap.Uint64("userID", entry.UserID))

	return nil
}

// UpdateBody saves a new body written by the entry's creator.
func (m *EntryModel) UpdateBody(ctx context.Context, entry *types.Entry) error {
	now := time.Now()
	entry.ModifiedAt = now
	entry.UserUpdatedAt = now

	_, err := m.db.NewUpdate().
		Model(entry).
		Column("body", "modified_at", "user_updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update entry body: %w", err)
	}

	return nil
}

// SaveAggregate persists the cached vote totals of an entry.
func (m *EntryModel) SaveAggregate(ctx context.Context, entry *types.Entry) error {
	entry.ModifiedAt = time.Now()

	_, err := m.db.NewUpdate().
		Model(entry).
		Column("up_votes", "down_votes", "result_votes", "modified_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save entry aggregate: %w", err)
	}

	return nil
}

// GetIDsByKind returns the IDs of every entry of a kind in ascending order.
func (m *EntryModel) GetIDsByKind(ctx context.Context, kind string) ([]uint64, error) {
	var ids []uint64

	err := m.db.NewSelect().
		Model((*types.Entry)(nil)).
		Column("id").
		Where("kind = ?", kind).
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry IDs: %w", err)
	}

	return ids, nil
}
