package models

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// CommentModel handles database operations for comments.
type CommentModel struct {
	db     bun.IDB
	logger *zap.Logger
}

// NewComment creates a new comment model.
func NewComment(db bun.IDB, logger *zap.Logger) *CommentModel {
	return &CommentModel{
		db:     db,
		logger: logger.Named("db_comment"),
	}
}

// WithTx returns a copy of the model that runs its queries inside tx.
func (m *CommentModel) WithTx(tx bun.IDB) *CommentModel {
	return &CommentModel{db: tx, logger: m.logger}
}

// Insert appends a comment to an entry.
func (m *CommentModel) Insert(ctx context.Context, comment *types.Comment) error {
	comment.CreatedAt = time.Now()

	_, err := m.db.NewInsert().
		Model(comment).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

// GetByEntry retrieves the comments of an entry, oldest first.
func (m *CommentModel) GetByEntry(ctx context.Context, entryID uint64) ([]*types.Comment, error) {
	var comments []*types.Comment

	err := m.db.NewSelect().
		Model(&comments).
		Where("entry_id = ?", entryID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	return comments, nil
}
