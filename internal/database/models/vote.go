package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/dbretry"
	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// VoteModel handles database operations for vote records.
type VoteModel struct {
	db     bun.IDB
	logger *zap.Logger
}

// NewVote creates a new VoteModel instance.
func NewVote(db bun.IDB, logger *zap.Logger) *VoteModel {
	return &VoteModel{
		db:     db,
		logger: logger.Named("db_vote"),
	}
}

// WithTx returns a copy of the model that runs its queries inside tx.
func (m *VoteModel) WithTx(tx bun.IDB) *VoteModel {
	return &VoteModel{db: tx, logger: m.logger}
}

// Get retrieves a user's vote on an entry. Returns nil without error if the user has not voted.
func (m *VoteModel) Get(ctx context.Context, entryID, userID uint64) (*types.VoteRecord, error) {
	var vote types.VoteRecord

	err := m.db.NewSelect().
		Model(&vote).
		Where("entry_id = ?", entryID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // absence is a valid state
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}

	return &vote, nil
}

// Insert records a new vote. A racing insert for the same (entry, user) pair
// is reported as types.ErrVoteConflict.
func (m *VoteModel) Insert(ctx context.Context, vote *types.VoteRecord) error {
	vote.CreatedAt = time.Now()

	_, err := m.db.NewInsert().
		Model(vote).
		Exec(ctx)
	if err != nil {
		if dbretry.IsUniqueViolation(err) {
			return fmt.Errorf("%w: entry %d user %d", types.ErrVoteConflict, vote.EntryID, vote.UserID)
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	return nil
}

// UpdateDirection flips the direction of an existing vote.
func (m *VoteModel) UpdateDirection(ctx context.Context, vote *types.VoteRecord) error {
	_, err := m.db.NewUpdate().
		Model(vote).
		Column("direction").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update vote direction: %w", err)
	}

	return nil
}

// Delete removes a user's vote on an entry.
func (m *VoteModel) Delete(ctx context.Context, entryID, userID uint64) error {
	_, err := m.db.NewDelete().
		Model((*types.VoteRecord)(nil)).
		Where("entry_id = ?", entryID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	return nil
}

// Count returns the number of up and down votes recorded for an entry.
func (m *VoteModel) Count(ctx context.Context, entryID uint64) (int32, int32, error) {
	var counts struct {
		Up   int32 `bun:"up"`
		Down int32 `bun:"down"`
	}

	err := m.db.NewSelect().
		Model((*types.VoteRecord)(nil)).
		ColumnExpr("count(*) FILTER (WHERE direction = ?)::int AS up", enum.DirectionUp).
		ColumnExpr("count(*) FILTER (WHERE direction = ?)::int AS down", enum.DirectionDown).
		Where("entry_id = ?", entryID).
		Scan(ctx, &counts)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count votes: %w", err)
	}

	return counts.Up, counts.Down, nil
}

// GetUserDirections returns the user's vote direction keyed by entry ID for entries of a kind.
// A zero grouperID matches entries of every grouper.
func (m *VoteModel) GetUserDirections(
	ctx context.Context, kind string, userID uint64, grouperID uint64,
) (map[uint64]enum.Direction, error) {
	var rows []struct {
		EntryID   uint64         `bun:"entry_id"`
		Direction enum.Direction `bun:"direction"`
	}

	query := m.db.NewSelect().
		TableExpr("vote_records AS v").
		ColumnExpr("v.entry_id, v.direction").
		Join("JOIN entries AS e ON e.id = v.entry_id").
		Where("v.user_id = ?", userID).
		Where("e.kind = ?", kind)
	if grouperID != 0 {
		query = query.Where("e.grouper_id = ?", grouperID)
	}

	if err := query.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to get user votes: %w", err)
	}

	directions := make(map[uint64]enum.Direction, len(rows))
	for _, row := range rows {
		directions[row.EntryID] = row.Direction
	}

	return directions, nil
}
