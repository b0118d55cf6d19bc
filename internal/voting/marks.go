package voting

import (
	"context"
	"fmt"

	"github.com/robalyx/votedentry/internal/database/types/enum"
)

const (
	// MarkVoted marks a vote button the user has already pressed.
	MarkVoted = "voted"
	// MarkInactive marks a vote button the user has not pressed.
	MarkInactive = "inactive"
)

// UserVotes returns the user's vote direction keyed by entry ID for entries of
// this kind. A zero grouperID covers every grouper.
func (e *Engine) UserVotes(ctx context.Context, userID, grouperID uint64) (map[uint64]enum.Direction, error) {
	if userID == 0 {
		return map[uint64]enum.Direction{}, nil
	}

	votes, err := e.store.UserVotes(ctx, e.kind.Name, userID, grouperID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user votes: %w", err)
	}

	return votes, nil
}

// VoteMark tells whether the user voted on entryID in the given direction.
func VoteMark(votes map[uint64]enum.Direction, entryID uint64, direction enum.Direction) string {
	if votes[entryID] == direction {
		return MarkVoted
	}
	return MarkInactive
}
