package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"github.com/robalyx/votedentry/internal/notify"
	"go.uber.org/zap"
)

// Transition is what a vote did to the user's vote record.
type Transition int

const (
	// TransitionCreated means the user had not voted and a record was created.
	TransitionCreated Transition = iota
	// TransitionFlipped means the existing record changed direction.
	TransitionFlipped
	// TransitionRemoved means the user repeated their vote and the record was deleted.
	TransitionRemoved
)

func (t Transition) String() string {
	switch t {
	case TransitionCreated:
		return "created"
	case TransitionFlipped:
		return "flipped"
	case TransitionRemoved:
		return "removed"
	default:
		return fmt.Sprintf("Transition(%d)", int(t))
	}
}

// VoteOutcome describes the result of casting a vote.
type VoteOutcome struct {
	// Vote is the user's vote record after the action, nil once toggled off.
	Vote *types.VoteRecord
	// Removed is the deleted record when the vote was toggled off.
	Removed    *types.VoteRecord
	Transition Transition
	// Entry is the entry with its recalculated totals as committed.
	Entry *types.Entry
}

// Cast returns the record the user voted with, whether it was kept or removed.
func (o *VoteOutcome) Cast() *types.VoteRecord {
	if o.Removed != nil {
		return o.Removed
	}
	return o.Vote
}

// CastVote applies a user's vote to an entry.
// Voting with no existing record creates one, repeating the same direction
// removes it and voting the other way flips it. The entry totals are
// recalculated and the voter is subscribed in the same transaction. The entry
// owner is notified after commit unless they voted themselves, including when
// the vote was removed.
func (e *Engine) CastVote(
	ctx context.Context, entryID, userID uint64, direction enum.Direction,
) (*VoteOutcome, error) {
	if userID == 0 {
		return nil, types.ErrUnauthorized
	}
	if !direction.IsValid() {
		return nil, types.NewValidationError("direction", "Direction must be up or down.")
	}

	var outcome *VoteOutcome
	err := e.retryConflicts(ctx, func() error {
		var err error
		outcome, err = e.castVote(ctx, entryID, userID, direction)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	e.logger.Debug("Vote cast",
		zap.Uint64("entryID", entryID),
		zap.Uint64("userID", userID),
		zap.String("direction", direction.String()),
		zap.Stringer("transition", outcome.Transition),
		zap.Int32("resultVotes", outcome.Entry.ResultVotes))

	e.dispatch(ctx, notify.ForVote(
		e.kind.Events, outcome.Entry, outcome.Cast(), outcome.Transition == TransitionRemoved,
	))

	return outcome, nil
}

func (e *Engine) castVote(
	ctx context.Context, entryID, userID uint64, direction enum.Direction,
) (*VoteOutcome, error) {
	outcome := &VoteOutcome{}

	err := e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		entry, err := e.lockEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}

		existing, err := tx.Vote(ctx, entryID, userID)
		if err != nil {
			return err
		}

		switch {
		case existing == nil:
			vote := &types.VoteRecord{
				EntryID:   entryID,
				UserID:    userID,
				Direction: direction,
				CreatedAt: time.Now(),
			}
			if err := tx.InsertVote(ctx, vote); err != nil {
				return err
			}
			outcome.Vote = vote
			outcome.Transition = TransitionCreated

		case existing.Direction == direction:
			if err := tx.DeleteVote(ctx, entryID, userID); err != nil {
				return err
			}
			outcome.Vote = nil
			outcome.Removed = existing
			outcome.Transition = TransitionRemoved

		default:
			existing.Direction = direction
			if err := tx.UpdateVote(ctx, existing); err != nil {
				return err
			}
			outcome.Vote = existing
			outcome.Transition = TransitionFlipped
		}

		if _, err := recalculate(ctx, tx, entry); err != nil {
			return err
		}

		if err := tx.Subscribe(ctx, entryID, userID); err != nil {
			return err
		}

		outcome.Entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}
