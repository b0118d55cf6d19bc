package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"go.uber.org/zap"
)

// Aggregate holds the cached vote totals of an entry.
type Aggregate struct {
	Up     int32 `json:"up"`
	Down   int32 `json:"down"`
	Result int32 `json:"result"`
}

// Tally counts votes by direction.
func Tally(votes []*types.VoteRecord) Aggregate {
	var agg Aggregate
	for _, vote := range votes {
		switch vote.Direction {
		case enum.DirectionUp:
			agg.Up++
		case enum.DirectionDown:
			agg.Down++
		}
	}
	agg.Result = agg.Up - agg.Down
	return agg
}

// Of returns the totals currently cached on entry.
func Of(entry *types.Entry) Aggregate {
	return Aggregate{Up: entry.UpVotes, Down: entry.DownVotes, Result: entry.ResultVotes}
}

// Apply writes the totals onto entry.
func (a Aggregate) Apply(entry *types.Entry) {
	entry.UpVotes = a.Up
	entry.DownVotes = a.Down
	entry.ResultVotes = a.Result
}

// recalculate recounts the entry's vote records inside tx and saves the totals.
// Every path that creates, flips or deletes a vote record calls it before committing.
func recalculate(ctx context.Context, tx Tx, entry *types.Entry) (Aggregate, error) {
	up, down, err := tx.CountVotes(ctx, entry.ID)
	if err != nil {
		return Aggregate{}, err
	}

	agg := Aggregate{Up: up, Down: down, Result: up - down}
	agg.Apply(entry)
	entry.ModifiedAt = time.Now()

	if err := tx.SaveAggregate(ctx, entry); err != nil {
		return Aggregate{}, err
	}

	return agg, nil
}

// Recalculate recounts the votes of an existing entry and repairs its cached totals.
// It reports whether the stored totals were out of date.
func (e *Engine) Recalculate(ctx context.Context, entryID uint64) (*types.Entry, bool, error) {
	var (
		entry   *types.Entry
		changed bool
	)

	err := e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		entry, err = e.lockEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}

		before := Of(entry)
		after, err := recalculate(ctx, tx, entry)
		if err != nil {
			return err
		}
		changed = before != after

		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to recalculate entry %d: %w", entryID, err)
	}

	if changed {
		e.logger.Info("Repaired vote totals",
			zap.Uint64("entryID", entryID),
			zap.Int32("upVotes", entry.UpVotes),
			zap.Int32("downVotes", entry.DownVotes))
	}

	return entry, changed, nil
}

// EntryIDs returns the IDs of all entries of this engine's kind.
func (e *Engine) EntryIDs(ctx context.Context) ([]uint64, error) {
	return e.store.EntryIDs(ctx, e.kind.Name)
}
