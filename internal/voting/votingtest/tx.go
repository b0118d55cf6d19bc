package votingtest

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
)

type tx struct {
	store *Store
	state *state
}

// fail returns the injected failure for method, if any. The store mutex is held.
func (t *tx) fail(method string) error {
	err, ok := t.store.failures[method]
	if !ok {
		return nil
	}
	delete(t.store.failures, method)
	return err
}

func (t *tx) LockEntry(_ context.Context, id uint64) (*types.Entry, error) {
	if err := t.fail("LockEntry"); err != nil {
		return nil, err
	}
	return t.state.entry(id)
}

func (t *tx) InsertEntry(_ context.Context, entry *types.Entry) error {
	if err := t.fail("InsertEntry"); err != nil {
		return err
	}
	t.state.nextEntryID++
	entry.ID = t.state.nextEntryID
	t.state.entries[entry.ID] = *entry
	return nil
}

func (t *tx) UpdateEntryBody(_ context.Context, entry *types.Entry) error {
	if err := t.fail("UpdateEntryBody"); err != nil {
		return err
	}
	stored, err := t.state.entry(entry.ID)
	if err != nil {
		return err
	}
	stored.Body = entry.Body
	stored.ModifiedAt = entry.ModifiedAt
	stored.UserUpdatedAt = entry.UserUpdatedAt
	t.state.entries[entry.ID] = *stored
	return nil
}

func (t *tx) SaveAggregate(_ context.Context, entry *types.Entry) error {
	if err := t.fail("SaveAggregate"); err != nil {
		return err
	}
	stored, err := t.state.entry(entry.ID)
	if err != nil {
		return err
	}
	stored.UpVotes = entry.UpVotes
	stored.DownVotes = entry.DownVotes
	stored.ResultVotes = entry.ResultVotes
	stored.ModifiedAt = entry.ModifiedAt
	t.state.entries[entry.ID] = *stored
	return nil
}

func (t *tx) Vote(_ context.Context, entryID, userID uint64) (*types.VoteRecord, error) {
	if err := t.fail("Vote"); err != nil {
		return nil, err
	}
	vote, ok := t.state.votes[pairKey{entryID, userID}]
	if !ok {
		return nil, nil //nolint:nilnil // absence is a valid state
	}
	return &vote, nil
}

func (t *tx) InsertVote(_ context.Context, vote *types.VoteRecord) error {
	if err := t.fail("InsertVote"); err != nil {
		return err
	}

	key := pairKey{vote.EntryID, vote.UserID}

	if len(t.store.races) > 0 {
		race := t.store.races[0]
		t.store.races = t.store.races[1:]
		t.store.state.votes[pairKey{race.EntryID, race.UserID}] = race
		return fmt.Errorf("%w: entry %d user %d", types.ErrVoteConflict, vote.EntryID, vote.UserID)
	}

	if _, ok := t.state.votes[key]; ok {
		return fmt.Errorf("%w: entry %d user %d", types.ErrVoteConflict, vote.EntryID, vote.UserID)
	}

	t.state.votes[key] = *vote
	return nil
}

func (t *tx) UpdateVote(_ context.Context, vote *types.VoteRecord) error {
	if err := t.fail("UpdateVote"); err != nil {
		return err
	}
	t.state.votes[pairKey{vote.EntryID, vote.UserID}] = *vote
	return nil
}

func (t *tx) DeleteVote(_ context.Context, entryID, userID uint64) error {
	if err := t.fail("DeleteVote"); err != nil {
		return err
	}
	delete(t.state.votes, pairKey{entryID, userID})
	return nil
}

func (t *tx) CountVotes(_ context.Context, entryID uint64) (int32, int32, error) {
	if err := t.fail("CountVotes"); err != nil {
		return 0, 0, err
	}

	var up, down int32
	for key, vote := range t.state.votes {
		if key.entryID != entryID {
			continue
		}
		switch vote.Direction {
		case enum.DirectionUp:
			up++
		case enum.DirectionDown:
			down++
		}
	}
	return up, down, nil
}

func (t *tx) InsertComment(_ context.Context, comment *types.Comment) error {
	if err := t.fail("InsertComment"); err != nil {
		return err
	}
	t.state.nextCommentID++
	comment.ID = t.state.nextCommentID
	t.state.comments = append(t.state.comments, *comment)
	return nil
}

func (t *tx) Subscribe(_ context.Context, entryID, userID uint64) error {
	if err := t.fail("Subscribe"); err != nil {
		return err
	}
	key := pairKey{entryID, userID}
	if _, ok := t.state.subscriptions[key]; !ok {
		t.state.subscriptions[key] = time.Now()
	}
	return nil
}

func (t *tx) Unsubscribe(_ context.Context, entryID, userID uint64) error {
	if err := t.fail("Unsubscribe"); err != nil {
		return err
	}
	delete(t.state.subscriptions, pairKey{entryID, userID})
	return nil
}

func (t *tx) Subscribers(_ context.Context, entryID uint64) ([]uint64, error) {
	if err := t.fail("Subscribers"); err != nil {
		return nil, err
	}
	return t.state.subscribers(entryID), nil
}
