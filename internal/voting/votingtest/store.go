// Package votingtest provides an in-memory voting.Store for tests.
package votingtest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"github.com/robalyx/votedentry/internal/voting"
)

type pairKey struct {
	entryID uint64
	userID  uint64
}

type state struct {
	entries       map[uint64]types.Entry
	votes         map[pairKey]types.VoteRecord
	comments      []types.Comment
	subscriptions map[pairKey]time.Time
	nextEntryID   uint64
	nextCommentID uint64
}

func (s *state) clone() *state {
	c := &state{
		entries:       make(map[uint64]types.Entry, len(s.entries)),
		votes:         make(map[pairKey]types.VoteRecord, len(s.votes)),
		comments:      slices.Clone(s.comments),
		subscriptions: make(map[pairKey]time.Time, len(s.subscriptions)),
		nextEntryID:   s.nextEntryID,
		nextCommentID: s.nextCommentID,
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.votes {
		c.votes[k] = v
	}
	for k, v := range s.subscriptions {
		c.subscriptions[k] = v
	}
	return c
}

// Store is a voting.Store kept in memory. Transactions are serialized and
// applied atomically on success.
type Store struct {
	mu       sync.Mutex
	state    *state
	races    []types.VoteRecord
	failures map[string]error
	txCount  int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		state: &state{
			entries:       make(map[uint64]types.Entry),
			votes:         make(map[pairKey]types.VoteRecord),
			subscriptions: make(map[pairKey]time.Time),
		},
		failures: make(map[string]error),
	}
}

// SeedEntry stores entry directly, assigning an ID when it has none.
func (s *Store) SeedEntry(entry types.Entry) *types.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == 0 {
		s.state.nextEntryID++
		entry.ID = s.state.nextEntryID
	} else if entry.ID > s.state.nextEntryID {
		s.state.nextEntryID = entry.ID
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
		entry.ModifiedAt = entry.CreatedAt
		entry.UserUpdatedAt = entry.CreatedAt
	}
	s.state.entries[entry.ID] = entry

	return &entry
}

// SeedVote stores a vote record without touching the entry totals.
func (s *Store) SeedVote(vote types.VoteRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.votes[pairKey{vote.EntryID, vote.UserID}] = vote
}

// RaceVote makes the next InsertVote behave as if vote had been committed by a
// concurrent transaction just before it: vote is stored and the insert fails
// with types.ErrVoteConflict.
func (s *Store) RaceVote(vote types.VoteRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.races = append(s.races, vote)
}

// FailNext makes the next call to the named Tx method fail with err.
func (s *Store) FailNext(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// Votes returns the committed vote records of an entry.
func (s *Store) Votes(entryID uint64) []*types.VoteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var votes []*types.VoteRecord
	for key, vote := range s.state.votes {
		if key.entryID == entryID {
			votes = append(votes, &vote)
		}
	}
	slices.SortFunc(votes, func(a, b *types.VoteRecord) int {
		return compareUint64(a.UserID, b.UserID)
	})
	return votes
}

// TxCount returns how many transactions have been started.
func (s *Store) TxCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

// RunInTx implements voting.Store.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx voting.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txCount++
	t := &tx{store: s, state: s.state.clone()}
	if err := fn(ctx, t); err != nil {
		return err
	}

	s.state = t.state
	return nil
}

// Entry implements voting.Store.
func (s *Store) Entry(_ context.Context, id uint64) (*types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.entry(id)
}

// EntryIDs implements voting.Store.
func (s *Store) EntryIDs(_ context.Context, kind string) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uint64
	for id, entry := range s.state.entries {
		if entry.Kind == kind {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Comments implements voting.Store.
func (s *Store) Comments(_ context.Context, entryID uint64) ([]*types.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var comments []*types.Comment
	for _, comment := range s.state.comments {
		if comment.EntryID == entryID {
			comments = append(comments, &comment)
		}
	}
	return comments, nil
}

// Subscribers implements voting.Store.
func (s *Store) Subscribers(_ context.Context, entryID uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.subscribers(entryID), nil
}

// IsSubscribed implements voting.Store.
func (s *Store) IsSubscribed(_ context.Context, entryID, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.subscriptions[pairKey{entryID, userID}]
	return ok, nil
}

// SubscribedEntryIDs implements voting.Store.
func (s *Store) SubscribedEntryIDs(_ context.Context, kind string, userID uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uint64
	for key := range s.state.subscriptions {
		if key.userID == userID && s.state.entries[key.entryID].Kind == kind {
			ids = append(ids, key.entryID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// UserVotes implements voting.Store.
func (s *Store) UserVotes(_ context.Context, kind string, userID, grouperID uint64) (map[uint64]enum.Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	votes := make(map[uint64]enum.Direction)
	for key, vote := range s.state.votes {
		entry := s.state.entries[key.entryID]
		if key.userID != userID || entry.Kind != kind {
			continue
		}
		if grouperID != 0 && entry.GrouperID != grouperID {
			continue
		}
		votes[key.entryID] = vote.Direction
	}
	return votes, nil
}

func (s *state) entry(id uint64) (*types.Entry, error) {
	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", types.ErrEntryNotFound, id)
	}
	return &entry, nil
}

func (s *state) subscribers(entryID uint64) []uint64 {
	var users []uint64
	for key := range s.subscriptions {
		if key.entryID == entryID {
			users = append(users, key.userID)
		}
	}
	slices.Sort(users)
	return users
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
