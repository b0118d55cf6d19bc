package voting_test

import (
	"context"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/notify"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/robalyx/votedentry/internal/voting/votingtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	owner     uint64 = 1
	voter     uint64 = 2
	commenter uint64 = 3
	grouper   uint64 = 42
)

type sentNotification struct {
	EventType  string
	Recipients []uint64
}

type recordingSink struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (s *recordingSink) Send(_ context.Context, recipients []uint64, eventType string, _ map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentNotification{EventType: eventType, Recipients: recipients})
	return nil
}

// take returns and clears the notifications sent so far.
func (s *recordingSink) take() []sentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	sent := s.sent
	s.sent = nil
	return sent
}

type fixture struct {
	engine *voting.Engine
	store  *votingtest.Store
	sink   *recordingSink
	entry  *types.Entry
}

func newKind() *voting.Kind {
	return &voting.Kind{
		Name:            "idea",
		GrouperRequired: true,
		BaseURL:         "/projects/{grouper}/ideas/",
	}
}

func setup(t *testing.T, opts ...voting.Option) *fixture {
	t.Helper()
	return setupKind(t, newKind(), opts...)
}

func setupKind(t *testing.T, kind *voting.Kind, opts ...voting.Option) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := votingtest.New()
	sink := &recordingSink{}

	opts = append([]voting.Option{
		voting.WithConflictBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	}, opts...)

	engine, err := voting.NewEngine(kind, store, notify.NewDispatcher(sink, logger), logger, opts...)
	require.NoError(t, err)

	entry := store.SeedEntry(types.Entry{
		Kind:      kind.Name,
		GrouperID: grouper,
		UserID:    owner,
		Body:      "Add a dark mode",
	})

	return &fixture{engine: engine, store: store, sink: sink, entry: entry}
}

// requireConsistent checks that the cached totals of an entry match its vote records.
func (f *fixture) requireConsistent(t *testing.T, entryID uint64) *types.Entry {
	t.Helper()

	entry, err := f.engine.Entry(t.Context(), entryID)
	require.NoError(t, err)

	agg := voting.Tally(f.store.Votes(entryID))
	require.Equal(t, agg, voting.Of(entry), "cached totals diverged from vote records")
	require.Equal(t, entry.UpVotes-entry.DownVotes, entry.ResultVotes)

	return entry
}

func TestNewEngineRejectsInvalidKind(t *testing.T) {
	t.Parallel()

	_, err := voting.NewEngine(&voting.Kind{Name: "Bad Name", BaseURL: "/x/"},
		votingtest.New(), nil, zaptest.NewLogger(t))
	require.ErrorIs(t, err, voting.ErrInvalidKindName)
}
