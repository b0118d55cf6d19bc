package voting_test

import (
	"context"
	"testing"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeIdempotent(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := t.Context()
	id := f.entry.ID

	require.NoError(t, f.engine.Subscribe(ctx, id, voter))
	require.NoError(t, f.engine.Subscribe(ctx, id, voter))

	subscribers, err := f.engine.Subscribers(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []uint64{voter}, subscribers)
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := t.Context()
	id := f.entry.ID

	require.NoError(t, f.engine.Subscribe(ctx, id, voter))
	require.NoError(t, f.engine.Unsubscribe(ctx, id, voter))
	require.NoError(t, f.engine.Unsubscribe(ctx, id, voter))

	subscribed, err := f.engine.IsSubscribed(ctx, id, voter)
	require.NoError(t, err)
	assert.False(t, subscribed)
	assert.Empty(t, f.sink.take())
}

func TestSubscriptionErrors(t *testing.T) {
	t.Parallel()

	f := setup(t)

	require.ErrorIs(t, f.engine.Subscribe(t.Context(), f.entry.ID, 0), types.ErrUnauthorized)
	require.ErrorIs(t, f.engine.Unsubscribe(t.Context(), 999, voter), types.ErrEntryNotFound)
}

func TestSubscribedEntryIDs(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := t.Context()

	second := f.store.SeedEntry(types.Entry{Kind: "idea", GrouperID: 7, UserID: owner, Body: "second"})
	review := f.store.SeedEntry(types.Entry{Kind: "review", UserID: owner, Body: "other kind"})

	require.NoError(t, f.engine.Subscribe(ctx, f.entry.ID, voter))
	require.NoError(t, f.engine.Subscribe(ctx, second.ID, voter))

	err := f.store.RunInTx(ctx, func(ctx context.Context, tx voting.Tx) error {
		return tx.Subscribe(ctx, review.ID, voter)
	})
	require.NoError(t, err)

	ids, err := f.engine.SubscribedEntryIDs(ctx, voter)
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.entry.ID, second.ID}, ids)

	ids, err = f.engine.SubscribedEntryIDs(ctx, commenter)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
