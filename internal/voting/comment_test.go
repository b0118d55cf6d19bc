package voting_test

import (
	"context"
	"strings"
	"testing"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"github.com/robalyx/votedentry/internal/notify"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommentScenario(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := t.Context()
	id := f.entry.ID

	// The voter subscribes by voting
	_, err := f.engine.CastVote(ctx, id, voter, enum.DirectionUp)
	require.NoError(t, err)
	f.sink.take()

	comment, err := f.engine.AddComment(ctx, id, commenter, "I would use this every day")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)
	assert.Equal(t, commenter, comment.UserID)

	assert.Equal(t, []sentNotification{
		{EventType: "idea_comment", Recipients: []uint64{voter}},
		{EventType: "idea_comment_owner", Recipients: []uint64{owner}},
	}, f.sink.take())

	subscribers, err := f.engine.Subscribers(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{voter, commenter}, subscribers)

	// Comments never change the totals
	entry := f.requireConsistent(t, id)
	assert.Equal(t, int32(1), entry.UpVotes)
}

func TestAddCommentFirstCommenterIsNotNotified(t *testing.T) {
	t.Parallel()

	f := setup(t)

	_, err := f.engine.AddComment(t.Context(), f.entry.ID, commenter, "first")
	require.NoError(t, err)
	assert.Equal(t, []sentNotification{
		{EventType: "idea_comment_owner", Recipients: []uint64{owner}},
	}, f.sink.take())

	// Commenting again does not notify the commenter either
	_, err = f.engine.AddComment(t.Context(), f.entry.ID, commenter, "second")
	require.NoError(t, err)
	assert.Equal(t, []sentNotification{
		{EventType: "idea_comment_owner", Recipients: []uint64{owner}},
	}, f.sink.take())
}

func TestAddCommentByOwner(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := t.Context()
	id := f.entry.ID

	require.NoError(t, f.engine.Subscribe(ctx, id, voter))
	require.NoError(t, f.engine.Subscribe(ctx, id, owner))

	_, err := f.engine.AddComment(ctx, id, owner, "Thanks everyone")
	require.NoError(t, err)

	assert.Equal(t, []sentNotification{
		{EventType: "idea_comment", Recipients: []uint64{voter}},
	}, f.sink.take())
}

func TestAddCommentValidation(t *testing.T) {
	t.Parallel()

	f := setup(t, voting.WithMaxBodyLength(10))

	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "whitespace", body: " \n\t "},
		{name: "too long", body: strings.Repeat("a", 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := f.engine.AddComment(t.Context(), f.entry.ID, commenter, tt.body)
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "body")
		})
	}
}

func TestAddCommentNormalizesBody(t *testing.T) {
	t.Parallel()

	f := setup(t)

	// "e" followed by a combining acute accent composes to a single rune
	comment, err := f.engine.AddComment(t.Context(), f.entry.ID, commenter, "  cafe\u0301  ")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", comment.Body)
}

func TestAddCommentErrors(t *testing.T) {
	t.Parallel()

	f := setup(t)

	_, err := f.engine.AddComment(t.Context(), f.entry.ID, 0, "hi")
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = f.engine.AddComment(t.Context(), 999, commenter, "hi")
	require.ErrorIs(t, err, types.ErrEntryNotFound)

	assert.Empty(t, f.sink.take())
}

func TestComments(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := t.Context()

	for _, body := range []string{"one", "two", "three"} {
		_, err := f.engine.AddComment(ctx, f.entry.ID, commenter, body)
		require.NoError(t, err)
	}

	comments, err := f.engine.Comments(ctx, f.entry.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "one", comments[0].Body)
	assert.Equal(t, "three", comments[2].Body)

	_, err = f.engine.Comments(ctx, 999)
	require.ErrorIs(t, err, types.ErrEntryNotFound)
}

type commentExtension struct {
	voting.Watchers
	extra uint64
}

func (e commentExtension) OnCommentAdded(
	_ context.Context, kind *voting.Kind, entry *types.Entry, _ *types.Comment,
) []notify.Notification {
	return []notify.Notification{{
		EventType:  kind.Name + "_moderation",
		Recipients: []uint64{e.extra},
		Payload:    map[string]any{"entry": entry},
	}}
}

func TestAddCommentExtension(t *testing.T) {
	t.Parallel()

	kind := newKind()
	kind.Extension = commentExtension{extra: 99}
	f := setupKind(t, kind)

	_, err := f.engine.AddComment(t.Context(), f.entry.ID, commenter, "hello")
	require.NoError(t, err)

	assert.Equal(t, []sentNotification{
		{EventType: "idea_comment_owner", Recipients: []uint64{owner}},
		{EventType: "idea_moderation", Recipients: []uint64{99}},
	}, f.sink.take())
}
