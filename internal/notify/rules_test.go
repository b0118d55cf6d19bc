package notify_test

import (
	"testing"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"github.com/robalyx/votedentry/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEvents = notify.EventTypes{
	UpVote:       "idea_up_vote",
	DownVote:     "idea_down_vote",
	Comment:      "idea_comment",
	CommentOwner: "idea_comment_owner",
	EntryAdded:   "idea_added",
}

func TestForVote(t *testing.T) {
	t.Parallel()

	entry := &types.Entry{ID: 1, UserID: 10}

	tests := []struct {
		name      string
		vote      *types.VoteRecord
		removed   bool
		wantEvent string
	}{
		{
			name:      "up vote from another user",
			vote:      &types.VoteRecord{EntryID: 1, UserID: 20, Direction: enum.DirectionUp},
			wantEvent: "idea_up_vote",
		},
		{
			name:      "down vote from another user",
			vote:      &types.VoteRecord{EntryID: 1, UserID: 20, Direction: enum.DirectionDown},
			wantEvent: "idea_down_vote",
		},
		{
			name: "owner votes on own entry",
			vote: &types.VoteRecord{EntryID: 1, UserID: 10, Direction: enum.DirectionUp},
		},
		{
			name:      "up vote removed",
			vote:      &types.VoteRecord{EntryID: 1, UserID: 20, Direction: enum.DirectionUp},
			removed:   true,
			wantEvent: "idea_up_vote",
		},
		{
			name:      "down vote removed",
			vote:      &types.VoteRecord{EntryID: 1, UserID: 20, Direction: enum.DirectionDown},
			removed:   true,
			wantEvent: "idea_down_vote",
		},
		{
			name:    "owner removes own vote",
			vote:    &types.VoteRecord{EntryID: 1, UserID: 10, Direction: enum.DirectionDown},
			removed: true,
		},
		{
			name: "no vote",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := notify.ForVote(testEvents, entry, tt.vote, tt.removed)
			if tt.wantEvent == "" {
				assert.Empty(t, got)
				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, tt.wantEvent, got[0].EventType)
			assert.Equal(t, []uint64{10}, got[0].Recipients)
			assert.Same(t, tt.vote, got[0].Payload["vote"])
			assert.Equal(t, tt.removed, got[0].Payload["removed"])
		})
	}
}

func TestForComment(t *testing.T) {
	t.Parallel()

	entry := &types.Entry{ID: 1, UserID: 10}

	t.Run("stranger comments", func(t *testing.T) {
		t.Parallel()

		comment := &types.Comment{ID: 5, EntryID: 1, UserID: 30}
		got := notify.ForComment(testEvents, entry, comment, []uint64{10, 20, 30})

		require.Len(t, got, 2)
		assert.Equal(t, "idea_comment", got[0].EventType)
		assert.Equal(t, []uint64{20}, got[0].Recipients)
		assert.Equal(t, "idea_comment_owner", got[1].EventType)
		assert.Equal(t, []uint64{10}, got[1].Recipients)
	})

	t.Run("owner comments", func(t *testing.T) {
		t.Parallel()

		comment := &types.Comment{ID: 6, EntryID: 1, UserID: 10}
		got := notify.ForComment(testEvents, entry, comment, []uint64{10, 20})

		require.Len(t, got, 1)
		assert.Equal(t, "idea_comment", got[0].EventType)
		assert.Equal(t, []uint64{20}, got[0].Recipients)
	})

	t.Run("first comment with no other subscribers", func(t *testing.T) {
		t.Parallel()

		comment := &types.Comment{ID: 7, EntryID: 1, UserID: 30}
		got := notify.ForComment(testEvents, entry, comment, []uint64{10})

		require.Len(t, got, 1)
		assert.Equal(t, "idea_comment_owner", got[0].EventType)
	})
}

func TestForEntryAdded(t *testing.T) {
	t.Parallel()

	entry := &types.Entry{ID: 1, UserID: 10}

	assert.Empty(t, notify.ForEntryAdded(testEvents, entry, nil))
	assert.Empty(t, notify.ForEntryAdded(testEvents, entry, []uint64{10}))

	got := notify.ForEntryAdded(testEvents, entry, []uint64{10, 40, 50})
	require.Len(t, got, 1)
	assert.Equal(t, "idea_added", got[0].EventType)
	assert.Equal(t, []uint64{40, 50}, got[0].Recipients)
}
