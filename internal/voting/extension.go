package voting

import (
	"context"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/notify"
)

// Watchers is an Extension that announces every new entry to a fixed set of users,
// such as the moderators of a board.
type Watchers []uint64

// OnEntryAdded notifies the watchers other than the entry's creator.
func (w Watchers) OnEntryAdded(_ context.Context, kind *Kind, entry *types.Entry) []notify.Notification {
	return notify.ForEntryAdded(kind.Events, entry, w)
}

// OnCommentAdded does nothing; watchers follow comments by subscribing.
func (w Watchers) OnCommentAdded(context.Context, *Kind, *types.Entry, *types.Comment) []notify.Notification {
	return nil
}
