package notify

import (
	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
)

// EventTypes names the notification type used for each kind of activity.
type EventTypes struct {
	UpVote       string
	DownVote     string
	Comment      string
	CommentOwner string
	EntryAdded   string
}

// ForVote returns the notifications for a vote cast on entry.
// The owner is told about the vote unless they cast it themselves. A vote that
// was toggled off is reported with the removed record and removed set.
func ForVote(events EventTypes, entry *types.Entry, vote *types.VoteRecord, removed bool) []Notification {
	if vote == nil || vote.UserID == entry.UserID {
		return nil
	}

	eventType := events.UpVote
	if vote.Direction == enum.DirectionDown {
		eventType = events.DownVote
	}

	return []Notification{{
		EventType:  eventType,
		Recipients: []uint64{entry.UserID},
		Payload: map[string]any{
			"vote":    vote,
			"entry":   entry,
			"removed": removed,
		},
	}}
}

// ForComment returns the notifications for a new comment on entry.
// subscribers must be the subscriber set as it was before the commenter was
// auto-subscribed. Subscribers other than the commenter and the owner get the
// general comment event; the owner gets a separate event unless they wrote it.
func ForComment(events EventTypes, entry *types.Entry, comment *types.Comment, subscribers []uint64) []Notification {
	var notifications []Notification

	recipients := make([]uint64, 0, len(subscribers))
	for _, userID := range subscribers {
		if userID == comment.UserID || userID == entry.UserID {
			continue
		}
		recipients = append(recipients, userID)
	}

	if len(recipients) > 0 {
		notifications = append(notifications, Notification{
			EventType:  events.Comment,
			Recipients: recipients,
			Payload: map[string]any{
				"entry":   entry,
				"comment": comment,
			},
		})
	}

	if comment.UserID != entry.UserID {
		notifications = append(notifications, Notification{
			EventType:  events.CommentOwner,
			Recipients: []uint64{entry.UserID},
			Payload: map[string]any{
				"entry":   entry,
				"comment": comment,
			},
		})
	}

	return notifications
}

// ForEntryAdded returns the notification announcing a new entry to recipients.
// Nobody is notified by default; extensions decide who hears about new entries.
func ForEntryAdded(events EventTypes, entry *types.Entry, recipients []uint64) []Notification {
	filtered := make([]uint64, 0, len(recipients))
	for _, userID := range recipients {
		if userID != entry.UserID {
			filtered = append(filtered, userID)
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return []Notification{{
		EventType:  events.EntryAdded,
		Recipients: filtered,
		Payload: map[string]any{
			"entry": entry,
		},
	}}
}
