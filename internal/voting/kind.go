package voting

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/notify"
)

// GrouperPlaceholder is replaced with the entry's grouper ID when building URLs.
const GrouperPlaceholder = "{grouper}"

var (
	ErrInvalidKindName = errors.New("kind name must be lowercase letters, digits or underscores")
	ErrMissingBaseURL  = errors.New("kind base URL is required")
	ErrGrouperInURL    = errors.New("kind base URL references a grouper but the kind has none")
)

var kindNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Messages are the user-facing texts attached to action results.
type Messages struct {
	EntryAdded      string
	ThanksForVoting string
	ConsiderComment string
	Unsubscribed    string
	CommentAdded    string
}

// Extension hooks into entry and comment creation to notify extra users.
// The returned notifications are dispatched after the action commits.
type Extension interface {
	OnEntryAdded(ctx context.Context, kind *Kind, entry *types.Entry) []notify.Notification
	OnCommentAdded(ctx context.Context, kind *Kind, entry *types.Entry, comment *types.Comment) []notify.Notification
}

// Kind describes one type of voted entry: where its entries live, which
// notification types it emits and which texts it shows.
type Kind struct {
	Name            string
	GrouperRequired bool
	BaseURL         string
	Events          notify.EventTypes
	Messages        Messages
	Extension       Extension
}

// Validate fills in default event types and messages and checks the descriptor.
func (k *Kind) Validate() error {
	if !kindNamePattern.MatchString(k.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidKindName, k.Name)
	}
	if k.BaseURL == "" {
		return fmt.Errorf("%w: %s", ErrMissingBaseURL, k.Name)
	}
	if !k.GrouperRequired && strings.Contains(k.BaseURL, GrouperPlaceholder) {
		return fmt.Errorf("%w: %s", ErrGrouperInURL, k.Name)
	}

	k.Events.UpVote = withDefault(k.Events.UpVote, k.Name+"_up_vote")
	k.Events.DownVote = withDefault(k.Events.DownVote, k.Name+"_down_vote")
	k.Events.Comment = withDefault(k.Events.Comment, k.Name+"_comment")
	k.Events.CommentOwner = withDefault(k.Events.CommentOwner, k.Name+"_comment_owner")
	k.Events.EntryAdded = withDefault(k.Events.EntryAdded, k.Name+"_added")

	k.Messages.EntryAdded = withDefault(k.Messages.EntryAdded, "Your entry was added.")
	k.Messages.ThanksForVoting = withDefault(k.Messages.ThanksForVoting, "Thanks for voting!")
	k.Messages.ConsiderComment = withDefault(k.Messages.ConsiderComment,
		"Please consider leaving a comment explaining your vote.")
	k.Messages.Unsubscribed = withDefault(k.Messages.Unsubscribed, "You will no longer receive notifications.")
	k.Messages.CommentAdded = withDefault(k.Messages.CommentAdded, "Your comment was added.")

	return nil
}

// URL returns the page that lists the entry.
func (k *Kind) URL(entry *types.Entry) string {
	return strings.ReplaceAll(k.BaseURL, GrouperPlaceholder, strconv.FormatUint(entry.GrouperID, 10))
}

// EntryURL returns the stable address of an entry on its page.
func (k *Kind) EntryURL(entry *types.Entry) string {
	return k.URL(entry) + "#" + entry.Anchor()
}

// CommentURL returns the stable address of a comment on its entry's page.
func (k *Kind) CommentURL(entry *types.Entry, comment *types.Comment) string {
	return k.URL(entry) + "#" + comment.Anchor()
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
