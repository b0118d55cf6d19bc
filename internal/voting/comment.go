package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/notify"
	"go.uber.org/zap"
)

// AddComment appends a comment to an entry and subscribes the commenter.
// Users subscribed before the comment, other than the commenter and the owner,
// are notified, and the owner gets a separate notification unless they wrote it.
func (e *Engine) AddComment(ctx context.Context, entryID, userID uint64, body string) (*types.Comment, error) {
	_, comment, err := e.addComment(ctx, entryID, userID, body)
	return comment, err
}

func (e *Engine) addComment(
	ctx context.Context, entryID, userID uint64, body string,
) (*types.Entry, *types.Comment, error) {
	if userID == 0 {
		return nil, nil, types.ErrUnauthorized
	}

	body, err := e.cleanBody("body", body)
	if err != nil {
		return nil, nil, err
	}

	var (
		entry       *types.Entry
		subscribers []uint64
	)
	comment := &types.Comment{
		EntryID:   entryID,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now(),
	}

	err = e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		entry, err = e.lockEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}

		// Taken before the commenter joins so they are never notified of their own comment
		subscribers, err = tx.Subscribers(ctx, entryID)
		if err != nil {
			return err
		}

		// A retried transaction must not reuse the ID of a rolled back insert
		comment.ID = 0
		if err := tx.InsertComment(ctx, comment); err != nil {
			return err
		}

		return tx.Subscribe(ctx, entryID, userID)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add comment: %w", err)
	}

	e.logger.Debug("Comment added",
		zap.Uint64("entryID", entryID),
		zap.Uint64("commentID", comment.ID),
		zap.Uint64("userID", userID))

	notifications := notify.ForComment(e.kind.Events, entry, comment, subscribers)
	if e.kind.Extension != nil {
		notifications = append(notifications, e.kind.Extension.OnCommentAdded(ctx, e.kind, entry, comment)...)
	}
	e.dispatch(ctx, notifications)

	return entry, comment, nil
}

// Comments returns an entry's comments, oldest first.
func (e *Engine) Comments(ctx context.Context, entryID uint64) ([]*types.Comment, error) {
	if _, err := e.Entry(ctx, entryID); err != nil {
		return nil, err
	}

	comments, err := e.store.Comments(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	return comments, nil
}
