package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/votedentry/internal/database/types"
	"go.uber.org/zap"
)

// AddEntry creates an entry owned by userID under grouperID.
// Nobody is notified unless the kind's extension asks for it.
func (e *Engine) AddEntry(ctx context.Context, userID, grouperID uint64, body string) (*types.Entry, error) {
	if userID == 0 {
		return nil, types.ErrUnauthorized
	}

	body, err := e.cleanBody("body", body)
	if err != nil {
		return nil, err
	}

	switch {
	case e.kind.GrouperRequired && grouperID == 0:
		return nil, types.NewValidationError("grouper", "This field is required.")
	case !e.kind.GrouperRequired:
		grouperID = 0
	}

	now := time.Now()
	entry := &types.Entry{
		Kind:          e.kind.Name,
		GrouperID:     grouperID,
		UserID:        userID,
		Body:          body,
		CreatedAt:     now,
		ModifiedAt:    now,
		UserUpdatedAt: now,
	}

	err = e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		entry.ID = 0
		return tx.InsertEntry(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}

	e.logger.Debug("Entry added",
		zap.Uint64("entryID", entry.ID),
		zap.Uint64("userID", userID),
		zap.Uint64("grouperID", grouperID))

	if e.kind.Extension != nil {
		e.dispatch(ctx, e.kind.Extension.OnEntryAdded(ctx, e.kind, entry))
	}

	return entry, nil
}

// EditEntry replaces the body of an existing entry. Only its creator may edit it.
func (e *Engine) EditEntry(ctx context.Context, entryID, userID uint64, body string) (*types.Entry, error) {
	if userID == 0 {
		return nil, types.ErrUnauthorized
	}

	body, err := e.cleanBody("body", body)
	if err != nil {
		return nil, err
	}

	var entry *types.Entry
	err = e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		entry, err = e.lockEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if entry.UserID != userID {
			return types.ErrForbidden
		}

		now := time.Now()
		entry.Body = body
		entry.ModifiedAt = now
		entry.UserUpdatedAt = now

		return tx.UpdateEntryBody(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit entry: %w", err)
	}

	return entry, nil
}
