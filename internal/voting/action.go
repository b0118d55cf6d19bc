package voting

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
)

// Form fields read by Handle.
const (
	FieldBody      = "body"
	FieldDirection = "direction"
	FieldGrouper   = "grouper"
)

// ActionContext carries one inbound action through the engine.
type ActionContext struct {
	Action enum.Action
	// Actor is the authenticated user. Zero means anonymous.
	Actor uint64
	// EntryID is the target entry, zero when there is none.
	EntryID uint64
	Fields  map[string]string
}

// MessageLevel is the severity of a result message.
type MessageLevel string

const (
	LevelSuccess MessageLevel = "success"
	LevelInfo    MessageLevel = "info"
)

// Message is a user-facing note attached to a result.
type Message struct {
	Level MessageLevel `json:"level"`
	Text  string       `json:"text"`
}

// Result is the outcome of a handled action. When Errors is not empty the
// action was rejected as invalid and nothing was changed.
type Result struct {
	Entry    *types.Entry      `json:"entry,omitempty"`
	Vote     *types.VoteRecord `json:"vote,omitempty"`
	Comment  *types.Comment    `json:"comment,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Messages []Message         `json:"messages,omitempty"`
	Errors   types.FieldErrors `json:"errors,omitempty"`
}

// Valid reports whether the action passed validation.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) addMessage(level MessageLevel, text string) {
	r.Messages = append(r.Messages, Message{Level: level, Text: text})
}

// Handle runs an action. Anonymous actors are rejected before anything else.
// Validation problems are returned in the result rather than as an error.
func (e *Engine) Handle(ctx context.Context, ac *ActionContext) (*Result, error) {
	if ac.Actor == 0 {
		return nil, types.ErrUnauthorized
	}

	var (
		result *Result
		err    error
	)

	switch ac.Action {
	case enum.ActionAdd:
		result, err = e.handleAdd(ctx, ac)
	case enum.ActionVote:
		result, err = e.handleVote(ctx, ac)
	case enum.ActionComment:
		result, err = e.handleComment(ctx, ac)
	case enum.ActionUnsubscribe:
		result, err = e.handleUnsubscribe(ctx, ac)
	default:
		return nil, fmt.Errorf("%w: unknown action %s", types.ErrBadRequest, ac.Action)
	}

	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return &Result{Errors: verr.Fields}, nil
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (e *Engine) handleAdd(ctx context.Context, ac *ActionContext) (*Result, error) {
	var (
		entry *types.Entry
		err   error
	)

	if ac.EntryID != 0 {
		entry, err = e.EditEntry(ctx, ac.EntryID, ac.Actor, ac.Fields[FieldBody])
	} else {
		grouperID, perr := parseID(ac.Fields[FieldGrouper])
		if perr != nil {
			return nil, types.NewValidationError(FieldGrouper, "Enter a valid identifier.")
		}
		entry, err = e.AddEntry(ctx, ac.Actor, grouperID, ac.Fields[FieldBody])
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Entry: entry, Redirect: e.kind.EntryURL(entry)}
	result.addMessage(LevelSuccess, e.kind.Messages.EntryAdded)

	return result, nil
}

func (e *Engine) handleVote(ctx context.Context, ac *ActionContext) (*Result, error) {
	if ac.EntryID == 0 {
		return nil, fmt.Errorf("%w: vote requires an entry", types.ErrBadRequest)
	}

	direction, err := enum.ParseDirection(ac.Fields[FieldDirection])
	if err != nil {
		return nil, types.NewValidationError(FieldDirection, "Select a valid choice.")
	}

	outcome, err := e.CastVote(ctx, ac.EntryID, ac.Actor, direction)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Entry:    outcome.Entry,
		Vote:     outcome.Vote,
		Redirect: e.kind.EntryURL(outcome.Entry),
	}
	result.addMessage(LevelSuccess, e.kind.Messages.ThanksForVoting)
	if outcome.Cast().Direction == enum.DirectionDown {
		result.addMessage(LevelInfo, e.kind.Messages.ConsiderComment)
	}

	return result, nil
}

func (e *Engine) handleComment(ctx context.Context, ac *ActionContext) (*Result, error) {
	if ac.EntryID == 0 {
		return nil, fmt.Errorf("%w: comment requires an entry", types.ErrBadRequest)
	}

	entry, comment, err := e.addComment(ctx, ac.EntryID, ac.Actor, ac.Fields[FieldBody])
	if err != nil {
		return nil, err
	}

	result := &Result{
		Entry:    entry,
		Comment:  comment,
		Redirect: e.kind.EntryURL(entry),
	}
	result.addMessage(LevelSuccess, e.kind.Messages.CommentAdded)

	return result, nil
}

func (e *Engine) handleUnsubscribe(ctx context.Context, ac *ActionContext) (*Result, error) {
	if ac.EntryID == 0 {
		return nil, fmt.Errorf("%w: unsubscribe requires an entry", types.ErrBadRequest)
	}

	if err := e.Unsubscribe(ctx, ac.EntryID, ac.Actor); err != nil {
		return nil, err
	}

	entry, err := e.Entry(ctx, ac.EntryID)
	if err != nil {
		return nil, err
	}

	result := &Result{Entry: entry, Redirect: e.kind.EntryURL(entry)}
	result.addMessage(LevelSuccess, e.kind.Messages.Unsubscribed)

	return result, nil
}

// parseID parses an optional decimal identifier. An empty string is zero.
func parseID(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}
