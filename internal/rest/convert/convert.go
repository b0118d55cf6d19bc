package convert

import (
	"slices"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	restTypes "github.com/robalyx/votedentry/internal/rest/types"
	"github.com/robalyx/votedentry/internal/voting"
)

// Entry converts an entry into its REST representation.
func Entry(kind *voting.Kind, entry *types.Entry) *restTypes.Entry {
	if entry == nil {
		return nil
	}

	return &restTypes.Entry{
		ID:          entry.ID,
		Kind:        entry.Kind,
		GrouperID:   entry.GrouperID,
		UserID:      entry.UserID,
		Body:        entry.Body,
		UpVotes:     entry.UpVotes,
		DownVotes:   entry.DownVotes,
		ResultVotes: entry.ResultVotes,
		URL:         kind.EntryURL(entry),
		CreatedAt:   entry.CreatedAt,
		ModifiedAt:  entry.ModifiedAt,
	}
}

// Vote converts a vote record into its REST representation.
func Vote(vote *types.VoteRecord) *restTypes.Vote {
	if vote == nil {
		return nil
	}

	return &restTypes.Vote{
		EntryID:   vote.EntryID,
		UserID:    vote.UserID,
		Direction: vote.Direction.String(),
		CreatedAt: vote.CreatedAt,
	}
}

// Comment converts a comment into its REST representation.
func Comment(kind *voting.Kind, entry *types.Entry, comment *types.Comment) *restTypes.Comment {
	if comment == nil {
		return nil
	}

	return &restTypes.Comment{
		ID:        comment.ID,
		EntryID:   comment.EntryID,
		UserID:    comment.UserID,
		Body:      comment.Body,
		URL:       kind.CommentURL(entry, comment),
		CreatedAt: comment.CreatedAt,
	}
}

// Result converts the outcome of an action.
func Result(kind *voting.Kind, result *voting.Result) *restTypes.ActionResponse {
	response := &restTypes.ActionResponse{
		Entry:    Entry(kind, result.Entry),
		Vote:     Vote(result.Vote),
		Redirect: result.Redirect,
	}
	if result.Entry != nil {
		response.Comment = Comment(kind, result.Entry, result.Comment)
	}

	for _, msg := range result.Messages {
		response.Messages = append(response.Messages, restTypes.Message{
			Level: string(msg.Level),
			Text:  msg.Text,
		})
	}

	if !result.Valid() {
		response.Errors = result.Errors
	}

	return response
}

// VoteMarks converts a user's votes into per-entry button marks ordered by entry ID.
func VoteMarks(votes map[uint64]enum.Direction) []restTypes.VoteMarks {
	ids := make([]uint64, 0, len(votes))
	for id := range votes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	marks := make([]restTypes.VoteMarks, 0, len(ids))
	for _, id := range ids {
		marks = append(marks, restTypes.VoteMarks{
			EntryID:   id,
			Direction: votes[id].String(),
			Up:        voting.VoteMark(votes, id, enum.DirectionUp),
			Down:      voting.VoteMark(votes, id, enum.DirectionDown),
		})
	}

	return marks
}
