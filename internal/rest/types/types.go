package types

import "time"

// ActionRequest is the body of an action posted against a kind.
type ActionRequest struct {
	Action  string            `json:"action"`
	EntryID uint64            `json:"entryId"`
	Fields  map[string]string `json:"fields"`
}

// Entry represents a voted entry.
type Entry struct {
	ID          uint64    `json:"id"`
	Kind        string    `json:"kind"`
	GrouperID   uint64    `json:"grouperId"`
	UserID      uint64    `json:"userId"`
	Body        string    `json:"body"`
	UpVotes     int32     `json:"upVotes"`
	DownVotes   int32     `json:"downVotes"`
	ResultVotes int32     `json:"resultVotes"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}

// Vote represents a user's vote on an entry.
type Vote struct {
	EntryID   uint64    `json:"entryId"`
	UserID    uint64    `json:"userId"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment represents a comment left on an entry.
type Comment struct {
	ID        uint64    `json:"id"`
	EntryID   uint64    `json:"entryId"`
	UserID    uint64    `json:"userId"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is a note shown to the user after an action.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// ActionResponse is the outcome of a posted action.
type ActionResponse struct {
	Entry    *Entry              `json:"entry,omitempty"`
	Vote     *Vote               `json:"vote,omitempty"`
	Comment  *Comment            `json:"comment,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
	Messages []Message           `json:"messages,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

// GetEntryResponse is returned when fetching a single entry.
type GetEntryResponse struct {
	Entry      Entry `json:"entry"`
	Subscribed bool  `json:"subscribed"`
}

// GetCommentsResponse lists the comments of an entry, oldest first.
type GetCommentsResponse struct {
	Comments []Comment `json:"comments"`
}

// GetSubscriptionsResponse lists the entries a user is subscribed to.
type GetSubscriptionsResponse struct {
	EntryIDs []uint64 `json:"entryIds"`
}

// VoteMarks tells which vote buttons a user has pressed on an entry.
type VoteMarks struct {
	EntryID   uint64 `json:"entryId"`
	Direction string `json:"direction"`
	Up        string `json:"up"`
	Down      string `json:"down"`
}

// GetVotesResponse lists a user's votes on entries of a kind.
type GetVotesResponse struct {
	Votes []VoteMarks `json:"votes"`
}

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
