package types

import (
	"strconv"
	"time"

	"github.com/robalyx/votedentry/internal/database/types/enum"
)

// Entry is a votable, commentable item that belongs to a parent grouping.
// UpVotes, DownVotes and ResultVotes are cached aggregates of the entry's vote records.
type Entry struct {
	ID            uint64    `bun:",pk,autoincrement"         json:"id"`
	Kind          string    `bun:",notnull"                  json:"kind"`
	GrouperID     uint64    `bun:",notnull,default:0"        json:"grouperId"`
	UserID        uint64    `bun:",notnull"                  json:"userId"`
	Body          string    `bun:",notnull"                  json:"body"`
	UpVotes       int32     `bun:",notnull,default:0"        json:"upVotes"`
	DownVotes     int32     `bun:",notnull,default:0"        json:"downVotes"`
	ResultVotes   int32     `bun:",notnull,default:0"        json:"resultVotes"`
	CreatedAt     time.Time `bun:",notnull"                  json:"createdAt"`
	ModifiedAt    time.Time `bun:",notnull"                  json:"modifiedAt"`
	UserUpdatedAt time.Time `bun:",notnull"                  json:"userUpdatedAt"`
}

// TotalVotes returns the number of votes cast on the entry in either direction.
func (e *Entry) TotalVotes() int32 {
	return e.UpVotes + e.DownVotes
}

// Anchor returns the fragment identifier that addresses this entry on its page.
func (e *Entry) Anchor() string {
	return strconv.FormatUint(e.ID, 10)
}

// VoteRecord is a single user's vote on an entry.
// There is at most one record per (entry, user) pair.
type VoteRecord struct {
	EntryID   uint64         `bun:",pk"      json:"entryId"`
	UserID    uint64         `bun:",pk"      json:"userId"`
	Direction enum.Direction `bun:",notnull" json:"direction"`
	CreatedAt time.Time      `bun:",notnull" json:"createdAt"`
}

// Comment is an append-only remark left by a user on an entry.
type Comment struct {
	ID        uint64    `bun:",pk,autoincrement" json:"id"`
	EntryID   uint64    `bun:",notnull"          json:"entryId"`
	UserID    uint64    `bun:",notnull"          json:"userId"`
	Body      string    `bun:",notnull"          json:"body"`
	CreatedAt time.Time `bun:",notnull"          json:"createdAt"`
}

// Anchor returns the fragment identifier that addresses this comment on its entry's page.
func (c *Comment) Anchor() string {
	return "comment-" + strconv.FormatUint(c.ID, 10)
}

// Subscription marks a user as interested in activity on an entry.
type Subscription struct {
	EntryID   uint64    `bun:",pk"      json:"entryId"`
	UserID    uint64    `bun:",pk"      json:"userId"`
	CreatedAt time.Time `bun:",notnull" json:"createdAt"`
}
