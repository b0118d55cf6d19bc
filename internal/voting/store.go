package voting

import (
	"context"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
)

// Store is the durable storage behind an Engine.
// Entry lookups return types.ErrEntryNotFound for unknown IDs.
type Store interface {
	// RunInTx runs fn in a single transaction. Nothing fn wrote is kept if it returns an error.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Entry(ctx context.Context, id uint64) (*types.Entry, error)
	EntryIDs(ctx context.Context, kind string) ([]uint64, error)
	Comments(ctx context.Context, entryID uint64) ([]*types.Comment, error)
	Subscribers(ctx context.Context, entryID uint64) ([]uint64, error)
	IsSubscribed(ctx context.Context, entryID, userID uint64) (bool, error)
	SubscribedEntryIDs(ctx context.Context, kind string, userID uint64) ([]uint64, error)
	UserVotes(ctx context.Context, kind string, userID, grouperID uint64) (map[uint64]enum.Direction, error)
}

// Tx is the set of operations available inside a transaction.
type Tx interface {
	// LockEntry loads an entry and holds it against concurrent changes until the transaction ends.
	LockEntry(ctx context.Context, id uint64) (*types.Entry, error)
	InsertEntry(ctx context.Context, entry *types.Entry) error
	UpdateEntryBody(ctx context.Context, entry *types.Entry) error
	SaveAggregate(ctx context.Context, entry *types.Entry) error

	// Vote returns nil without error when the user has not voted on the entry.
	Vote(ctx context.Context, entryID, userID uint64) (*types.VoteRecord, error)
	// InsertVote returns an error wrapping types.ErrVoteConflict when a record
	// for the same entry and user already exists.
	InsertVote(ctx context.Context, vote *types.VoteRecord) error
	UpdateVote(ctx context.Context, vote *types.VoteRecord) error
	DeleteVote(ctx context.Context, entryID, userID uint64) error
	CountVotes(ctx context.Context, entryID uint64) (up, down int32, err error)

	InsertComment(ctx context.Context, comment *types.Comment) error

	Subscribe(ctx context.Context, entryID, userID uint64) error
	Unsubscribe(ctx context.Context, entryID, userID uint64) error
	Subscribers(ctx context.Context, entryID uint64) ([]uint64, error)
}
