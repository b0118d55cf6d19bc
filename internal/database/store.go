package database

import (
	"context"

	"github.com/robalyx/votedentry/internal/database/dbretry"
	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/robalyx/votedentry/internal/database/types/enum"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/uptrace/bun"
)

// Store implements voting.Store on top of the repository models.
type Store struct {
	db   *bun.DB
	repo *Repository
}

// NewStore creates a store backed by db.
func NewStore(db *bun.DB, repo *Repository) *Store {
	return &Store{db: db, repo: repo}
}

// RunInTx runs fn in a transaction, retrying it on transient PostgreSQL errors.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx voting.Tx) error) error {
	return dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &storeTx{repo: s.repo.WithTx(tx)})
	})
}

func (s *Store) Entry(ctx context.Context, id uint64) (*types.Entry, error) {
	return s.repo.Entry().GetByID(ctx, id)
}

func (s *Store) EntryIDs(ctx context.Context, kind string) ([]uint64, error) {
	return s.repo.Entry().GetIDsByKind(ctx, kind)
}

func (s *Store) Comments(ctx context.Context, entryID uint64) ([]*types.Comment, error) {
	return s.repo.Comment().GetByEntry(ctx, entryID)
}

func (s *Store) Subscribers(ctx context.Context, entryID uint64) ([]uint64, error) {
	return s.repo.Subscription().GetUserIDs(ctx, entryID)
}

func (s *Store) IsSubscribed(ctx context.Context, entryID, userID uint64) (bool, error) {
	return s.repo.Subscription().Exists(ctx, entryID, userID)
}

func (s *Store) SubscribedEntryIDs(ctx context.Context, kind string, userID uint64) ([]uint64, error) {
	return s.repo.Subscription().GetEntryIDs(ctx, kind, userID)
}

func (s *Store) UserVotes(
	ctx context.Context, kind string, userID, grouperID uint64,
) (map[uint64]enum.Direction, error) {
	return s.repo.Vote().GetUserDirections(ctx, kind, userID, grouperID)
}

// storeTx implements voting.Tx with models bound to one transaction.
type storeTx struct {
	repo *Repository
}

func (t *storeTx) LockEntry(ctx context.Context, id uint64) (*types.Entry, error) {
	return t.repo.Entry().LockByID(ctx, id)
}

func (t *storeTx) InsertEntry(ctx context.Context, entry *types.Entry) error {
	return t.repo.Entry().Insert(ctx, entry)
}

func (t *storeTx) UpdateEntryBody(ctx context.Context, entry *types.Entry) error {
	return t.repo.Entry().UpdateBody(ctx, entry)
}

func (t *storeTx) SaveAggregate(ctx context.Context, entry *types.Entry) error {
	return t.repo.Entry().SaveAggregate(ctx, entry)
}

func (t *storeTx) Vote(ctx context.Context, entryID, userID uint64) (*types.VoteRecord, error) {
	return t.repo.Vote().Get(ctx, entryID, userID)
}

func (t *storeTx) InsertVote(ctx context.Context, vote *types.VoteRecord) error {
	return t.repo.Vote().Insert(ctx, vote)
}

func (t *storeTx) UpdateVote(ctx context.Context, vote *types.VoteRecord) error {
	return t.repo.Vote().UpdateDirection(ctx, vote)
}

func (t *storeTx) DeleteVote(ctx context.Context, entryID, userID uint64) error {
	return t.repo.Vote().Delete(ctx, entryID, userID)
}

func (t *storeTx) CountVotes(ctx context.Context, entryID uint64) (int32, int32, error) {
	return t.repo.Vote().Count(ctx, entryID)
}

func (t *storeTx) InsertComment(ctx context.Context, comment *types.Comment) error {
	return t.repo.Comment().Insert(ctx, comment)
}

func (t *storeTx) Subscribe(ctx context.Context, entryID, userID uint64) error {
	return t.repo.Subscription().Add(ctx, entryID, userID)
}

func (t *storeTx) Unsubscribe(ctx context.Context, entryID, userID uint64) error {
	return t.repo.Subscription().Remove(ctx, entryID, userID)
}

func (t *storeTx) Subscribers(ctx context.Context, entryID uint64) ([]uint64, error) {
	return t.repo.Subscription().GetUserIDs(ctx, entryID)
}

var (
	_ voting.Store = (*Store)(nil)
	_ voting.Tx    = (*storeTx)(nil)
)
