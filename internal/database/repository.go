package database

import (
	"github.com/robalyx/votedentry/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	entry        *models.EntryModel
	vote         *models.VoteModel
	comment      *models.CommentModel
	subscription *models.SubscriptionModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db bun.IDB, logger *zap.Logger) *Repository {
	return &Repository{
		entry:        models.NewEntry(db, logger),
		vote:         models.NewVote(db, logger),
		comment:      models.NewComment(db, logger),
		subscription: models.NewSubscription(db, logger),
	}
}

// WithTx returns a repository whose models run inside tx.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	return &Repository{
		entry:        r.entry.WithTx(tx),
		vote:         r.vote.WithTx(tx),
		comment:      r.comment.WithTx(tx),
		subscription: r.subscription.WithTx(tx),
	}
}

// Entry returns the entry model.
func (r *Repository) Entry() *models.EntryModel {
	return r.entry
}

// Vote returns the vote model.
func (r *Repository) Vote() *models.VoteModel {
	return r.vote
}

// Comment returns the comment model.
func (r *Repository) Comment() *models.CommentModel {
	return r.comment
}

// Subscription returns the subscription model.
func (r *Repository) Subscription() *models.SubscriptionModel {
	return r.subscription
}
