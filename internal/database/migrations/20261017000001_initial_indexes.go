package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			-- Entries listed per kind and grouper
			CREATE INDEX IF NOT EXISTS idx_entries_kind_grouper
			ON entries (kind, grouper_id, result_votes DESC);

			-- A user's votes across entries, used to mark voted entries
			CREATE INDEX IF NOT EXISTS idx_vote_records_user
			ON vote_records (user_id, entry_id);

			-- Comments of an entry in creation order
			CREATE INDEX IF NOT EXISTS idx_comments_entry_created
			ON comments (entry_id, created_at, id);

			-- A user's subscriptions across entries
			CREATE INDEX IF NOT EXISTS idx_subscriptions_user
			ON subscriptions (user_id, entry_id);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			DROP INDEX IF EXISTS idx_entries_kind_grouper;
			DROP INDEX IF EXISTS idx_vote_records_user;
			DROP INDEX IF EXISTS idx_comments_entry_created;
			DROP INDEX IF EXISTS idx_subscriptions_user;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes: %w", err)
		}

		return nil
	})
}
