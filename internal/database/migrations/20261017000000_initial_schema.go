package migrations

import (
	"context"
	"fmt"

	"github.com/robalyx/votedentry/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Entry)(nil),
			(*types.VoteRecord)(nil),
			(*types.Comment)(nil),
			(*types.Subscription)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %T: %w", model, err)
			}
		}

		// Child rows belong to their entry and go away with it
		_, err := db.NewRaw(`
			ALTER TABLE vote_records
			ADD CONSTRAINT fk_vote_records_entry
			FOREIGN KEY (entry_id) REFERENCES entries (id) ON DELETE CASCADE;

			ALTER TABLE vote_records
			ADD CONSTRAINT chk_vote_records_direction
			CHECK (direction IN (-1, 1));

			ALTER TABLE comments
			ADD CONSTRAINT fk_comments_entry
			FOREIGN KEY (entry_id) REFERENCES entries (id) ON DELETE CASCADE;

			ALTER TABLE subscriptions
			ADD CONSTRAINT fk_subscriptions_entry
			FOREIGN KEY (entry_id) REFERENCES entries (id) ON DELETE CASCADE;

			ALTER TABLE entries
			ADD CONSTRAINT chk_entries_result_votes
			CHECK (result_votes = up_votes - down_votes);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to add constraints: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Subscription)(nil),
			(*types.Comment)(nil),
			(*types.VoteRecord)(nil),
			(*types.Entry)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Cascade().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
