package commands

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync/atomic"

	"github.com/robalyx/votedentry/internal/voting"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecalculateCommands returns commands that repair cached vote totals.
func RecalculateCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "recalculate",
			Usage:     "Recount the vote totals of entries from their vote records",
			ArgsUsage: "[ENTRY_ID...]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "kind",
					Usage:    "Kind of the entries to recalculate",
					Required: true,
					Aliases:  []string{"k"},
				},
				&cli.IntFlag{
					Name:    "workers",
					Usage:   "Number of entries to recalculate concurrently",
					Value:   8,
					Aliases: []string{"w"},
				},
			},
			Action: handleRecalculate(deps),
		},
	}
}

// handleRecalculate handles the 'recalculate' command.
// Without arguments every entry of the kind is recalculated.
func handleRecalculate(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		kind := c.String("kind")

		engine, ok := deps.Engines[kind]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}

		ids, err := entryIDs(ctx, engine, c.Args().Slice())
		if err != nil {
			return err
		}

		changed, err := Recalculate(ctx, engine, ids, int(c.Int("workers")), deps.Logger)
		if err != nil {
			return err
		}

		log.Printf("Recalculated %d entries, %d had stale totals", len(ids), changed)

		return nil
	}
}

// entryIDs parses the given IDs or lists every entry of the engine's kind.
func entryIDs(ctx context.Context, engine *voting.Engine, args []string) ([]uint64, error) {
	if len(args) == 0 {
		return engine.EntryIDs(ctx)
	}

	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, arg)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Recalculate recounts the totals of the given entries with at most workers
// running at once. It returns how many entries had stale totals.
func Recalculate(
	ctx context.Context, engine *voting.Engine, ids []uint64, workers int, logger *zap.Logger,
) (int64, error) {
	var changed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for _, id := range ids {
		g.Go(func() error {
			_, wasStale, err := engine.Recalculate(ctx, id)
			if err != nil {
				return err
			}
			if wasStale {
				changed.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()

	logger.Info("Recalculation finished",
		zap.String("kind", engine.Kind().Name),
		zap.Int("entries", len(ids)),
		zap.Int64("stale", changed.Load()),
		zap.Error(err))

	return changed.Load(), err
}
