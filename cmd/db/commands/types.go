package commands

import (
	"errors"

	"github.com/robalyx/votedentry/internal/database"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

var (
	ErrNameRequired = errors.New("NAME argument required")
	ErrUnknownKind  = errors.New("unknown kind")
	ErrInvalidID    = errors.New("invalid entry ID")
)

// CLIDependencies holds the common dependencies needed by CLI commands.
type CLIDependencies struct {
	DB       database.Client
	Migrator *migrate.Migrator
	Engines  map[string]*voting.Engine
	Logger   *zap.Logger
}
