package sqlite

import (
	"context"

	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
)

// Opener implements ports.RepositoryOpener.
type Opener struct {
	logger ports.Logger
}

var _ ports.RepositoryOpener = (*Opener)(nil)

// NewOpener creates an Opener whose stores report skipped rows to logger.
func NewOpener(logger ports.Logger) *Opener {
	return &Opener{logger: logger}
}

// Open opens the configured database.
func (o *Opener) Open(ctx context.Context, cfg *domain.Config) (ports.TaskRepository, error) {
	return Open(ctx, cfg.Database, cfg.DataDir, o.logger)
}
