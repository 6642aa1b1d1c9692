package ports

import (
	"context"

	"rarefy/domain/core"
	"rarefy/domain/rarefaction"
)

// RunRepository persists completed rarefaction runs
type RunRepository interface {
	// Save stores a completed run
	Save(ctx context.Context, run *rarefaction.Run) error

	// GetByID retrieves a run by its identifier
	GetByID(ctx context.Context, id core.RunID) (*rarefaction.Run, error)

	// List returns the most recent runs, newest first
	List(ctx context.Context, limit int) ([]*rarefaction.Run, error)
}
