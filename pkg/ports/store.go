package ports

import (
	"context"

	"github.com/aretw0/cascade/pkg/domain"
)

// ResultStore persists finished (or partially finished) cascade results by run ID.
type ResultStore interface {
	// Save persists the result for a given run ID, replacing any previous value.
	Save(ctx context.Context, runID string, result *domain.Result) error

	// Load retrieves the result for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Result, error)

	// Delete removes the result for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of stored runs.
	List(ctx context.Context) ([]string, error)
}
