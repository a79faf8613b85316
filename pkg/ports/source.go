package ports

import (
	"context"

	"github.com/aretw0/cascade/pkg/domain"
)

// ReactionSource is the read-only reaction dataset consumed by the cascade engine.
// Implementations must be safe for concurrent use: several runs may share one
// source without locking, since none of them mutates it.
type ReactionSource interface {
	// FindFusionReactions returns every fusion reaction whose two inputs are members of pool.
	FindFusionReactions(ctx context.Context, pool []domain.Nuclide) ([]domain.Fusion, error)

	// FindTwoToTwoReactions returns every two-to-two reaction whose two inputs are members of pool.
	FindTwoToTwoReactions(ctx context.Context, pool []domain.Nuclide) ([]domain.TwoToTwo, error)

	// Classify returns the particle statistics and phase thresholds of a nuclide.
	// Unknown thresholds are reported as nil, not as an error.
	Classify(ctx context.Context, id domain.Nuclide) (domain.Classification, error)
}

// ReactionBrowser is implemented by sources that also support interactive browsing.
// It is not used by the cascade engine.
type ReactionBrowser interface {
	// FissionOf returns the fission channels of a parent nuclide.
	FissionOf(ctx context.Context, parent domain.Nuclide) ([]domain.Fission, error)

	// ReactionsWith returns fusion and two-to-two reactions that consume id as an input.
	ReactionsWith(ctx context.Context, id domain.Nuclide) ([]domain.Reaction, error)
}
