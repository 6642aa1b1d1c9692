package ports

import (
	"context"
	"math/rand"

	"rarefy/domain/core"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// DrawStream creates a deterministic RNG stream for one (iteration, sample)
	// draw. The stream is keyed only by the base seed, the iteration index and
	// the sample identifier, so identical runs produce identical draws no
	// matter how many workers execute them or in what order.
	DrawStream(ctx context.Context, iteration int, sample core.SampleID, baseSeed int64) (*rand.Rand, error)
}
