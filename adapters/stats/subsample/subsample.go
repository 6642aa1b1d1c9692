// Package subsample reduces a single sample's per-taxon count vector to a
// common target depth.
package subsample

import (
	"fmt"
	"math"
	"math/rand"
)

// Draw produces one uniform random subsample of depth reads, without
// replacement, from the given per-taxon count vector.
//
// Conceptually the vector is expanded into a multiset of one label per read
// and depth labels are drawn uniformly; the implementation walks the taxon
// blocks with selection sampling instead, which yields the same distribution
// (every size-depth subset of reads equally likely) without materializing
// the multiset. The returned vector covers the same taxon set, zeros
// included, and sums exactly to depth.
//
// When depth equals the vector's total, the vector is reproduced unchanged.
func Draw(counts []int64, depth int64, rng *rand.Rand) ([]int64, error) {
	if depth < 1 {
		return nil, fmt.Errorf("target depth must be at least 1, got %d", depth)
	}
	total := sum(counts)
	if depth > total {
		return nil, fmt.Errorf("target depth %d exceeds library size %d", depth, total)
	}

	out := make([]int64, len(counts))
	left := total // reads not yet considered
	need := depth // reads still to draw
	for i, c := range counts {
		if need == 0 {
			break
		}
		for j := int64(0); j < c; j++ {
			// Each remaining read is kept with probability need/left,
			// which keeps all subsets of size depth equally likely.
			if rng.Int63n(left) < need {
				out[i]++
				need--
			}
			left--
			if need == 0 {
				break
			}
		}
	}
	return out, nil
}

// DrawScaled is the round-based rarefying shortcut: each count is scaled by
// depth/libsize and rounded to the nearest integer. No randomness is
// involved and the result may miss the exact target depth by accumulated
// rounding error. It is an explicitly approximate alternative to Draw, not
// a substitute.
func DrawScaled(counts []int64, depth int64) ([]int64, error) {
	if depth < 1 {
		return nil, fmt.Errorf("target depth must be at least 1, got %d", depth)
	}
	total := sum(counts)
	if depth > total {
		return nil, fmt.Errorf("target depth %d exceeds library size %d", depth, total)
	}

	factor := float64(depth) / float64(total)
	out := make([]int64, len(counts))
	for i, c := range counts {
		out[i] = int64(math.Round(float64(c) * factor))
	}
	return out, nil
}

func sum(counts []int64) int64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	return total
}
