// Package rng provides hash-derived deterministic random streams.
//
// A shared generator consumed from multiple goroutines would make results
// depend on scheduling. Instead every stream gets its own generator whose
// seed is a SHA-256 digest of the base seed and the stream's identity, so a
// run is reproducible for any worker count.
package rng

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"

	"rarefy/domain/core"
	"rarefy/ports"
)

// HashRNG implements ports.RNGPort with counter-based sub-seeds.
type HashRNG struct{}

// New creates a new HashRNG
func New() *HashRNG {
	return &HashRNG{}
}

// DrawStream creates the RNG stream for one (iteration, sample) draw.
func (r *HashRNG) DrawStream(ctx context.Context, iteration int, sample core.SampleID, baseSeed int64) (*rand.Rand, error) {
	if iteration < 0 {
		return nil, fmt.Errorf("iteration index cannot be negative, got %d", iteration)
	}
	if sample == "" {
		return nil, fmt.Errorf("sample identifier cannot be empty")
	}
	key := fmt.Sprintf("draw:%d:%s", iteration, sample)
	return rand.New(rand.NewSource(deriveSeed(key, baseSeed))), nil
}

// deriveSeed hashes the base seed together with a stream key into an
// independent sub-seed.
func deriveSeed(key string, baseSeed int64) int64 {
	h := sha256.New()
	var seedBytes [8]byte
	binary.BigEndian.PutUint64(seedBytes[:], uint64(baseSeed))
	h.Write(seedBytes[:])
	h.Write([]byte(key))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

var _ ports.RNGPort = (*HashRNG)(nil)
