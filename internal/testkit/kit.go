// Package testkit provides fixtures for exercising the rarefaction engine:
// small hand-built count tables and an in-memory run repository.
package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rarefy/domain/core"
	"rarefy/domain/count"
	"rarefy/domain/rarefaction"
	apperrors "rarefy/internal/errors"
	"rarefy/ports"
)

// MustTable builds a count table from literal rows and panics on invalid
// input; fixtures are hand-written so a failure is a bug in the fixture.
func MustTable(taxa []string, samples []string, rows [][]int64) *count.Table {
	taxonIDs := make([]core.TaxonID, len(taxa))
	for i, t := range taxa {
		taxonIDs[i] = core.TaxonID(t)
	}
	sampleIDs := make([]core.SampleID, len(samples))
	for j, s := range samples {
		sampleIDs[j] = core.SampleID(s)
	}
	table, err := count.NewTable(taxonIDs, sampleIDs, rows)
	if err != nil {
		panic(fmt.Sprintf("testkit: invalid fixture table: %v", err))
	}
	return table
}

// WorkedExampleTable is the two-sample table from the worked rarefaction
// example: S1=(68,32,200) with library size 300, S2=(200,200,200) with
// library size 600. At the default depth (min=300) S1 reproduces exactly and
// S2 subsamples 600 reads down to 300.
func WorkedExampleTable() *count.Table {
	return MustTable(
		[]string{"Taxa1", "Taxa2", "Taxa3"},
		[]string{"S1", "S2"},
		[][]int64{
			{68, 200},
			{32, 200},
			{200, 200},
		},
	)
}

// UnevenDepthTable has one sample far below the others' library sizes, for
// exclusion scenarios.
func UnevenDepthTable() *count.Table {
	return MustTable(
		[]string{"OTU1", "OTU2", "OTU3", "OTU4"},
		[]string{"deep1", "deep2", "shallow"},
		[][]int64{
			{120, 90, 3},
			{80, 110, 2},
			{50, 60, 0},
			{150, 140, 1},
		},
	)
}

// InMemoryRunRepository is a map-backed RunRepository for tests and for
// running without a database.
type InMemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*rarefaction.Run
}

// NewInMemoryRunRepository creates an empty in-memory repository
func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]*rarefaction.Run)}
}

// Save stores a completed run
func (r *InMemoryRunRepository) Save(ctx context.Context, run *rarefaction.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

// GetByID retrieves a run by its identifier
func (r *InMemoryRunRepository) GetByID(ctx context.Context, id core.RunID) (*rarefaction.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("run %s", id))
	}
	return run, nil
}

// List returns the most recent runs, newest first
func (r *InMemoryRunRepository) List(ctx context.Context, limit int) ([]*rarefaction.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := make([]*rarefaction.Run, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

var _ ports.RunRepository = (*InMemoryRunRepository)(nil)
