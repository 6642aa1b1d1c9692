// Package engine orchestrates rarefaction: repeated without-replacement
// subsampling of a count table to a common depth, a metric per draw, and an
// element-wise mean across draws.
package engine

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"rarefy/adapters/stats/metrics"
	"rarefy/adapters/stats/subsample"
	"rarefy/domain/core"
	"rarefy/domain/count"
	"rarefy/domain/rarefaction"
	apperrors "rarefy/internal/errors"
	"rarefy/ports"
)

// Engine runs rarefaction over an immutable count table.
type Engine struct {
	rng     ports.RNGPort
	workers int

	richness   *metrics.Richness
	brayCurtis *metrics.BrayCurtis
}

// New creates an engine. workers bounds how many iterations run
// concurrently; values below 1 mean unbounded.
func New(rng ports.RNGPort, workers int) *Engine {
	return &Engine{
		rng:        rng,
		workers:    workers,
		richness:   metrics.NewRichness(),
		brayCurtis: metrics.NewBrayCurtis(),
	}
}

// Run executes one rarefaction run and returns the aggregated result.
//
// Samples whose library size falls below the resolved depth are dropped from
// every draw and reported in the result's Excluded list. The run fails with
// CONFIG_INVALID on bad parameters and INSUFFICIENT_DEPTH when no sample
// reaches the depth. Cancellation is all-or-nothing: a cancelled run returns
// no partial aggregate.
func (e *Engine) Run(ctx context.Context, table *count.Table, cfg rarefaction.Config) (*rarefaction.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeConfigInvalid, err)
	}

	depth := cfg.TargetDepth
	if depth == 0 {
		depth = table.MinLibrarySize()
	}
	if depth < 1 {
		return nil, apperrors.ConfigInvalid("resolved target depth must be at least 1; the minimum library size is 0")
	}

	retained, excluded := partitionByDepth(table, depth)
	if len(retained) == 0 {
		return nil, apperrors.InsufficientDepth(depth)
	}

	draws, err := e.runIterations(ctx, table, cfg, depth, retained)
	if err != nil {
		return nil, err
	}

	result := &rarefaction.Result{
		Metric:     cfg.Metric,
		Depth:      depth,
		Iterations: cfg.Iterations,
		Seed:       cfg.Seed,
		Mode:       cfg.EffectiveMode(),
		Excluded:   excluded,
	}

	retainedIDs := make([]core.SampleID, len(retained))
	for i, j := range retained {
		retainedIDs[i] = table.SampleAt(j)
	}

	switch cfg.Metric {
	case rarefaction.MetricRichness:
		richness, err := aggregateRichness(retainedIDs, draws.richness)
		if err != nil {
			return nil, apperrors.Wrap(err, "aggregating richness across draws")
		}
		result.Richness = richness
	case rarefaction.MetricBrayCurtis:
		result.Dissimilarity = aggregateDissimilarity(retainedIDs, draws.dissimilarity)
	}
	return result, nil
}

// partitionByDepth splits the table's columns into retained indices and
// excluded identifiers, both in input column order.
func partitionByDepth(table *count.Table, depth int64) (retained []int, excluded []core.SampleID) {
	excluded = make([]core.SampleID, 0)
	for j := 0; j < table.NumSamples(); j++ {
		if table.LibrarySize(j) >= depth {
			retained = append(retained, j)
		} else {
			excluded = append(excluded, table.SampleAt(j))
		}
	}
	return retained, excluded
}

// perIteration holds one slot per iteration so aggregation can sum in
// iteration-index order, keeping the mean bit-for-bit identical no matter
// which workers finished first.
type perIteration struct {
	richness      []map[core.SampleID]float64
	dissimilarity []*mat.SymDense
}

func (e *Engine) runIterations(ctx context.Context, table *count.Table, cfg rarefaction.Config, depth int64, retained []int) (*perIteration, error) {
	taxa := table.Taxa()
	retainedIDs := make([]core.SampleID, len(retained))
	columns := make([][]int64, len(retained))
	for i, j := range retained {
		retainedIDs[i] = table.SampleAt(j)
		columns[i] = table.ColumnAt(j)
	}

	draws := &perIteration{}
	switch cfg.Metric {
	case rarefaction.MetricRichness:
		draws.richness = make([]map[core.SampleID]float64, cfg.Iterations)
	case rarefaction.MetricBrayCurtis:
		draws.dissimilarity = make([]*mat.SymDense, cfg.Iterations)
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i := 0; i < cfg.Iterations; i++ {
		iteration := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			draw, err := e.subsampleAll(gctx, taxa, retainedIDs, columns, cfg, depth, iteration)
			if err != nil {
				return err
			}
			switch cfg.Metric {
			case rarefaction.MetricRichness:
				draws.richness[iteration] = e.richness.Compute(draw)
			case rarefaction.MetricBrayCurtis:
				draws.dissimilarity[iteration] = e.brayCurtis.Compute(draw)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return draws, nil
}

// subsampleAll builds one SubsampledDraw: every retained column reduced to
// depth with an RNG stream keyed by (seed, iteration, sample).
func (e *Engine) subsampleAll(ctx context.Context, taxa []core.TaxonID, samples []core.SampleID, columns [][]int64, cfg rarefaction.Config, depth int64, iteration int) (*count.Table, error) {
	drawn := make([][]int64, len(samples))
	for s, column := range columns {
		var (
			col []int64
			err error
		)
		if cfg.EffectiveMode() == rarefaction.ModeScaled {
			col, err = subsample.DrawScaled(column, depth)
		} else {
			var stream *rand.Rand
			stream, err = e.rng.DrawStream(ctx, iteration, samples[s], cfg.Seed)
			if err == nil {
				col, err = subsample.Draw(column, depth, stream)
			}
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, "subsampling sample %q at iteration %d", samples[s], iteration)
		}
		drawn[s] = col
	}

	// Reassemble taxa-major rows for the draw table.
	rows := make([][]int64, len(taxa))
	for i := range taxa {
		rows[i] = make([]int64, len(samples))
		for s := range samples {
			rows[i][s] = drawn[s][i]
		}
	}
	draw, err := count.NewTable(taxa, samples, rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "assembling subsampled draw")
	}
	return draw, nil
}

// aggregateRichness averages per-sample richness across draws in iteration
// order and records the across-draw standard deviation.
func aggregateRichness(samples []core.SampleID, perDraw []map[core.SampleID]float64) (*rarefaction.RichnessResult, error) {
	out := &rarefaction.RichnessResult{
		Samples: samples,
		Mean:    make(map[core.SampleID]float64, len(samples)),
		StdDev:  make(map[core.SampleID]float64, len(samples)),
	}
	for _, sample := range samples {
		series := make([]float64, len(perDraw))
		for i, draw := range perDraw {
			series[i] = draw[sample]
		}
		mean, err := stats.Mean(series)
		if err != nil {
			return nil, fmt.Errorf("mean richness for sample %q: %w", sample, err)
		}
		out.Mean[sample] = mean
		if len(series) > 1 {
			sd, err := stats.StandardDeviationSample(series)
			if err != nil {
				return nil, fmt.Errorf("richness spread for sample %q: %w", sample, err)
			}
			out.StdDev[sample] = sd
		} else {
			out.StdDev[sample] = 0
		}
	}
	return out, nil
}

// aggregateDissimilarity averages the per-draw matrices element-wise in
// iteration order. NaN entries (0/0 pairs) stay NaN through the mean.
func aggregateDissimilarity(samples []core.SampleID, perDraw []*mat.SymDense) *rarefaction.DissimilarityResult {
	n := len(samples)
	acc := mat.NewSymDense(n, nil)
	accData := acc.RawSymmetric().Data
	for _, draw := range perDraw {
		floats.Add(accData, draw.RawSymmetric().Data)
	}
	floats.Scale(1/float64(len(perDraw)), accData)
	return &rarefaction.DissimilarityResult{Samples: samples, Matrix: acc}
}
