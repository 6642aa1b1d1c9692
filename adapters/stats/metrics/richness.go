package metrics

import (
	"rarefy/domain/core"
	"rarefy/domain/count"
)

// Richness counts, per sample, the taxa observed with strictly positive
// reads.
type Richness struct{}

// NewRichness creates the observed-richness metric
func NewRichness() *Richness {
	return &Richness{}
}

// Name returns the metric name
func (m *Richness) Name() string { return "richness" }

// Compute returns the observed richness of every sample in the table.
func (m *Richness) Compute(t *count.Table) map[core.SampleID]float64 {
	out := make(map[core.SampleID]float64, t.NumSamples())
	for j := 0; j < t.NumSamples(); j++ {
		observed := 0
		for i := 0; i < t.NumTaxa(); i++ {
			if t.Count(i, j) > 0 {
				observed++
			}
		}
		out[t.SampleAt(j)] = float64(observed)
	}
	return out
}
