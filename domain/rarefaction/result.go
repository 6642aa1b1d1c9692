package rarefaction

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"rarefy/domain/core"
)

// Result is the aggregated outcome of one rarefaction run. Exactly one of
// Richness and Dissimilarity is set, depending on the configured metric.
// Excluded lists the samples whose library size fell below the resolved
// depth; they are absent from every draw and from the result values.
// Immutable once returned.
type Result struct {
	Metric     Metric `json:"metric"`
	Depth      int64  `json:"depth"`
	Iterations int    `json:"iterations"`
	Seed       int64  `json:"seed"`
	Mode       Mode   `json:"mode"`

	Richness      *RichnessResult      `json:"richness,omitempty"`
	Dissimilarity *DissimilarityResult `json:"dissimilarity,omitempty"`

	Excluded []core.SampleID `json:"excluded"`
}

// RichnessResult holds the per-sample mean observed richness across draws,
// with the standard deviation across draws as a stability diagnostic.
type RichnessResult struct {
	// Samples lists retained samples in input column order.
	Samples []core.SampleID           `json:"samples"`
	Mean    map[core.SampleID]float64 `json:"mean"`
	StdDev  map[core.SampleID]float64 `json:"std_dev"`
}

// DissimilarityResult holds the mean Bray-Curtis matrix across draws over the
// retained samples. Entries for sample pairs whose columns were both all-zero
// are NaN (0/0 is undefined, never coerced).
type DissimilarityResult struct {
	// Samples lists retained samples in input column order; Matrix rows and
	// columns follow this order.
	Samples []core.SampleID
	Matrix  *mat.SymDense
}

// At returns the averaged dissimilarity between two samples by identifier.
func (d *DissimilarityResult) At(a, b core.SampleID) (float64, bool) {
	ia, ib := -1, -1
	for i, s := range d.Samples {
		if s == a {
			ia = i
		}
		if s == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return d.Matrix.At(ia, ib), true
}

// dissimilarityJSON is the wire shape of a DissimilarityResult. JSON has no
// NaN, so undefined entries travel as null.
type dissimilarityJSON struct {
	Samples []core.SampleID `json:"samples"`
	Values  [][]*float64    `json:"values"`
}

// MarshalJSON encodes the symmetric matrix as a full square of nullable
// floats, NaN entries as null.
func (d *DissimilarityResult) MarshalJSON() ([]byte, error) {
	n := len(d.Samples)
	values := make([][]*float64, n)
	for i := 0; i < n; i++ {
		values[i] = make([]*float64, n)
		for j := 0; j < n; j++ {
			v := d.Matrix.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			value := v
			values[i][j] = &value
		}
	}
	return json.Marshal(dissimilarityJSON{Samples: d.Samples, Values: values})
}

// UnmarshalJSON decodes the square-of-nullable-floats wire shape, restoring
// null entries as NaN.
func (d *DissimilarityResult) UnmarshalJSON(data []byte) error {
	var wire dissimilarityJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	n := len(wire.Samples)
	if len(wire.Values) != n {
		return fmt.Errorf("dissimilarity matrix has %d rows for %d samples", len(wire.Values), n)
	}
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if len(wire.Values[i]) != n {
			return fmt.Errorf("dissimilarity matrix row %d has %d entries for %d samples", i, len(wire.Values[i]), n)
		}
		for j := i; j < n; j++ {
			if wire.Values[i][j] == nil {
				m.SetSym(i, j, math.NaN())
			} else {
				m.SetSym(i, j, *wire.Values[i][j])
			}
		}
	}
	d.Samples = wire.Samples
	d.Matrix = m
	return nil
}
