package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"rarefy/domain/count"
)

// BrayCurtis computes the pairwise Bray-Curtis dissimilarity matrix of a
// count table:
//
//	BC_jk = Σ_i |x_ij − x_ik| / Σ_i (x_ij + x_ik)
//
// Values lie in [0, 1] with a zero diagonal. A pair of samples whose columns
// are both all-zero has no defined dissimilarity (0/0); the entry is NaN,
// never coerced to 0 or 1.
type BrayCurtis struct{}

// NewBrayCurtis creates the Bray-Curtis dissimilarity metric
func NewBrayCurtis() *BrayCurtis {
	return &BrayCurtis{}
}

// Name returns the metric name
func (m *BrayCurtis) Name() string { return "braycurtis" }

// Compute returns the symmetric dissimilarity matrix; rows and columns
// follow the table's sample order.
func (m *BrayCurtis) Compute(t *count.Table) *mat.SymDense {
	n := t.NumSamples()
	out := mat.NewSymDense(n, nil)
	for j := 0; j < n; j++ {
		for k := j + 1; k < n; k++ {
			out.SetSym(j, k, m.pair(t, j, k))
		}
	}
	return out
}

// pair computes the dissimilarity between sample columns j and k.
func (m *BrayCurtis) pair(t *count.Table, j, k int) float64 {
	var diff, total int64
	for i := 0; i < t.NumTaxa(); i++ {
		xj, xk := t.Count(i, j), t.Count(i, k)
		if xj > xk {
			diff += xj - xk
		} else {
			diff += xk - xj
		}
		total += xj + xk
	}
	if total == 0 {
		return math.NaN()
	}
	return float64(diff) / float64(total)
}
