package count

import (
	"fmt"
	"strings"

	"rarefy/domain/core"
)

// Table is an immutable sample-by-taxon matrix of non-negative read counts.
// Rows are taxa, columns are samples. A sample's library size is the sum of
// its column. The engine only ever reads a Table; derived tables (subsampled
// draws) are built fresh through NewTable.
type Table struct {
	taxa    []core.TaxonID
	samples []core.SampleID
	// counts[t][s] holds the reads of taxon t observed in sample s
	counts [][]int64

	sampleIndex map[core.SampleID]int
	taxonIndex  map[core.TaxonID]int
}

// NewTable validates and copies the given matrix into an immutable Table.
// counts must have one row per taxon and one column per sample, every entry
// non-negative, and identifiers unique on both axes.
func NewTable(taxa []core.TaxonID, samples []core.SampleID, counts [][]int64) (*Table, error) {
	if len(taxa) == 0 {
		return nil, fmt.Errorf("table must have at least one taxon")
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("table must have at least one sample")
	}
	if len(counts) != len(taxa) {
		return nil, fmt.Errorf("count matrix has %d rows, expected one per taxon (%d)", len(counts), len(taxa))
	}

	taxonIndex := make(map[core.TaxonID]int, len(taxa))
	for i, taxon := range taxa {
		if strings.TrimSpace(string(taxon)) == "" {
			return nil, fmt.Errorf("taxon identifier at row %d is empty", i)
		}
		if _, dup := taxonIndex[taxon]; dup {
			return nil, fmt.Errorf("duplicate taxon identifier %q", taxon)
		}
		taxonIndex[taxon] = i
	}

	sampleIndex := make(map[core.SampleID]int, len(samples))
	for j, sample := range samples {
		if strings.TrimSpace(string(sample)) == "" {
			return nil, fmt.Errorf("sample identifier at column %d is empty", j)
		}
		if _, dup := sampleIndex[sample]; dup {
			return nil, fmt.Errorf("duplicate sample identifier %q", sample)
		}
		sampleIndex[sample] = j
	}

	copied := make([][]int64, len(taxa))
	for i, row := range counts {
		if len(row) != len(samples) {
			return nil, fmt.Errorf("row %q has %d columns, expected one per sample (%d)", taxa[i], len(row), len(samples))
		}
		copied[i] = make([]int64, len(samples))
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("negative count %d for taxon %q in sample %q", v, taxa[i], samples[j])
			}
			copied[i][j] = v
		}
	}

	return &Table{
		taxa:        append([]core.TaxonID(nil), taxa...),
		samples:     append([]core.SampleID(nil), samples...),
		counts:      copied,
		sampleIndex: sampleIndex,
		taxonIndex:  taxonIndex,
	}, nil
}

// NumTaxa returns the number of taxa (rows).
func (t *Table) NumTaxa() int { return len(t.taxa) }

// NumSamples returns the number of samples (columns).
func (t *Table) NumSamples() int { return len(t.samples) }

// Taxa returns the taxon identifiers in row order.
func (t *Table) Taxa() []core.TaxonID {
	return append([]core.TaxonID(nil), t.taxa...)
}

// Samples returns the sample identifiers in column order.
func (t *Table) Samples() []core.SampleID {
	return append([]core.SampleID(nil), t.samples...)
}

// SampleAt returns the sample identifier at column j.
func (t *Table) SampleAt(j int) core.SampleID { return t.samples[j] }

// TaxonAt returns the taxon identifier at row i.
func (t *Table) TaxonAt(i int) core.TaxonID { return t.taxa[i] }

// Count returns the reads of taxon row i in sample column j.
func (t *Table) Count(i, j int) int64 { return t.counts[i][j] }

// Column returns a copy of the per-taxon count vector for the given sample.
func (t *Table) Column(sample core.SampleID) ([]int64, bool) {
	j, ok := t.sampleIndex[sample]
	if !ok {
		return nil, false
	}
	return t.ColumnAt(j), true
}

// ColumnAt returns a copy of the per-taxon count vector at column j.
func (t *Table) ColumnAt(j int) []int64 {
	col := make([]int64, len(t.taxa))
	for i := range t.taxa {
		col[i] = t.counts[i][j]
	}
	return col
}

// LibrarySize returns the total read count of the sample at column j.
func (t *Table) LibrarySize(j int) int64 {
	var sum int64
	for i := range t.taxa {
		sum += t.counts[i][j]
	}
	return sum
}

// LibrarySizes returns every sample's library size keyed by identifier.
func (t *Table) LibrarySizes() map[core.SampleID]int64 {
	sizes := make(map[core.SampleID]int64, len(t.samples))
	for j, sample := range t.samples {
		sizes[sample] = t.LibrarySize(j)
	}
	return sizes
}

// MinLibrarySize returns the smallest library size across all samples.
func (t *Table) MinLibrarySize() int64 {
	min := t.LibrarySize(0)
	for j := 1; j < len(t.samples); j++ {
		if size := t.LibrarySize(j); size < min {
			min = size
		}
	}
	return min
}

// Fingerprint returns a deterministic hash over identifiers and counts,
// stable across processes for identical tables.
func (t *Table) Fingerprint() core.TableHash {
	var b strings.Builder
	for _, taxon := range t.taxa {
		b.WriteString(string(taxon))
		b.WriteByte('|')
	}
	b.WriteByte('\n')
	for _, sample := range t.samples {
		b.WriteString(string(sample))
		b.WriteByte('|')
	}
	b.WriteByte('\n')
	for i := range t.taxa {
		for j := range t.samples {
			fmt.Fprintf(&b, "%d,", t.counts[i][j])
		}
		b.WriteByte('\n')
	}
	return core.NewTableHash([]byte(b.String()))
}
