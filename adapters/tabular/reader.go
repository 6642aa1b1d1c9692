// Package tabular loads delimited feature tables into count tables and
// exports rarefaction results. Supported formats: TSV, CSV and xlsx.
//
// The expected layout is taxa as rows and samples as columns: the header row
// carries a label cell followed by sample identifiers, every other row a
// taxon identifier followed by integer read counts.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"rarefy/domain/core"
	"rarefy/domain/count"
	apperrors "rarefy/internal/errors"
)

// TableReader handles reading TSV, CSV and xlsx feature tables
type TableReader struct {
	filePath string
	fileType string // "tsv", "csv" or "xlsx"
}

// NewTableReader creates a reader, inferring the format from the extension.
// Unknown extensions are treated as TSV, the common feature-table default.
func NewTableReader(filePath string) *TableReader {
	fileType := "tsv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		fileType = "csv"
	case ".xlsx":
		fileType = "xlsx"
	}
	return &TableReader{filePath: filePath, fileType: fileType}
}

// Read parses the file into an immutable count table.
func (r *TableReader) Read() (*count.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.NotFound(fmt.Sprintf("feature table %s", r.filePath))
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		rows, err = r.readDelimitedRows()
	}
	if err != nil {
		return nil, err
	}
	table, err := parseRows(rows)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeTableInvalid, apperrors.Wrapf(err, "parsing %s", r.filePath))
	}
	return table, nil
}

func (r *TableReader) readDelimitedRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open feature table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if r.fileType == "tsv" {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", strings.ToUpper(r.fileType), err)
	}
	return rows, nil
}

func (r *TableReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// parseRows turns header + data rows into a count table.
func parseRows(rows [][]string) (*count.Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("feature table needs a header row and at least one taxon row, got %d rows", len(rows))
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("header row needs a label cell and at least one sample column")
	}
	samples := make([]core.SampleID, len(header)-1)
	for j, cell := range header[1:] {
		samples[j] = core.SampleID(strings.TrimSpace(cell))
	}

	taxa := make([]core.TaxonID, 0, len(rows)-1)
	counts := make([][]int64, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %q has %d cells, header has %d", row[0], len(row), len(header))
		}
		taxa = append(taxa, core.TaxonID(strings.TrimSpace(row[0])))
		values := make([]int64, len(samples))
		for j, cell := range row[1:] {
			v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("taxon %q, sample %q: %q is not an integer count", row[0], samples[j], cell)
			}
			values[j] = v
		}
		counts = append(counts, values)
	}

	return count.NewTable(taxa, samples, counts)
}
