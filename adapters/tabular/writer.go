package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"rarefy/domain/rarefaction"
	apperrors "rarefy/internal/errors"
)

// ResultWriter exports a rarefaction result to CSV or xlsx
type ResultWriter struct {
	filePath string
	fileType string
}

// NewResultWriter creates a writer, inferring the format from the extension.
// Anything but .xlsx is written as CSV.
func NewResultWriter(filePath string) *ResultWriter {
	fileType := "csv"
	if strings.ToLower(filepath.Ext(filePath)) == ".xlsx" {
		fileType = "xlsx"
	}
	return &ResultWriter{filePath: filePath, fileType: fileType}
}

// Write exports the result: a sample/mean/stddev table for richness, a
// square labeled matrix for dissimilarity. Undefined matrix entries are
// written as "NA".
func (w *ResultWriter) Write(result *rarefaction.Result) error {
	var rows [][]string
	switch {
	case result.Richness != nil:
		rows = richnessRows(result.Richness)
	case result.Dissimilarity != nil:
		rows = dissimilarityRows(result.Dissimilarity)
	default:
		return apperrors.InternalError("result carries no metric values to export")
	}

	if w.fileType == "xlsx" {
		return w.writeExcel(rows)
	}
	return w.writeCSV(rows)
}

func richnessRows(r *rarefaction.RichnessResult) [][]string {
	rows := [][]string{{"sample", "mean_richness", "std_dev"}}
	for _, sample := range r.Samples {
		rows = append(rows, []string{
			sample.String(),
			formatFloat(r.Mean[sample]),
			formatFloat(r.StdDev[sample]),
		})
	}
	return rows
}

func dissimilarityRows(d *rarefaction.DissimilarityResult) [][]string {
	header := make([]string, 0, len(d.Samples)+1)
	header = append(header, "")
	for _, sample := range d.Samples {
		header = append(header, sample.String())
	}
	rows := [][]string{header}
	for i, sample := range d.Samples {
		row := make([]string, 0, len(d.Samples)+1)
		row = append(row, sample.String())
		for j := range d.Samples {
			row = append(row, formatFloat(d.Matrix.At(i, j)))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (w *ResultWriter) writeCSV(rows [][]string) error {
	f, err := os.Create(w.filePath)
	if err != nil {
		return apperrors.Wrap(err, "creating export file")
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(rows); err != nil {
		return apperrors.Wrap(err, "writing export rows")
	}
	return nil
}

func (w *ResultWriter) writeExcel(rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return apperrors.Wrap(err, "computing cell reference")
			}
			if err := f.SetCellValue(sheet, ref, cell); err != nil {
				return apperrors.Wrap(err, fmt.Sprintf("writing cell %s", ref))
			}
		}
	}
	if err := f.SaveAs(w.filePath); err != nil {
		return apperrors.Wrap(err, "saving xlsx export")
	}
	return nil
}
