package api

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"rarefy/domain/rarefaction"
)

// renderReportHTML builds a markdown summary of a stored run and renders it
// to HTML.
func renderReportHTML(run *rarefaction.Run) []byte {
	md := buildReportMarkdown(run)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.Render(p.Parse([]byte(md)), renderer)
}

func buildReportMarkdown(run *rarefaction.Run) string {
	var b strings.Builder
	result := run.Result

	fmt.Fprintf(&b, "# Rarefaction run %s\n\n", run.ID)
	fmt.Fprintf(&b, "- **Metric**: %s\n", result.Metric)
	fmt.Fprintf(&b, "- **Depth**: %d reads per sample\n", result.Depth)
	fmt.Fprintf(&b, "- **Iterations**: %d\n", result.Iterations)
	fmt.Fprintf(&b, "- **Seed**: %d\n", result.Seed)
	fmt.Fprintf(&b, "- **Mode**: %s\n", result.Mode)
	fmt.Fprintf(&b, "- **Fingerprint**: `%s`\n\n", run.Fingerprint.Fingerprint)

	if len(result.Excluded) > 0 {
		b.WriteString("## Excluded samples\n\n")
		b.WriteString("Library size below the target depth; dropped from every draw:\n\n")
		for _, sample := range result.Excluded {
			fmt.Fprintf(&b, "- %s\n", sample)
		}
		b.WriteString("\n")
	}

	if result.Richness != nil {
		b.WriteString("## Rarefied richness\n\n")
		b.WriteString("| Sample | Mean richness | SD across draws |\n")
		b.WriteString("|---|---|---|\n")
		for _, sample := range result.Richness.Samples {
			fmt.Fprintf(&b, "| %s | %.3f | %.3f |\n",
				sample, result.Richness.Mean[sample], result.Richness.StdDev[sample])
		}
	}

	if result.Dissimilarity != nil {
		d := result.Dissimilarity
		b.WriteString("## Mean Bray-Curtis dissimilarity\n\n")
		b.WriteString("| |")
		for _, sample := range d.Samples {
			fmt.Fprintf(&b, " %s |", sample)
		}
		b.WriteString("\n|---|")
		for range d.Samples {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for i, sample := range d.Samples {
			fmt.Fprintf(&b, "| %s |", sample)
			for j := range d.Samples {
				v := d.Matrix.At(i, j)
				if math.IsNaN(v) {
					b.WriteString(" NA |")
				} else {
					fmt.Fprintf(&b, " %.4f |", v)
				}
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
