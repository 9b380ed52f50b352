// Package logging renders run summaries and the optional analysis report
// for a normalization run.
package logging

import (
	"fmt"
	"math"
	"strings"

	"levelset/internal/normalize"
)

// ResultRow is one group line in the run summary table. Values are
// pre-formatted strings so sentinel loudness values and skip reasons share
// the same columns as numbers.
type ResultRow struct {
	Group    string
	Segments string
	Loudness string
	Gain     string
	Status   string
}

// ResultTable formats aligned columns for per-group outcomes.
type ResultTable struct {
	Rows []ResultRow
}

var resultHeaders = [...]string{"Group", "Segs", "Measured", "Gain", "Status"}

// String renders the table with aligned columns: group labels left-aligned,
// numeric columns right-aligned.
func (t *ResultTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(resultHeaders))
	for i, h := range resultHeaders {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, v := range row.columns() {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cols []string) {
		for i, v := range cols {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == 0 || i == len(cols)-1 {
				fmt.Fprintf(&b, "%-*s", widths[i], v)
			} else {
				fmt.Fprintf(&b, "%*s", widths[i], v)
			}
		}
		b.WriteString("\n")
	}

	writeRow(resultHeaders[:])
	for _, row := range t.Rows {
		writeRow(row.columns())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r ResultRow) columns() []string {
	return []string{r.Group, r.Segments, r.Loudness, r.Gain, r.Status}
}

// BuildResultTable converts run results into a printable table.
func BuildResultTable(results []normalize.Result) *ResultTable {
	t := &ResultTable{Rows: make([]ResultRow, 0, len(results))}
	for _, res := range results {
		t.Rows = append(t.Rows, ResultRow{
			Group:    res.Key,
			Segments: fmt.Sprintf("%d", res.Segments),
			Loudness: FormatLoudness(res),
			Gain:     FormatGain(res),
			Status:   formatStatus(res),
		})
	}
	return t
}

// FormatLoudness renders a measured loudness, including the sentinels.
func FormatLoudness(res normalize.Result) string {
	switch {
	case !res.Measurable:
		return "n/a"
	case math.IsInf(res.Loudness, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%.1f LUFS", res.Loudness)
	}
}

// FormatGain renders the applied gain, or a dash when none was.
func FormatGain(res normalize.Result) string {
	if !res.Applied {
		return "-"
	}
	return fmt.Sprintf("%+.1f dB", res.GainDB)
}

func formatStatus(res normalize.Result) string {
	switch {
	case res.Applied:
		return "normalised"
	case res.Err != nil:
		return fmt.Sprintf("failed: %v", res.Err)
	default:
		return "skipped: " + res.Skipped
	}
}
