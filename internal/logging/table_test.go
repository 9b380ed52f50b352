package logging

import (
	"math"
	"strings"
	"testing"

	"levelset/internal/normalize"
)

func TestBuildResultTableRows(t *testing.T) {
	results := []normalize.Result{
		{
			Key: "session/vocal", Segments: 2,
			Loudness: -23.4, Measurable: true,
			GainDB: 5.4, Gain: 1.86, Applied: true,
		},
		{
			Key: "session/room", Segments: 1,
			Loudness: math.Inf(-1), Measurable: true,
			Skipped: "silent, every block gated out",
		},
		{
			Key: "session/empty", Segments: 1,
			Measurable: false,
			Skipped:    "nothing to measure",
		},
	}

	out := BuildResultTable(results).String()
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows:\n%s", len(lines), out)
	}

	tests := []struct {
		line int
		want []string
	}{
		{0, []string{"Group", "Measured", "Gain", "Status"}},
		{1, []string{"session/vocal", "-23.4 LUFS", "+5.4 dB", "normalised"}},
		{2, []string{"session/room", "-inf", "-", "skipped: silent"}},
		{3, []string{"session/empty", "n/a", "skipped: nothing to measure"}},
	}
	for _, tt := range tests {
		for _, want := range tt.want {
			if !strings.Contains(lines[tt.line], want) {
				t.Errorf("line %d = %q, missing %q", tt.line, lines[tt.line], want)
			}
		}
	}
}

func TestResultTableAlignsColumns(t *testing.T) {
	results := []normalize.Result{
		{Key: "a", Segments: 1, Loudness: -20, Measurable: true, GainDB: 2, Gain: 1.26, Applied: true},
		{Key: "a much longer group name", Segments: 10, Loudness: -21.5, Measurable: true, GainDB: 3.5, Gain: 1.5, Applied: true},
	}

	out := BuildResultTable(results).String()
	lines := strings.Split(out, "\n")

	// Every row should place the status column at the same offset.
	idx := strings.Index(lines[1], "normalised")
	if idx < 0 {
		t.Fatalf("no status in row: %q", lines[1])
	}
	if got := strings.Index(lines[2], "normalised"); got != idx {
		t.Errorf("status column drifts: %d vs %d\n%s", idx, got, out)
	}
}

func TestEmptyTableRendersNothing(t *testing.T) {
	table := &ResultTable{}
	if got := table.String(); got != "" {
		t.Errorf("empty table rendered %q, want empty string", got)
	}
}
