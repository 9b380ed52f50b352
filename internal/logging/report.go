package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"levelset/internal/normalize"
)

// GroupDetail lists the files behind one group for the report.
type GroupDetail struct {
	Key   string
	Files []string
}

// ReportData collects everything the run report needs.
type ReportData struct {
	Version   string
	Target    float64
	StartTime time.Time
	EndTime   time.Time
	Results   []normalize.Result
	Groups    []GroupDetail
}

// GenerateReport writes a plain-text report of the whole run, named after
// its start time, into the working directory.
func GenerateReport(data ReportData) error {
	path := fmt.Sprintf("levelset-%s.log", data.StartTime.Format("20060102-150405"))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	rule := strings.Repeat("=", 64)

	fmt.Fprintf(&b, "%s\nLevelset %s - loudness normalization report\n%s\n\n",
		rule, data.Version, rule)
	fmt.Fprintf(&b, "Target loudness : %.1f LUFS\n", data.Target)
	fmt.Fprintf(&b, "Started         : %s\n", data.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "Finished        : %s\n", data.EndTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration        : %.1fs\n\n", data.EndTime.Sub(data.StartTime).Seconds())

	b.WriteString(BuildResultTable(data.Results).String())
	b.WriteString("\n")

	details := make(map[string][]string, len(data.Groups))
	for _, g := range data.Groups {
		details[g.Key] = g.Files
	}

	for _, res := range data.Results {
		fmt.Fprintf(&b, "\n--- %s ---\n", res.Key)
		for _, file := range details[res.Key] {
			fmt.Fprintf(&b, "  segment: %s\n", file)
		}
		fmt.Fprintf(&b, "  measured: %s\n", FormatLoudness(res))
		if res.Applied {
			fmt.Fprintf(&b, "  gain: %+.2f dB (x%.4f linear) applied to all %d segment(s)\n",
				res.GainDB, res.Gain, res.Segments)
		} else if res.Err != nil {
			fmt.Fprintf(&b, "  failed: %v\n", res.Err)
		} else {
			fmt.Fprintf(&b, "  skipped: %s\n", res.Skipped)
		}
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
