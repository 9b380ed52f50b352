package normalize

import (
	"errors"
	"fmt"
	"math"

	"levelset/internal/loudness"
)

// Target bounds. Anything outside is a mistyped target, not a plausible
// loudness goal, and aborts the run before any group is touched.
const (
	MinTarget = -70.0
	MaxTarget = 0.0

	// DefaultTarget is the podcast loudness standard.
	DefaultTarget = -18.0

	// silenceFloorLUFS: groups measuring below this are treated as noise
	// floor and skipped rather than boosted by an absurd gain.
	silenceFloorLUFS = -90.0
)

var (
	ErrInvalidTarget  = errors.New("invalid target loudness")
	ErrEmptySelection = errors.New("no segments selected")
)

// Result is the outcome for one group.
type Result struct {
	Key      string
	Segments int

	Loudness   float64 // measured integrated loudness, LUFS
	Measurable bool    // false when no audio could be measured at all

	GainDB  float64 // target minus measured
	Gain    float64 // linear factor committed to every segment
	Applied bool
	Skipped string // reason, when Applied is false
	Err     error  // gain commit failure, isolated to this group
}

// Events receives run lifecycle notifications. Any callback may be nil.
type Events struct {
	GroupStart func(index int, key string)
	Progress   func(index int, key string, done float64)
	GroupDone  func(index int, res Result)
}

// Run partitions the selection into groups, measures each group's
// integrated loudness, and commits gain = 10^((target-measured)/20)
// identically to every segment of the group, preserving relative levels
// within it.
//
// Only input validation is fatal. Unmeasurable or silent groups are
// skipped with their gains untouched; every other group still runs.
func Run(target float64, segments []Segment, ev Events) ([]Result, error) {
	if math.IsNaN(target) || target < MinTarget || target > MaxTarget {
		return nil, fmt.Errorf("%w: %v LUFS (want %g to %g)",
			ErrInvalidTarget, target, MinTarget, MaxTarget)
	}
	if len(segments) == 0 {
		return nil, ErrEmptySelection
	}

	groups := BuildGroups(segments)
	results := make([]Result, 0, len(groups))

	for i, g := range groups {
		if ev.GroupStart != nil {
			ev.GroupStart(i, g.Key)
		}

		var cb func(float64)
		if ev.Progress != nil {
			idx, key := i, g.Key
			cb = func(done float64) { ev.Progress(idx, key, done) }
		}

		res := runGroup(target, g, cb)
		if ev.GroupDone != nil {
			ev.GroupDone(i, res)
		}
		results = append(results, res)
	}
	return results, nil
}

func runGroup(target float64, g *Group, progress func(done float64)) Result {
	res := Result{Key: g.Key, Segments: len(g.Segments)}

	res.Loudness, res.Measurable = loudness.MeasureGroup(g.sources(), progress)

	switch {
	case !res.Measurable:
		res.Skipped = "nothing to measure"
		return res
	case math.IsInf(res.Loudness, -1):
		res.Skipped = "silent, every block gated out"
		return res
	case res.Loudness < silenceFloorLUFS:
		res.Skipped = fmt.Sprintf("below noise floor at %.1f LUFS", res.Loudness)
		return res
	}

	res.GainDB = target - res.Loudness
	res.Gain = math.Pow(10, res.GainDB/20)

	for _, seg := range g.Segments {
		if err := seg.ApplyGain(res.Gain); err != nil {
			res.Err = fmt.Errorf("apply gain to group %q: %w", g.Key, err)
			res.Skipped = "gain commit failed"
			return res
		}
	}
	res.Applied = true
	return res
}
