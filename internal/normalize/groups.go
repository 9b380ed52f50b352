// Package normalize partitions a selection of audio segments into
// measurement groups, measures each group's integrated loudness, and
// applies one corrective gain per group.
package normalize

import "levelset/internal/loudness"

// Segment is one playable audio region owned by the host. The normalizer
// reads samples through the loudness.Source side and commits exactly one
// absolute gain per run; it never creates or destroys segments.
type Segment interface {
	loudness.Source

	// GroupKey identifies the measurement group this segment belongs to,
	// typically its parent track. The value is opaque.
	GroupKey() string

	// ApplyGain overwrites the segment's gain with the given linear
	// factor. It does not compose with any previous gain.
	ApplyGain(linear float64) error
}

// Group is one measurement unit: the ordered segments that share a key and
// are measured as a single continuous program.
type Group struct {
	Key      string
	Segments []Segment
}

// BuildGroups partitions the selection by group key. Group order follows
// first appearance in the selection; segment order within a group is the
// selection order. The mapping is rebuilt on every invocation, nothing
// survives a run.
func BuildGroups(segments []Segment) []*Group {
	byKey := make(map[string]*Group, len(segments))
	var groups []*Group

	for _, seg := range segments {
		key := seg.GroupKey()
		g, ok := byKey[key]
		if !ok {
			g = &Group{Key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.Segments = append(g.Segments, seg)
	}
	return groups
}

func (g *Group) sources() []loudness.Source {
	srcs := make([]loudness.Source, len(g.Segments))
	for i, s := range g.Segments {
		srcs[i] = s
	}
	return srcs
}
