package loudness

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Gating constants from BS.1770-4. Loudness of a mean power z is
// -0.691 + 10*log10(z); the absolute gate sits at -70 LKFS and the relative
// gate 10 LU below the mean loudness of the absolute-gated set.
const (
	loudnessOffset   = -0.691
	absoluteGateLKFS = -70.0
	relativeGateLU   = 10.0
)

// powerOf converts a loudness value back to mean power.
func powerOf(lkfs float64) float64 {
	return math.Pow(10, (lkfs-loudnessOffset)/10)
}

// lufsOf converts a mean power to loudness. Zero or negative power maps to
// -Inf, the "entirely silent" sentinel.
func lufsOf(power float64) float64 {
	if power <= 0 {
		return math.Inf(-1)
	}
	return loudnessOffset + 10*math.Log10(power)
}

// Integrated applies the two-stage BS.1770-4 gate to an ordered sequence of
// block mean powers and returns the integrated loudness in LUFS.
//
// ok is false when there were no blocks at all (nothing was measurable).
// With ok true, a -Inf loudness means blocks existed but the gate removed
// every one of them, i.e. the program is effectively silent.
func Integrated(blocks []float64) (lufs float64, ok bool) {
	if len(blocks) == 0 {
		return 0, false
	}

	// Absolute gate: drop blocks at or below -70 LKFS.
	absGate := powerOf(absoluteGateLKFS)
	kept := make([]float64, 0, len(blocks))
	for _, p := range blocks {
		if p > absGate {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return math.Inf(-1), true
	}

	// Relative gate: 10 LU below the mean loudness of the surviving set,
	// applied to that same set.
	relGate := powerOf(lufsOf(stat.Mean(kept, nil)) - relativeGateLU)
	var sum float64
	var n int
	for _, p := range kept {
		if p > relGate {
			sum += p
			n++
		}
	}
	if n == 0 {
		return math.Inf(-1), true
	}

	return lufsOf(sum / float64(n)), true
}
