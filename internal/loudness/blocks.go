package loudness

import "gonum.org/v1/gonum/floats"

// Gating block geometry from BS.1770-4: 400ms blocks advanced every 100ms,
// i.e. 75% overlap. Realized as "one block = the last four 100ms hops" so a
// fixed four-slot ring of running sums replaces any per-sample buffering.
const (
	hopSeconds   = 0.1
	hopsPerBlock = 4
)

// blockAccumulator converts a stream of K-weighted squared samples into a
// sequence of gating-block mean powers in O(1) memory. Each ring slot holds
// the running square sum of one hop; a block closes with every hop from the
// fourth onward.
type blockAccumulator struct {
	hopLen int // samples per hop

	slots  [hopsPerBlock]float64
	cursor int // active slot
	fill   int // samples accumulated into the active slot
	closed int // hops closed so far

	blocks []float64

	// Totals for the short-audio fallback block.
	energy  float64
	samples int
}

func newBlockAccumulator(sampleRate int) *blockAccumulator {
	return &blockAccumulator{hopLen: int(hopSeconds * float64(sampleRate))}
}

// add accumulates one squared sample into the active hop, closing the hop
// when it fills. Closing the fourth or later hop emits one block whose mean
// power spans the last four hops.
func (a *blockAccumulator) add(sq float64) {
	a.slots[a.cursor] += sq
	a.fill++
	a.energy += sq
	a.samples++

	if a.fill < a.hopLen {
		return
	}

	a.closed++
	if a.closed >= hopsPerBlock {
		sum := floats.Sum(a.slots[:])
		a.blocks = append(a.blocks, sum/float64(hopsPerBlock*a.hopLen))
	}

	// Advance and reclaim the slot that just fell out of the window.
	a.cursor = (a.cursor + 1) % hopsPerBlock
	a.slots[a.cursor] = 0
	a.fill = 0
}

// powers returns the collected block mean powers. A stream too short to
// close a single block still yields one approximate block, the mean power
// over however many samples were actually processed, so sub-400ms audio
// measures instead of vanishing.
func (a *blockAccumulator) powers() []float64 {
	if len(a.blocks) > 0 || a.samples == 0 {
		return a.blocks
	}
	return []float64{a.energy / float64(a.samples)}
}
