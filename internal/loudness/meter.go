package loudness

import "math"

// Analysis constants. Measurement runs at a fixed reduced internal rate:
// gating only needs enough bandwidth for the K-weighted energy estimate, and
// a 16kHz pull keeps long sessions fast regardless of the source rate. The
// rate is part of the measurement contract, not configuration.
const (
	// AnalysisRate is the internal sample rate all sources are read at.
	AnalysisRate = 16000

	// ChunkFrames bounds one read from a source. Peak memory stays at one
	// chunk buffer no matter how long the audio is.
	ChunkFrames = 4096

	// MaxChannels clamps analysis to the first two channels, weighted
	// equally. Channels beyond stereo are ignored rather than given the
	// full BS.1770 multichannel weights.
	MaxChannels = 2
)

// Source yields raw interleaved samples for one audio region. Implemented
// by the host side (file segments, project items); the meter only pulls.
type Source interface {
	// TimeRange returns the region's start and end in seconds.
	TimeRange() (start, end float64)

	// Channels returns the source channel count.
	Channels() int

	// ReadSamples fills dst with interleaved samples at the requested rate
	// and channel count, starting at time from, and returns the number of
	// frames written. A short count signals end of data; it is never an
	// error.
	ReadSamples(rate, channels int, from float64, dst []float64) int
}

// Meter measures integrated loudness of one continuous K-weighted stream.
// Filter state is carried across every sample fed in, so multiple sources
// pushed through one Meter are treated as a single uninterrupted program.
type Meter struct {
	shelf    biquadCoeffs
	highpass biquadCoeffs
	state    [MaxChannels][2]biquadState
	acc      *blockAccumulator
}

// NewMeter creates a meter for the given sample rate.
func NewMeter(sampleRate int) *Meter {
	return &Meter{
		shelf:    shelfCoeffs(float64(sampleRate)),
		highpass: highpassCoeffs(float64(sampleRate)),
		acc:      newBlockAccumulator(sampleRate),
	}
}

// ProcessFrame feeds one frame (one sample per channel) through the
// two-stage cascade. Channels beyond MaxChannels are ignored; the
// instantaneous squared outputs of the remaining channels are averaged with
// equal weight before accumulation.
func (m *Meter) ProcessFrame(frame []float64) {
	if len(frame) > MaxChannels {
		frame = frame[:MaxChannels]
	}
	if len(frame) == 0 {
		return
	}

	var sum float64
	for ch, x := range frame {
		v := m.state[ch][0].apply(&m.shelf, x)
		v = m.state[ch][1].apply(&m.highpass, v)
		sum += v * v
	}
	m.acc.add(sum / float64(len(frame)))
}

// ProcessInterleaved feeds a buffer of interleaved frames.
func (m *Meter) ProcessInterleaved(buf []float64, channels int) {
	for i := 0; i+channels <= len(buf); i += channels {
		m.ProcessFrame(buf[i : i+channels])
	}
}

// Integrated gates the accumulated blocks and returns the integrated
// loudness. See Integrated for the sentinel semantics.
func (m *Meter) Integrated() (float64, bool) {
	return Integrated(m.acc.powers())
}

// MeasureGroup measures the integrated loudness of an ordered set of
// sources as one logical program. One filter cascade and one accumulator
// span all of them; state deliberately persists across source boundaries so
// splitting audio into consecutive regions does not disturb the result.
//
// progress, when non-nil, receives the fraction of total audio time
// processed after every chunk.
func MeasureGroup(sources []Source, progress func(done float64)) (float64, bool) {
	meter := NewMeter(AnalysisRate)

	var total float64
	for _, src := range sources {
		start, end := src.TimeRange()
		if end > start {
			total += end - start
		}
	}

	buf := make([]float64, ChunkFrames*MaxChannels)
	var elapsed float64

	for _, src := range sources {
		start, end := src.TimeRange()
		if end <= start {
			continue
		}

		channels := src.Channels()
		if channels > MaxChannels {
			channels = MaxChannels
		}
		if channels < 1 {
			channels = 1
		}
		chunk := buf[:ChunkFrames*channels]

		at := start
		for at < end {
			n := src.ReadSamples(AnalysisRate, channels, at, chunk)
			if n == 0 {
				break
			}
			meter.ProcessInterleaved(chunk[:n*channels], channels)

			at += float64(n) / AnalysisRate
			elapsed += float64(n) / AnalysisRate
			if progress != nil && total > 0 {
				progress(math.Min(elapsed/total, 1))
			}

			// A short read means the source ran out before the nominal
			// range did. Move on; never an error.
			if n < ChunkFrames {
				break
			}
		}
	}

	if progress != nil {
		progress(1)
	}
	return meter.Integrated()
}
