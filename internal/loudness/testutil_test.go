package loudness

import "math"

// sineSource is a deterministic Source producing a sine tone. Samples are a
// pure function of absolute time, so two sources covering adjacent time
// ranges of the same oscillator are phase-continuous, exactly like one
// region split in two.
type sineSource struct {
	freq     float64 // Hz
	amp      float64 // linear peak amplitude
	start    float64 // seconds
	end      float64 // seconds
	channels int
}

func (s *sineSource) TimeRange() (float64, float64) { return s.start, s.end }

func (s *sineSource) Channels() int { return s.channels }

func (s *sineSource) ReadSamples(rate, channels int, from float64, dst []float64) int {
	frames := len(dst) / channels
	avail := int(math.Round((s.end - from) * float64(rate)))
	if avail <= 0 {
		return 0
	}
	if frames > avail {
		frames = avail
	}

	for i := 0; i < frames; i++ {
		t := from + float64(i)/float64(rate)
		v := s.amp * math.Sin(2*math.Pi*s.freq*t)
		for ch := 0; ch < channels; ch++ {
			dst[i*channels+ch] = v
		}
	}
	return frames
}

// dbToAmp converts dBFS to linear peak amplitude.
func dbToAmp(db float64) float64 {
	return math.Pow(10, db/20)
}
