// Package loudness implements ITU-R BS.1770-4 integrated loudness
// measurement: K-weighting, 400ms gating blocks with 75% overlap, and
// two-stage gating.
package loudness

import "math"

// K-weighting filter parameters from BS.1770-4. The corner frequencies and
// Q values are the exact constants the standard's coefficient tables were
// derived from, so the cookbook formulas below reproduce the published
// coefficients at 48kHz and stay correct at any other rate.
const (
	shelfFreq   = 1681.974450955533 // Hz, high-shelf corner
	shelfGainDB = 4.0               // dB, head-effect boost
	shelfQ      = 0.7071752369554196

	highpassFreq = 38.13547087602444 // Hz, RLB high-pass corner
)

// biquadCoeffs holds one second-order section, normalized by a0.
type biquadCoeffs struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// biquadState carries the last two inputs and outputs of one section for
// one channel. Kept separate from the coefficients so a single coefficient
// set can drive any number of channel paths.
type biquadState struct {
	x1, x2 float64
	y1, y2 float64
}

// apply runs the canonical normalized difference equation
// y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
// and shifts the state.
func (s *biquadState) apply(c *biquadCoeffs, x float64) float64 {
	y := c.b0*x + c.b1*s.x1 + c.b2*s.x2 - c.a1*s.y1 - c.a2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}

// shelfCoeffs derives the stage-1 high shelf (+4dB above ~1.68kHz) for the
// given sample rate using the audio EQ cookbook high-shelf bilinear
// transform with shelf gain A = 10^(G/40).
func shelfCoeffs(sampleRate float64) biquadCoeffs {
	a := math.Pow(10, shelfGainDB/40)
	w0 := 2 * math.Pi * shelfFreq / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * shelfQ)

	b0 := a * ((a + 1) + (a-1)*cosW0 + 2*math.Sqrt(a)*alpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cosW0)
	b2 := a * ((a + 1) + (a-1)*cosW0 - 2*math.Sqrt(a)*alpha)
	a0 := (a + 1) - (a-1)*cosW0 + 2*math.Sqrt(a)*alpha
	a1 := 2 * ((a - 1) - (a+1)*cosW0)
	a2 := (a + 1) - (a-1)*cosW0 - 2*math.Sqrt(a)*alpha

	return biquadCoeffs{b0 / a0, b1 / a0, b2 / a0, a1 / a0, a2 / a0}
}

// highpassCoeffs derives the stage-2 Butterworth high pass (~38Hz) for the
// given sample rate using the cookbook high-pass formula with Q = 1/sqrt(2).
func highpassCoeffs(sampleRate float64) biquadCoeffs {
	q := 1 / math.Sqrt2
	w0 := 2 * math.Pi * highpassFreq / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cosW0) / 2
	b1 := -(1 + cosW0)
	b2 := (1 + cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return biquadCoeffs{b0 / a0, b1 / a0, b2 / a0, a1 / a0, a2 / a0}
}
