package loudness

import (
	"math"
	"testing"
)

// dcGain evaluates |H(1)|, the response at DC, of a normalized section.
func dcGain(c biquadCoeffs) float64 {
	return (c.b0 + c.b1 + c.b2) / (1 + c.a1 + c.a2)
}

// nyquistGain evaluates |H(-1)|, the response at fs/2.
func nyquistGain(c biquadCoeffs) float64 {
	return (c.b0 - c.b1 + c.b2) / (1 - c.a1 + c.a2)
}

func TestShelfCoeffs(t *testing.T) {
	for _, rate := range []float64{16000, 44100, 48000} {
		c := shelfCoeffs(rate)

		// The shelf boosts the top of the band by +4dB and leaves the
		// bottom untouched; both ends are exact under the bilinear
		// transform.
		if got := dcGain(c); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("rate %.0f: shelf DC gain = %v, want 1.0", rate, got)
		}

		want := math.Pow(10, shelfGainDB/20)
		if got := nyquistGain(c); math.Abs(got-want) > 1e-9 {
			t.Errorf("rate %.0f: shelf Nyquist gain = %v, want %v", rate, got, want)
		}
	}
}

func TestHighpassCoeffs(t *testing.T) {
	for _, rate := range []float64{16000, 44100, 48000} {
		c := highpassCoeffs(rate)

		if got := dcGain(c); math.Abs(got) > 1e-9 {
			t.Errorf("rate %.0f: highpass DC gain = %v, want 0", rate, got)
		}

		if got := nyquistGain(c); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("rate %.0f: highpass Nyquist gain = %v, want 1.0", rate, got)
		}
	}
}

func TestBiquadStateCarriesAcrossCalls(t *testing.T) {
	c := highpassCoeffs(16000)

	input := make([]float64, 256)
	for i := range input {
		input[i] = math.Sin(float64(i) * 0.1)
	}

	// One pass over the whole buffer.
	var whole biquadState
	wantOut := make([]float64, len(input))
	for i, x := range input {
		wantOut[i] = whole.apply(&c, x)
	}

	// Same stream split into uneven chunks through one state object must
	// produce identical output; the state is the only memory.
	var split biquadState
	var got []float64
	for _, chunk := range [][]float64{input[:7], input[7:100], input[100:]} {
		for _, x := range chunk {
			got = append(got, split.apply(&c, x))
		}
	}

	for i := range wantOut {
		if got[i] != wantOut[i] {
			t.Fatalf("sample %d: split output %v != whole output %v", i, got[i], wantOut[i])
		}
	}
}
