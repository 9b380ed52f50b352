// Package source provides the file-backed segment implementation: WAV
// files read as normalize.Segment values, with the solved gain rendered
// into a normalised copy next to the input.
package source

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// decodeFrames bounds one decode from disk; memory stays at one buffer no
// matter how long the file is.
const decodeFrames = 4096

// takeSuffix matches trailing take numbering like "vocal_02" or "guitar-3",
// so consecutive takes of one track share a group key.
var takeSuffix = regexp.MustCompile(`[-_][0-9]+$`)

// FileSegment is one WAV file exposed as an audio segment. Samples stream
// forward through a small decode window; requesting an earlier time rewinds
// the decoder.
type FileSegment struct {
	path     string
	key      string
	channels int
	rate     int
	bitDepth int
	duration float64
	scale    float64

	file *os.File
	dec  *wav.Decoder
	pcm  *audio.IntBuffer

	window      []float64 // interleaved frames scaled to [-1,1]
	windowStart int64     // source frame index of window[0]
	eof         bool

	outPath string
}

// Open opens a WAV file and validates its header.
func Open(path string) (*FileSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}

	// The sample scaling below assumes signed PCM. 8-bit WAV is unsigned
	// with a 128 offset and would come out shifted, so it is rejected up
	// front rather than silently mismeasured.
	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		f.Close()
		return nil, fmt.Errorf("%s: unsupported bit depth %d (want 16, 24 or 32)", path, dec.BitDepth)
	}

	dur, err := dec.Duration()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: read duration: %w", path, err)
	}

	s := &FileSegment{
		path:     path,
		key:      trackKey(path),
		channels: int(dec.NumChans),
		rate:     int(dec.SampleRate),
		bitDepth: int(dec.BitDepth),
		duration: dur.Seconds(),
		scale:    1 / float64(int64(1)<<(dec.BitDepth-1)),
		file:     f,
		dec:      dec,
	}
	s.pcm = &audio.IntBuffer{
		Format: &audio.Format{NumChannels: s.channels, SampleRate: s.rate},
		Data:   make([]int, decodeFrames*s.channels),
	}
	return s, nil
}

// trackKey derives the group key: the file's directory plus its stem with
// any trailing take number removed, so takes of one track measure together.
func trackKey(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = takeSuffix.ReplaceAllString(stem, "")
	return filepath.Join(filepath.Dir(path), stem)
}

// Close releases the underlying file.
func (s *FileSegment) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *FileSegment) Path() string { return s.path }

// OutPath returns the path of the normalised copy, once ApplyGain ran.
func (s *FileSegment) OutPath() string { return s.outPath }

func (s *FileSegment) TimeRange() (float64, float64) { return 0, s.duration }

func (s *FileSegment) Channels() int { return s.channels }

func (s *FileSegment) GroupKey() string { return s.key }

// ReadSamples fills dst with interleaved samples at the requested rate and
// channel count starting at time from, converting rate by linear
// interpolation and mapping channels (downmix to mono by averaging,
// duplicate mono up to stereo). Returns frames written; short means end of
// data.
func (s *FileSegment) ReadSamples(rate, channels int, from float64, dst []float64) int {
	frames := len(dst) / channels
	written := 0

	for k := 0; k < frames; k++ {
		t := from + float64(k)/float64(rate)
		if t >= s.duration {
			break
		}

		srcPos := t * float64(s.rate)
		idx := int64(srcPos)
		frac := srcPos - float64(idx)

		f0, ok := s.frame(idx)
		if !ok {
			break
		}
		f1, ok := s.frame(idx + 1)
		if !ok {
			f1 = f0
		}

		for ch := 0; ch < channels; ch++ {
			v0 := mapChannel(f0, ch, channels)
			v1 := mapChannel(f1, ch, channels)
			dst[k*channels+ch] = v0 + frac*(v1-v0)
		}
		written++
	}
	return written
}

// mapChannel picks the value for output channel ch from a source frame.
func mapChannel(frame []float64, ch, outChannels int) float64 {
	switch {
	case len(frame) == outChannels:
		return frame[ch]
	case outChannels == 1:
		var sum float64
		for _, v := range frame {
			sum += v
		}
		return sum / float64(len(frame))
	case ch < len(frame):
		return frame[ch]
	default:
		return frame[len(frame)-1]
	}
}

// frame returns the source frame at idx, decoding forward as needed. The
// decode window keeps only the frames around idx, so memory stays bounded.
func (s *FileSegment) frame(idx int64) ([]float64, bool) {
	if idx < 0 {
		return nil, false
	}
	if idx < s.windowStart {
		if err := s.dec.Rewind(); err != nil {
			return nil, false
		}
		s.window = s.window[:0]
		s.windowStart = 0
		s.eof = false
	}

	// Drop frames the caller has moved past, keeping one frame of lookback
	// for the interpolation neighbour.
	s.trimTo(idx - 1)

	for !s.eof && s.windowStart+int64(len(s.window)/s.channels) <= idx+1 {
		n, err := s.dec.PCMBuffer(s.pcm)
		if err != nil || n == 0 {
			s.eof = true
			break
		}
		for _, v := range s.pcm.Data[:n] {
			s.window = append(s.window, float64(v)*s.scale)
		}
		s.trimTo(idx - 1)
	}

	pos := int(idx - s.windowStart)
	if (pos+1)*s.channels > len(s.window) {
		return nil, false
	}
	return s.window[pos*s.channels : (pos+1)*s.channels], true
}

// trimTo discards window frames before source index keepFrom.
func (s *FileSegment) trimTo(keepFrom int64) {
	if keepFrom <= s.windowStart {
		return
	}
	drop := keepFrom - s.windowStart
	if held := int64(len(s.window) / s.channels); drop > held {
		drop = held
	}
	s.window = s.window[drop*int64(s.channels):]
	s.windowStart += drop
}

// ApplyGain renders a copy of the file with every sample scaled by the
// linear factor, written as "<name>-normalised.wav". The factor is the
// segment's absolute gain; it is not combined with any earlier gain.
func (s *FileSegment) ApplyGain(linear float64) error {
	in, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", s.path, err)
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return fmt.Errorf("%s: not a valid WAV file", s.path)
	}

	outPath := outputPath(s.path)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, s.rate, s.bitDepth, s.channels, 1)

	limit := int64(1) << (s.bitDepth - 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: s.channels, SampleRate: s.rate},
		Data:   make([]int, decodeFrames*s.channels),
	}

	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return fmt.Errorf("decode %s: %w", s.path, err)
		}
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			v := int64(math.Round(float64(buf.Data[i]) * linear))
			if v > limit-1 {
				v = limit - 1
			} else if v < -limit {
				v = -limit
			}
			buf.Data[i] = int(v)
		}
		chunk := &audio.IntBuffer{Format: buf.Format, Data: buf.Data[:n]}
		if err := enc.Write(chunk); err != nil {
			return fmt.Errorf("encode %s: %w", outPath, err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", outPath, err)
	}
	s.outPath = outPath
	return nil
}

func outputPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-normalised.wav"
}
