package main

import (
	"math"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"levelset/internal/normalize"
	"levelset/internal/ui"
)

// toneSegment is an in-memory sine segment for wiring tests.
type toneSegment struct {
	key      string
	amp      float64
	duration float64
}

func (s *toneSegment) TimeRange() (float64, float64) { return 0, s.duration }

func (s *toneSegment) Channels() int { return 1 }

func (s *toneSegment) ReadSamples(rate, channels int, from float64, dst []float64) int {
	frames := len(dst) / channels
	avail := int(math.Round((s.duration - from) * float64(rate)))
	if avail <= 0 {
		return 0
	}
	if frames > avail {
		frames = avail
	}
	for i := 0; i < frames; i++ {
		t := from + float64(i)/float64(rate)
		v := s.amp * math.Sin(2*math.Pi*997*t)
		for ch := 0; ch < channels; ch++ {
			dst[i*channels+ch] = v
		}
	}
	return frames
}

func (s *toneSegment) GroupKey() string { return s.key }

func (s *toneSegment) ApplyGain(linear float64) error {
	s.amp *= linear
	return nil
}

// recordingSender captures UI messages in place of a running tea.Program.
type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recordingSender) snapshot() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

func TestStartRunDeliversOutcomeOverChannel(t *testing.T) {
	seg := &toneSegment{key: "track 1", amp: 0.1, duration: 1}
	rec := &recordingSender{}

	done := startRun(rec, -18, []normalize.Segment{seg})

	var out runOutcome
	select {
	case out = <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("no outcome delivered")
	}

	if out.err != nil {
		t.Fatalf("run error: %v", out.err)
	}
	if len(out.results) != 1 {
		t.Fatalf("got %d results, want 1", len(out.results))
	}
	if !out.results[0].Applied {
		t.Errorf("group skipped: %s", out.results[0].Skipped)
	}

	// AllDoneMsg is sent only after the outcome is on the channel, so the
	// UI cannot exit normally before the results exist.
	deadline := time.Now().Add(5 * time.Second)
	for {
		msgs := rec.snapshot()
		if len(msgs) > 0 {
			if _, ok := msgs[len(msgs)-1].(ui.AllDoneMsg); ok {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("AllDoneMsg never arrived; messages: %v", msgs)
		}
		time.Sleep(time.Millisecond)
	}

	var starts, dones int
	for _, msg := range rec.snapshot() {
		switch msg.(type) {
		case ui.GroupStartMsg:
			starts++
		case ui.GroupDoneMsg:
			dones++
		}
	}
	if starts != 1 || dones != 1 {
		t.Errorf("got %d GroupStartMsg and %d GroupDoneMsg, want 1 each", starts, dones)
	}
}

func TestStartRunDeliversFatalError(t *testing.T) {
	seg := &toneSegment{key: "track 1", amp: 0.1, duration: 1}
	rec := &recordingSender{}

	done := startRun(rec, math.NaN(), []normalize.Segment{seg})

	select {
	case out := <-done:
		if out.err == nil {
			t.Fatal("invalid target produced no error")
		}
	case <-time.After(30 * time.Second):
		t.Fatal("no outcome delivered")
	}
}
