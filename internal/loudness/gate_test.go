package loudness

import (
	"math"
	"testing"
)

func TestIntegratedEmptySequence(t *testing.T) {
	if _, ok := Integrated(nil); ok {
		t.Fatal("empty block sequence reported as measurable")
	}
}

func TestIntegratedAllBelowAbsoluteGate(t *testing.T) {
	blocks := []float64{powerOf(-80), powerOf(-75), 0}

	lufs, ok := Integrated(blocks)
	if !ok {
		t.Fatal("non-empty block sequence reported as unmeasurable")
	}
	if !math.IsInf(lufs, -1) {
		t.Fatalf("all-gated sequence = %v, want -Inf", lufs)
	}
}

func TestIntegratedUniformBlocks(t *testing.T) {
	blocks := []float64{powerOf(-23), powerOf(-23), powerOf(-23)}

	lufs, ok := Integrated(blocks)
	if !ok {
		t.Fatal("uniform sequence reported as unmeasurable")
	}
	if math.Abs(lufs-(-23)) > 1e-9 {
		t.Errorf("uniform -23 LKFS blocks = %v, want -23", lufs)
	}
}

func TestAbsoluteGateExcludesQuietBlocks(t *testing.T) {
	// Blocks below -70 LKFS must not drag down the relative threshold or
	// the final mean, however many there are.
	blocks := []float64{powerOf(-30), powerOf(-30)}
	for i := 0; i < 50; i++ {
		blocks = append(blocks, powerOf(-80))
	}

	lufs, ok := Integrated(blocks)
	if !ok {
		t.Fatal("sequence reported as unmeasurable")
	}
	if math.Abs(lufs-(-30)) > 1e-9 {
		t.Errorf("loudness with sub-absolute blocks = %v, want -30 exactly", lufs)
	}
}

func TestRelativeGateExcludesQuietPassages(t *testing.T) {
	// -45 LKFS blocks pass the absolute gate but fall more than 10 LU
	// below the absolute-gated mean (-32.9), so the relative gate drops
	// them and the result is the loud blocks alone.
	blocks := []float64{
		powerOf(-30), powerOf(-30), powerOf(-30),
		powerOf(-45), powerOf(-45),
	}

	lufs, ok := Integrated(blocks)
	if !ok {
		t.Fatal("sequence reported as unmeasurable")
	}
	if math.Abs(lufs-(-30)) > 1e-9 {
		t.Errorf("loudness with quiet passages = %v, want -30", lufs)
	}
}

func TestRelativeGateKeepsComparableBlocks(t *testing.T) {
	// Blocks within 10 LU of the mean all survive; the result lands
	// between the two levels.
	blocks := []float64{powerOf(-20), powerOf(-24)}

	lufs, ok := Integrated(blocks)
	if !ok {
		t.Fatal("sequence reported as unmeasurable")
	}
	// Mean power of -20 and -24 LKFS is -21.7 LKFS.
	want := lufsOf((powerOf(-20) + powerOf(-24)) / 2)
	if math.Abs(lufs-want) > 1e-9 {
		t.Errorf("loudness = %v, want %v", lufs, want)
	}
}
