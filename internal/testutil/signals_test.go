package testutil

import (
	"math"
	"testing"
)

func TestSine(t *testing.T) {
	s := Sine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestNoiseReproducible(t *testing.T) {
	a := Noise(42, 1.0, 64)
	b := Noise(42, 1.0, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	sig := Sine(440, 48000, 0.5, 100)
	blocks := Split(sig, 32)
	if len(blocks) != 4 {
		t.Fatalf("blocks = %d, want 4", len(blocks))
	}
	for _, b := range blocks {
		if len(b) != 32 {
			t.Fatalf("block len = %d, want 32", len(b))
		}
	}
	joined := Join(blocks)
	RequireSliceNearlyEqual(t, joined[:len(sig)], sig, 0)
	RequireSilent(t, joined[len(sig):], 0)
}

func TestRMS(t *testing.T) {
	if got := RMS(DC(0.5, 10)); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("RMS(DC 0.5) = %v", got)
	}
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v", got)
	}
}

func TestPeakBin(t *testing.T) {
	if got := PeakBin([]byte{1, 9, 3, 9}); got != 1 {
		t.Fatalf("PeakBin = %d, want 1", got)
	}
}
