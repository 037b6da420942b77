package delay

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func mustLine(t *testing.T, size int) *Line {
	t.Helper()

	d, err := New(size)
	if err != nil {
		t.Fatal(err)
	}

	return d
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}
}

func TestLenAndMaxDelay(t *testing.T) {
	t.Parallel()

	d := mustLine(t, 16)
	if d.Len() != 16 {
		t.Fatalf("Len: got %d want 16", d.Len())
	}

	if d.MaxDelay() != 13 {
		t.Fatalf("MaxDelay: got %f want 13", d.MaxDelay())
	}
}

func TestReadIntegerDelay(t *testing.T) {
	t.Parallel()

	d := mustLine(t, 8)
	for i := 1; i <= 5; i++ {
		d.Write(float64(i))
	}

	for delay, want := range []float64{5, 4, 3, 2, 1} {
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d): got %f want %f", delay, got, want)
		}
	}
}

func TestReadWrapsAround(t *testing.T) {
	t.Parallel()

	d := mustLine(t, 4)
	for i := 1; i <= 10; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(0); got != 10 {
		t.Fatalf("Read(0): got %f want 10", got)
	}

	if got := d.Read(3); got != 7 {
		t.Fatalf("Read(3): got %f want 7", got)
	}
}

func TestReadFractional(t *testing.T) {
	t.Parallel()

	d := mustLine(t, 16)
	for i := range 10 {
		d.Write(float64(i))
	}

	// A ramp is reproduced exactly by the cubic kernel.
	for _, delay := range []float64{1.25, 2.5, 3.75, 4} {
		want := 9 - delay
		if got := d.ReadFractional(delay); !approxEqual(got, want, 1e-12) {
			t.Fatalf("ReadFractional(%f): got %f want %f", delay, got, want)
		}
	}
}

func TestReadFractionalClamps(t *testing.T) {
	t.Parallel()

	d := mustLine(t, 8)
	for i := range 8 {
		d.Write(float64(i))
	}

	if got := d.ReadFractional(-3); got != 7 {
		t.Fatalf("negative delay: got %f want 7", got)
	}

	if got, want := d.ReadFractional(100), d.Read(5); got != want {
		t.Fatalf("oversized delay: got %f want %f", got, want)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	d := mustLine(t, 4)
	d.Write(1)
	d.Write(2)
	d.Reset()

	for i := range d.Len() {
		if got := d.Read(i); got != 0 {
			t.Fatalf("Read(%d) after Reset: got %f want 0", i, got)
		}
	}
}
