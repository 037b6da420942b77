package device

import (
	"slices"
	"testing"
)

func TestSampleConversion(t *testing.T) {
	t.Parallel()

	out := make([]float32, 4)
	toFloat32(out, []float64{0.5, -2, 3})

	if !slices.Equal(out, []float32{0.5, -1, 1, 0}) {
		t.Fatalf("toFloat32 = %v", out)
	}

	in := make([]float64, 2)
	toFloat64(in, []float32{0.25, -0.75, 1})

	if !slices.Equal(in, []float64{0.25, -0.75}) {
		t.Fatalf("toFloat64 = %v", in)
	}
}
