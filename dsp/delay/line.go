// Package delay provides a circular delay line with fractional reads.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-voice/dsp/interp"
)

// Line is a circular delay line. Delays are counted back from the most
// recently written sample, so Read(0) returns the last value passed to Write.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the longest delay ReadFractional can address.
func (d *Line) MaxDelay() float64 {
	return float64(max(len(d.buffer)-3, 0))
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	idx := (d.writePos - 1 - delay) % size
	if idx < 0 {
		idx += size
	}

	return d.buffer[idx]
}

// ReadFractional reads with cubic Hermite interpolation. delay is clamped
// to [0, MaxDelay].
func (d *Line) ReadFractional(delay float64) float64 {
	delay = min(max(delay, 0), d.MaxDelay())

	p := int(math.Floor(delay))
	t := delay - float64(p)
	if t == 0 {
		return d.Read(p)
	}

	// x0 at p, x1 one sample older. xm1 is the newer neighbour.
	xm1 := d.Read(max(0, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)

	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
