// Package testutil provides deterministic signals, level measurements and
// assertions shared by the tests and the offline render command.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine wave starting at phase 0.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates white noise with a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at pos.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Split cuts signal into consecutive blocks of blockSize samples. A short
// trailing remainder is zero-padded.
func Split(signal []float64, blockSize int) [][]float64 {
	var blocks [][]float64
	for start := 0; start < len(signal); start += blockSize {
		block := make([]float64, blockSize)
		copy(block, signal[start:])
		blocks = append(blocks, block)
	}
	return blocks
}

// Join concatenates blocks into one signal.
func Join(blocks [][]float64) []float64 {
	var out []float64
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

// RMS returns the root-mean-square level of data.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}

// PeakBin returns the index of the largest value in bins.
func PeakBin(bins []byte) int {
	best := 0
	for i, v := range bins {
		if v > bins[best] {
			best = i
		}
	}
	return best
}
