package stage

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/algo-voice/dsp/window"
)

const (
	// DefaultFFTSize is the analysis window used when none is configured.
	DefaultFFTSize = 256

	// DefaultSmoothing is the weight given to the previous snapshot.
	DefaultSmoothing = 0.8

	// DefaultMinDecibels maps to byte value 0.
	DefaultMinDecibels = -100.0
	// DefaultMaxDecibels maps to byte value 255.
	DefaultMaxDecibels = -30.0

	minFFTSize = 32
	maxFFTSize = 32768
)

// ErrFFTSize is returned for analysis windows that are not a power of two
// within the supported range.
var ErrFFTSize = errors.New("fft size must be a power of two in [32, 32768]")

// AnalyserOption mutates an Analyser during construction.
type AnalyserOption func(*Analyser)

// WithSmoothing sets the time constant applied between snapshots.
// Values outside [0, 1] are ignored.
func WithSmoothing(tau float64) AnalyserOption {
	return func(a *Analyser) {
		if tau >= 0 && tau <= 1 {
			a.smoothing = tau
		}
	}
}

// WithDecibelRange sets the range mapped onto byte magnitudes.
// Ranges with minDB >= maxDB are ignored.
func WithDecibelRange(minDB, maxDB float64) AnalyserOption {
	return func(a *Analyser) {
		if isFinite(minDB) && isFinite(maxDB) && minDB < maxDB {
			a.minDB = minDB
			a.maxDB = maxDB
		}
	}
}

// Analyser passes audio through unchanged and keeps the most recent window
// of samples for spectral snapshots. Process runs on the render loop while
// the snapshot methods are called by a renderer; a mutex guards the history.
type Analyser struct {
	name      string
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	mu       sync.Mutex
	history  []float64
	writePos int

	plan     *algofft.Plan[complex128]
	window   []float64
	frame    []float64
	in       []complex128
	out      []complex128
	re       []float64
	im       []float64
	mag      []float64
	smoothed []float64
}

// NewAnalyser returns an analyser with an fftSize-sample window.
func NewAnalyser(name string, fftSize int, opts ...AnalyserOption) (*Analyser, error) {
	if fftSize < minFFTSize || fftSize > maxFFTSize || bits.OnesCount(uint(fftSize)) != 1 {
		return nil, fmt.Errorf("analyser %q: %w: %d", name, ErrFFTSize, fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyser %q: init fft plan: %w", name, err)
	}

	coeffs, err := window.Blackman(fftSize, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("analyser %q: %w", name, err)
	}

	bins := fftSize / 2
	a := &Analyser{
		name:      name,
		fftSize:   fftSize,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDecibels,
		maxDB:     DefaultMaxDecibels,
		history:   make([]float64, fftSize),
		plan:      plan,
		window:    coeffs,
		frame:     make([]float64, fftSize),
		in:        make([]complex128, fftSize),
		out:       make([]complex128, fftSize),
		re:        make([]float64, bins),
		im:        make([]float64, bins),
		mag:       make([]float64, bins),
		smoothed:  make([]float64, bins),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a, nil
}

func (a *Analyser) Name() string { return a.name }

func (a *Analyser) Ports() Ports { return PortIn | PortOut }

// FFTSize returns the analysis window length.
func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount returns the number of values a frequency snapshot holds.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

func (a *Analyser) Process(block []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, x := range block {
		a.history[a.writePos] = x
		a.writePos++
		if a.writePos == a.fftSize {
			a.writePos = 0
		}
	}
}

func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	clear(a.history)
	clear(a.smoothed)
	a.writePos = 0
}

// ByteFrequencyData writes the latest smoothed spectrum into dst, scaled so
// that the configured decibel range spans 0..255. It returns the number of
// bins written.
func (a *Analyser) ByteFrequencyData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.analyse()

	n := min(len(dst), len(a.smoothed))
	scale := 255 / (a.maxDB - a.minDB)
	for k := range n {
		db := toDecibels(a.smoothed[k])
		v := math.Floor(scale * (db - a.minDB))
		dst[k] = byte(min(max(v, 0), 255))
	}

	return n
}

// FloatFrequencyData writes the latest smoothed spectrum in dBFS into dst.
func (a *Analyser) FloatFrequencyData(dst []float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.analyse()

	n := min(len(dst), len(a.smoothed))
	for k := range n {
		dst[k] = toDecibels(a.smoothed[k])
	}

	return n
}

// ByteTimeDomainData writes the latest window of samples into dst mapped to
// 128 +/- 127, oldest first.
func (a *Analyser) ByteTimeDomainData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snapshot()

	n := min(len(dst), a.fftSize)
	for i := range n {
		v := math.Floor(128 * (1 + a.frame[i]))
		dst[i] = byte(min(max(v, 0), 255))
	}

	return n
}

// snapshot copies the history into frame in chronological order.
func (a *Analyser) snapshot() {
	n := copy(a.frame, a.history[a.writePos:])
	copy(a.frame[n:], a.history[:a.writePos])
}

// analyse refreshes the smoothed magnitudes. Callers hold mu.
func (a *Analyser) analyse() {
	a.snapshot()
	vecmath.MulBlockInPlace(a.frame, a.window)

	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return
	}

	norm := 1 / float64(a.fftSize)
	for k := range a.re {
		a.re[k] = real(a.out[k]) * norm
		a.im[k] = imag(a.out[k]) * norm
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	tau := a.smoothing
	for k, m := range a.mag {
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*m
	}
}

func toDecibels(mag float64) float64 {
	if mag <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(mag)
}
