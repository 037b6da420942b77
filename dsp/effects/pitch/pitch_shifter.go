package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-voice/dsp/delay"
)

const (
	defaultPitchShifterRatio    = 1.0
	defaultPitchShifterWindowMs = 100.0

	minPitchShifterRatio = 0.25
	maxPitchShifterRatio = 4.0

	minPitchShifterWindowMs = 10.0
	maxPitchShifterWindowMs = 250.0

	pitchShifterIdentityEps = 1e-9
)

// PitchShifter transposes a stream by reading a delay line through two
// taps whose delay sweeps at a rate set by the pitch ratio. The taps sit
// half a window apart and are crossfaded with triangular gains that sum to
// one, hiding the jump when a tap wraps around the window.
//
// Pitch ratio:
//   - 1.0 = unchanged
//   - 2.0 = one octave up
//   - 0.5 = one octave down
//
// State carries across calls, so consecutive blocks form one continuous
// signal. This processor is mono.
type PitchShifter struct {
	sampleRate float64
	pitchRatio float64

	windowMs  float64
	windowLen float64

	line  *delay.Line
	phase float64
}

// NewPitchShifter constructs a pitch shifter with a 100 ms sweep window.
func NewPitchShifter(sampleRate float64) (*PitchShifter, error) {
	if !isFinitePositive(sampleRate) {
		return nil, fmt.Errorf("pitch shifter sample rate must be positive and finite: %f", sampleRate)
	}

	p := &PitchShifter{
		sampleRate: sampleRate,
		pitchRatio: defaultPitchShifterRatio,
		windowMs:   defaultPitchShifterWindowMs,
	}
	if err := p.rebuild(); err != nil {
		return nil, err
	}

	return p, nil
}

// SampleRate returns the current sample rate in Hz.
func (p *PitchShifter) SampleRate() float64 { return p.sampleRate }

// PitchRatio returns the current frequency ratio.
func (p *PitchShifter) PitchRatio() float64 { return p.pitchRatio }

// PitchSemitones returns the current shift in semitones.
func (p *PitchShifter) PitchSemitones() float64 { return 12.0 * math.Log2(p.pitchRatio) }

// Window returns the sweep window length in milliseconds.
func (p *PitchShifter) Window() float64 { return p.windowMs }

// SetSampleRate updates the sample rate and clears the delay line.
func (p *PitchShifter) SetSampleRate(sampleRate float64) error {
	if !isFinitePositive(sampleRate) {
		return fmt.Errorf("pitch shifter sample rate must be positive and finite: %f", sampleRate)
	}

	old := p.sampleRate
	p.sampleRate = sampleRate
	if err := p.rebuild(); err != nil {
		p.sampleRate = old
		return err
	}

	return nil
}

// SetPitchRatio updates the pitch shift ratio.
func (p *PitchShifter) SetPitchRatio(ratio float64) error {
	if !isFinitePositive(ratio) || ratio < minPitchShifterRatio || ratio > maxPitchShifterRatio {
		return fmt.Errorf("pitch shifter ratio must be in [%f, %f]: %f",
			minPitchShifterRatio, maxPitchShifterRatio, ratio)
	}

	p.pitchRatio = ratio

	return nil
}

// SetPitchSemitones updates pitch shift in semitones.
func (p *PitchShifter) SetPitchSemitones(semitones float64) error {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return fmt.Errorf("pitch shifter semitones must be finite: %f", semitones)
	}

	if err := p.SetPitchRatio(math.Exp2(semitones / 12.0)); err != nil {
		return fmt.Errorf("pitch shifter semitones out of range: %w", err)
	}

	return nil
}

// SetWindow updates the sweep window length in milliseconds. Longer windows
// smear transients less often but make the crossfade beat audible.
func (p *PitchShifter) SetWindow(ms float64) error {
	if !isFinitePositive(ms) || ms < minPitchShifterWindowMs || ms > maxPitchShifterWindowMs {
		return fmt.Errorf("pitch shifter window must be in [%f, %f] ms: %f",
			minPitchShifterWindowMs, maxPitchShifterWindowMs, ms)
	}

	old := p.windowMs
	p.windowMs = ms
	if err := p.rebuild(); err != nil {
		p.windowMs = old
		return err
	}

	return nil
}

// Reset clears the delay line and restarts the sweep.
func (p *PitchShifter) Reset() {
	p.line.Reset()
	p.phase = 0
}

// Process pitch-shifts input and returns a new output block with equal length.
func (p *PitchShifter) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	out := make([]float64, len(input))
	copy(out, input)
	p.ProcessInPlace(out)

	return out
}

// ProcessInPlace applies pitch shifting to buf in place.
func (p *PitchShifter) ProcessInPlace(buf []float64) {
	if math.Abs(p.pitchRatio-1) <= pitchShifterIdentityEps {
		// Keep the line primed so a later ratio change has history to read.
		for _, x := range buf {
			p.line.Write(x)
		}

		return
	}

	step := (1 - p.pitchRatio) / p.windowLen
	for i, x := range buf {
		p.line.Write(x)

		a := p.phase
		b := a + 0.5
		if b >= 1 {
			b--
		}

		buf[i] = crossfade(a)*p.line.ReadFractional(a*p.windowLen) +
			crossfade(b)*p.line.ReadFractional(b*p.windowLen)

		p.phase += step
		p.phase -= math.Floor(p.phase)
	}
}

func (p *PitchShifter) rebuild() error {
	windowLen := math.Round(p.windowMs * 0.001 * p.sampleRate)
	if windowLen < 4 {
		return fmt.Errorf("pitch shifter window too short: %d samples", int(windowLen))
	}

	line, err := delay.New(int(windowLen) + 4)
	if err != nil {
		return fmt.Errorf("pitch shifter: %w", err)
	}

	p.windowLen = windowLen
	p.line = line
	p.phase = 0

	return nil
}

// crossfade is a triangle peaking at the middle of the window.
func crossfade(phase float64) float64 {
	return 1 - math.Abs(2*phase-1)
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
