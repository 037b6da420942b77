package stage

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-voice/dsp/effects/pitch"
)

const (
	minPitchSemitones = -12.0
	maxPitchSemitones = 12.0
)

// PitchShift exposes a pitch.PitchShifter as a stage with a semitone
// control. Control changes are picked up at the next block.
type PitchShift struct {
	name string
	def  float64

	semitones atomicFloat
	shifter   *pitch.PitchShifter
}

// NewPitchShift returns a pitch shifter transposing by semitones.
func NewPitchShift(name string, sampleRate, semitones float64) (*PitchShift, error) {
	if !isFinite(semitones) || semitones < minPitchSemitones || semitones > maxPitchSemitones {
		return nil, fmt.Errorf("pitch shift %q: semitones must be in [%.0f, %.0f]: %f",
			name, minPitchSemitones, maxPitchSemitones, semitones)
	}

	shifter, err := pitch.NewPitchShifter(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("pitch shift %q: %w", name, err)
	}

	if err := shifter.SetPitchSemitones(semitones); err != nil {
		return nil, fmt.Errorf("pitch shift %q: %w", name, err)
	}

	p := &PitchShift{name: name, def: semitones, shifter: shifter}
	p.semitones.Store(semitones)

	return p, nil
}

func (p *PitchShift) Name() string { return p.name }

func (p *PitchShift) Ports() Ports { return PortIn | PortOut }

// Semitones returns the current transposition.
func (p *PitchShift) Semitones() float64 { return p.semitones.Load() }

// Ratio returns the current frequency ratio.
func (p *PitchShift) Ratio() float64 {
	return math.Exp2(p.semitones.Load() / 12)
}

func (p *PitchShift) Process(block []float64) {
	// Clamped by SetControl, so always inside the shifter's ratio range.
	_ = p.shifter.SetPitchSemitones(p.semitones.Load())
	p.shifter.ProcessInPlace(block)
}

func (p *PitchShift) Reset() { p.shifter.Reset() }

func (p *PitchShift) Control() Control {
	return Control{
		Name:    "pitch",
		Unit:    "st",
		Min:     minPitchSemitones,
		Max:     maxPitchSemitones,
		Step:    0.5,
		Default: p.def,
	}
}

// SetControl sets the transposition in semitones.
func (p *PitchShift) SetControl(value float64) error {
	if !isFinite(value) {
		return fmt.Errorf("pitch shift %q: semitones must be finite: %f", p.name, value)
	}

	p.semitones.Store(min(max(value, minPitchSemitones), maxPitchSemitones))

	return nil
}

func (p *PitchShift) ControlValue() float64 { return p.semitones.Load() }
