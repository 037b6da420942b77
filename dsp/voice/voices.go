package voice

import (
	"fmt"

	"github.com/cwbudde/algo-voice/dsp/graph"
	"github.com/cwbudde/algo-voice/dsp/stage"
)

// Names of the built-in voices.
const (
	Robot    = "robot"
	Chipmunk = "chipmunk"
)

const (
	robotSemitones    = -5.0
	chipmunkSemitones = 5.0

	combDelay    = 0.02
	combMaxDelay = 0.1
)

// DefaultRegistry returns a registry holding the built-in voices.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Robot, NewRobot)
	r.MustRegister(Chipmunk, NewChipmunk)

	return r
}

// NewRobot builds a pitch shifter feeding a comb delay. Both stages feed
// master gain, so the shifted and the shifted-and-delayed signals mix.
func NewRobot(ctx BuildContext) (*Voice, error) {
	pitch, err := stage.NewPitchShift("robot-pitch", ctx.SampleRate, robotSemitones)
	if err != nil {
		return nil, fmt.Errorf("voice %s: %w", Robot, err)
	}

	comb, err := stage.NewDelay("robot-comb", ctx.SampleRate, combMaxDelay, combDelay)
	if err != nil {
		return nil, fmt.Errorf("voice %s: %w", Robot, err)
	}

	if err := ctx.Wire.Connect(pitch, comb); err != nil {
		return nil, fmt.Errorf("voice %s: %w", Robot, err)
	}

	pitchParam, err := graph.ControlParam("Pitch", "Shift", pitch)
	if err != nil {
		return nil, fmt.Errorf("voice %s: %w", Robot, err)
	}

	combParam, err := graph.NewParam(graph.ParamSpec{
		Name:      "Comb",
		UnitLabel: "Delay",
		Unit:      "ms",
		Min:       0,
		Max:       combMaxDelay * 1000,
		Step:      1,
		Default:   combDelay * 1000,
	}, milliseconds(comb))
	if err != nil {
		return nil, fmt.Errorf("voice %s: %w", Robot, err)
	}

	return &Voice{
		Name:   Robot,
		Top:    []stage.Stage{pitch},
		Bottom: []stage.Stage{pitch, comb},
		Params: []*graph.Param{pitchParam, combParam},
	}, nil
}

// NewChipmunk builds a single upward pitch shifter with the dry input
// linked straight to master gain.
func NewChipmunk(ctx BuildContext) (*Voice, error) {
	pitch, err := stage.NewPitchShift("chipmunk-pitch", ctx.SampleRate, chipmunkSemitones)
	if err != nil {
		return nil, fmt.Errorf("voice %s: %w", Chipmunk, err)
	}

	pitchParam, err := graph.ControlParam("Pitch", "Shift", pitch)
	if err != nil {
		return nil, fmt.Errorf("voice %s: %w", Chipmunk, err)
	}

	return &Voice{
		Name:   Chipmunk,
		Top:    []stage.Stage{pitch},
		Bottom: []stage.Stage{pitch},
		Params: []*graph.Param{pitchParam},
		LinkIO: true,
	}, nil
}

// milliseconds binds a control measured in seconds to a millisecond value.
func milliseconds(c stage.Controllable) graph.Mutator {
	return func(ms float64) error {
		return c.SetControl(ms / 1000)
	}
}
