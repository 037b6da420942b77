package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-voice/dsp/stage"
)

// ParamSpec describes a user-facing parameter for a control surface.
type ParamSpec struct {
	// Name titles the control.
	Name string
	// UnitLabel says what kind of thing is being changed, e.g. "Shift".
	UnitLabel string
	// Unit is the unit of the value, e.g. "st" or "ms".
	Unit    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

func (s ParamSpec) validate() error {
	for _, v := range []float64{s.Min, s.Max, s.Step, s.Default} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("param %q: %w: non-finite bound", s.Name, ErrParamSpec)
		}
	}

	if s.Min > s.Default || s.Default > s.Max {
		return fmt.Errorf("param %q: %w: default %v outside [%v, %v]", s.Name, ErrParamSpec, s.Default, s.Min, s.Max)
	}

	if s.Step <= 0 {
		return fmt.Errorf("param %q: %w: step must be > 0: %v", s.Name, ErrParamSpec, s.Step)
	}

	return nil
}

// Mutator applies a parameter value to the stages it is bound to.
type Mutator func(value float64) error

// Param couples a ParamSpec to the Mutator that applies it. Its spec is
// fixed at construction; the mutator may be invoked any number of times.
type Param struct {
	spec   ParamSpec
	mutate Mutator
	value  float64
}

// NewParam validates spec and applies spec.Default through mutate before
// returning, so a bound stage never starts in an undefined state.
func NewParam(spec ParamSpec, mutate Mutator) (*Param, error) {
	if mutate == nil {
		return nil, fmt.Errorf("param %q: %w: nil mutator", spec.Name, ErrParamSpec)
	}

	if err := spec.validate(); err != nil {
		return nil, err
	}

	p := &Param{spec: spec, mutate: mutate}
	if err := p.Apply(spec.Default); err != nil {
		return nil, fmt.Errorf("param %q: apply default: %w", spec.Name, err)
	}

	return p, nil
}

// ControlParam binds a Param to the control of c, using the control's range
// and default. name and unitLabel describe the parameter for the UI.
func ControlParam(name, unitLabel string, c stage.Controllable) (*Param, error) {
	ctl := c.Control()

	return NewParam(ParamSpec{
		Name:      name,
		UnitLabel: unitLabel,
		Unit:      ctl.Unit,
		Min:       ctl.Min,
		Max:       ctl.Max,
		Step:      ctl.Step,
		Default:   ctl.Default,
	}, c.SetControl)
}

// Spec returns the parameter description.
func (p *Param) Spec() ParamSpec { return p.spec }

// Name returns the parameter title.
func (p *Param) Name() string { return p.spec.Name }

// Value returns the last value applied successfully.
func (p *Param) Value() float64 { return p.value }

// Apply passes value to the mutator unchanged; range checks are the
// caller's business.
func (p *Param) Apply(value float64) error {
	if err := p.mutate(value); err != nil {
		return err
	}

	p.value = value

	return nil
}
