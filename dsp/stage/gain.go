package stage

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

const (
	minGain = 0.0
	maxGain = 4.0
)

// Gain scales every sample by a single factor.
type Gain struct {
	name    string
	def     float64
	value   atomicFloat
	scratch []float64
}

// NewGain returns a gain stage with the given initial factor.
func NewGain(name string, value float64) *Gain {
	g := &Gain{name: name, def: value}
	g.value.Store(value)

	return g
}

func (g *Gain) Name() string { return g.name }

func (g *Gain) Ports() Ports { return PortIn | PortOut }

// Value returns the current factor.
func (g *Gain) Value() float64 { return g.value.Load() }

// SetValue replaces the factor. It takes effect on the next block.
func (g *Gain) SetValue(v float64) { g.value.Store(v) }

func (g *Gain) Process(block []float64) {
	v := g.value.Load()
	if v == 1 {
		return
	}

	if cap(g.scratch) < len(block) {
		g.scratch = make([]float64, len(block))
	}

	scratch := g.scratch[:len(block)]
	vecmath.ScaleBlock(scratch, block, v)
	copy(block, scratch)
}

func (g *Gain) Control() Control {
	return Control{Name: "gain", Unit: "x", Min: minGain, Max: maxGain, Step: 0.01, Default: g.def}
}

// SetControl applies any finite value; range enforcement belongs to the caller.
func (g *Gain) SetControl(value float64) error {
	if !isFinite(value) {
		return fmt.Errorf("gain %q: value must be finite: %f", g.name, value)
	}

	g.value.Store(value)

	return nil
}

func (g *Gain) ControlValue() float64 { return g.value.Load() }
