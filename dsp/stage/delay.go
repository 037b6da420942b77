package stage

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-voice/dsp/delay"
)

// Delay adapts a delay.Line to a stage that outputs its input delayed by a
// fractional number of seconds.
// With the dry signal summed elsewhere it forms a feed-forward comb filter.
type Delay struct {
	name       string
	sampleRate float64
	maxDelay   float64
	def        float64
	delay      atomicFloat
	line       *delay.Line
}

// NewDelay returns a delay stage able to hold up to maxDelay seconds.
func NewDelay(name string, sampleRate, maxDelay, seconds float64) (*Delay, error) {
	if !isFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("delay %q: sample rate must be positive and finite: %f", name, sampleRate)
	}

	if !isFinite(maxDelay) || maxDelay <= 0 {
		return nil, fmt.Errorf("delay %q: max delay must be positive and finite: %f", name, maxDelay)
	}

	if !isFinite(seconds) || seconds < 0 || seconds > maxDelay {
		return nil, fmt.Errorf("delay %q: delay must be in [0, %f]: %f", name, maxDelay, seconds)
	}

	line, err := delay.New(int(math.Ceil(maxDelay*sampleRate)) + 4)
	if err != nil {
		return nil, fmt.Errorf("delay %q: %w", name, err)
	}

	d := &Delay{
		name:       name,
		sampleRate: sampleRate,
		maxDelay:   maxDelay,
		def:        seconds,
		line:       line,
	}
	d.delay.Store(seconds)

	return d, nil
}

func (d *Delay) Name() string { return d.name }

func (d *Delay) Ports() Ports { return PortIn | PortOut }

// DelayTime returns the current delay in seconds.
func (d *Delay) DelayTime() float64 { return d.delay.Load() }

func (d *Delay) Process(block []float64) {
	samples := d.delay.Load() * d.sampleRate
	for i, x := range block {
		d.line.Write(x)
		block[i] = d.line.ReadFractional(samples)
	}
}

func (d *Delay) Reset() { d.line.Reset() }

func (d *Delay) Control() Control {
	return Control{Name: "delayTime", Unit: "s", Min: 0, Max: d.maxDelay, Step: 0.001, Default: d.def}
}

// SetControl sets the delay in seconds, clamped to the line capacity.
func (d *Delay) SetControl(value float64) error {
	if !isFinite(value) {
		return fmt.Errorf("delay %q: delay must be finite: %f", d.name, value)
	}

	d.delay.Store(min(max(value, 0), d.maxDelay))

	return nil
}

func (d *Delay) ControlValue() float64 { return d.delay.Load() }
