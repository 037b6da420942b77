package stage

import "context"

// Ports is the set of ports a stage exposes.
type Ports uint8

const (
	// PortIn marks a stage that accepts input connections.
	PortIn Ports = 1 << iota
	// PortOut marks a stage that can feed other stages.
	PortOut
)

// Has reports whether all ports in q are present in p.
func (p Ports) Has(q Ports) bool {
	return p&q == q
}

// Stage is the per-node processing contract.
type Stage interface {
	Name() string
	Ports() Ports
	Process(block []float64)
}

// Control describes the single user-facing control of a stage.
type Control struct {
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// Controllable is implemented by stages exposing a control value.
type Controllable interface {
	Stage
	Control() Control
	SetControl(value float64) error
	ControlValue() float64
}

// Producer is implemented by stages that originate audio.
type Producer interface {
	Produce(block []float64) error
}

// Consumer is implemented by stages that terminate audio.
type Consumer interface {
	Consume(block []float64) error
}

// Resetter is implemented by stages that carry signal history.
type Resetter interface {
	Reset()
}

// Stream is a captured input. Read fills block completely or returns an
// error; io.EOF ends the stream.
type Stream interface {
	Read(block []float64) error
}

// Sink is a playback target whose physical device can be switched.
type Sink interface {
	Write(block []float64) error
	SetDevice(ctx context.Context, id string) error
	Device() string
}
