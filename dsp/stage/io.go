package stage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNilStream is returned when a Source is built without an input.
var ErrNilStream = errors.New("nil input stream")

// ErrNilSink is returned when a Destination is built without an output.
var ErrNilSink = errors.New("nil output sink")

// Source feeds captured audio into a graph. It has no input port.
type Source struct {
	name   string
	stream Stream
}

// NewSource wraps stream as a graph source.
func NewSource(name string, stream Stream) (*Source, error) {
	if stream == nil {
		return nil, fmt.Errorf("source %q: %w", name, ErrNilStream)
	}

	return &Source{name: name, stream: stream}, nil
}

func (s *Source) Name() string { return s.name }

func (s *Source) Ports() Ports { return PortOut }

// Process leaves the block untouched; Produce fills it.
func (s *Source) Process([]float64) {}

// Produce reads the next block from the stream.
func (s *Source) Produce(block []float64) error {
	return s.stream.Read(block)
}

// Destination hands rendered audio to a playback sink. It has no output port.
type Destination struct {
	name string
	sink Sink
}

// NewDestination wraps sink as a graph destination.
func NewDestination(name string, sink Sink) (*Destination, error) {
	if sink == nil {
		return nil, fmt.Errorf("destination %q: %w", name, ErrNilSink)
	}

	return &Destination{name: name, sink: sink}, nil
}

func (d *Destination) Name() string { return d.name }

func (d *Destination) Ports() Ports { return PortIn }

func (d *Destination) Process([]float64) {}

// Consume writes the block to the sink.
func (d *Destination) Consume(block []float64) error {
	return d.sink.Write(block)
}

// Device returns the sink's current physical device.
func (d *Destination) Device() string { return d.sink.Device() }

// SetDevice redirects the sink to another physical device.
func (d *Destination) SetDevice(ctx context.Context, id string) error {
	return d.sink.SetDevice(ctx, id)
}
