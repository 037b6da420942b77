// Package memory is an in-memory capture stream and playback sink for
// offline rendering and tests. It has no cgo dependencies.
package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
)

// ErrUnknownDevice is returned when a device id matches no known device.
var ErrUnknownDevice = errors.New("memory: unknown device")

// DefaultID selects the platform default device.
const DefaultID = "default"

// Stream replays a fixed signal block by block and reports io.EOF
// once it is exhausted. The last block is zero padded.
type Stream struct {
	mu     sync.Mutex
	signal []float64
	pos    int
	loop   bool
}

// NewStream returns a stream over signal. With loop set the signal
// repeats forever instead of ending.
func NewStream(signal []float64, loop bool) *Stream {
	return &Stream{signal: signal, loop: loop && len(signal) > 0}
}

func (s *Stream) Read(block []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loop && s.pos >= len(s.signal) {
		return io.EOF
	}

	for i := range block {
		if s.pos >= len(s.signal) {
			if !s.loop {
				clear(block[i:])
				break
			}

			s.pos = 0
		}

		block[i] = s.signal[s.pos]
		s.pos++
	}

	return nil
}

// Sink collects written blocks. It accepts SetDevice for the ids it
// was created with and for DefaultID.
type Sink struct {
	mu      sync.Mutex
	samples []float64
	blocks  int
	device  string
	devices []string
}

// NewSink returns a sink on DefaultID that also knows devices.
func NewSink(devices ...string) *Sink {
	return &Sink{device: DefaultID, devices: append([]string{DefaultID}, devices...)}
}

func (s *Sink) Write(block []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, block...)
	s.blocks++

	return nil
}

func (s *Sink) SetDevice(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.devices, id) {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, id)
	}

	s.device = id

	return nil
}

func (s *Sink) Device() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.device
}

// Samples returns a copy of everything written so far.
func (s *Sink) Samples() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.samples)
}

// Blocks returns the number of Write calls.
func (s *Sink) Blocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blocks
}
