package graph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/cwbudde/algo-voice/dsp/stage"
)

var errUnknownDevice = errors.New("unknown device")

// dcStream yields blocks of a constant value, then io.EOF after limit blocks
// (limit 0 means never).
type dcStream struct {
	value float64
	limit int
	reads int
}

func (s *dcStream) Read(block []float64) error {
	if s.limit > 0 && s.reads >= s.limit {
		return io.EOF
	}

	s.reads++
	for i := range block {
		block[i] = s.value
	}

	return nil
}

// failStream always fails.
type failStream struct{ err error }

func (s failStream) Read([]float64) error { return s.err }

// memSink records written blocks and accepts a fixed device list.
type memSink struct {
	mu      sync.Mutex
	blocks  [][]float64
	device  string
	devices map[string]bool
	failErr error
}

func newMemSink(devices ...string) *memSink {
	s := &memSink{device: "default", devices: map[string]bool{"default": true}}
	for _, d := range devices {
		s.devices[d] = true
	}

	return s
}

func (s *memSink) Write(block []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	s.blocks = append(s.blocks, append([]float64(nil), block...))

	return nil
}

func (s *memSink) SetDevice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.devices[id] {
		return errUnknownDevice
	}

	s.device = id

	return nil
}

func (s *memSink) Device() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.device
}

func (s *memSink) last() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.blocks) == 0 {
		return nil
	}

	return s.blocks[len(s.blocks)-1]
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.blocks)
}

// stubStage is a passthrough stage that can also hold history for Reset.
type stubStage struct {
	name   string
	ports  stage.Ports
	resets int
}

func newStub(name string) *stubStage {
	return &stubStage{name: name, ports: stage.PortIn | stage.PortOut}
}

func (s *stubStage) Name() string       { return s.name }
func (s *stubStage) Ports() stage.Ports { return s.ports }
func (s *stubStage) Process([]float64)  {}
func (s *stubStage) Reset()             { s.resets++ }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	g       *AudioGraph
	main    *memSink
	monitor *memSink
}

func newFixture(opts ...Option) (*fixture, error) {
	main := newMemSink("usb")
	monitor := newMemSink("headphones")

	opts = append([]Option{WithLogger(quietLogger()), WithBlockSize(8)}, opts...)

	g, err := New(&dcStream{value: 1}, main, monitor, opts...)
	if err != nil {
		return nil, err
	}

	return &fixture{g: g, main: main, monitor: monitor}, nil
}

func mustFixture(t testing.TB, opts ...Option) *fixture {
	t.Helper()

	f, err := newFixture(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return f
}
