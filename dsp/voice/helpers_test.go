package voice

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-voice/dsp/graph"
	"github.com/cwbudde/algo-voice/dsp/stage"
)

// toneStream yields a constant value forever.
type toneStream struct{ value float64 }

func (s toneStream) Read(block []float64) error {
	for i := range block {
		block[i] = s.value
	}

	return nil
}

type memSink struct {
	mu     sync.Mutex
	blocks [][]float64
	device string
}

func (s *memSink) Write(block []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks = append(s.blocks, append([]float64(nil), block...))

	return nil
}

func (s *memSink) SetDevice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

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

// edgeRecorder is a Wirer that remembers every connection.
type edgeRecorder struct {
	edges [][2]stage.Stage
}

func (w *edgeRecorder) Connect(src, dst stage.Stage) error {
	w.edges = append(w.edges, [2]stage.Stage{src, dst})
	return nil
}

func newTestAssembler(registry *Registry) (*Assembler, *memSink, *memSink) {
	main, monitor := &memSink{}, &memSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a := NewAssembler(toneStream{value: 1}, main, monitor, registry,
		graph.WithLogger(logger), graph.WithBlockSize(64), graph.WithSampleRate(8000))

	return a, main, monitor
}

func stageNames(stages []stage.Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = s.Name()
	}

	return out
}
