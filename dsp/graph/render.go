package graph

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-voice/dsp/stage"
)

var errInput = errors.New("graph: read input")

// pendingWrite is a rendered block waiting to be handed to its sink.
type pendingWrite struct {
	name  string
	to    stage.Consumer
	block []float64
}

// Render pulls one block from the input and pushes it through every stage
// reachable from the source, in topological order. Each stage receives the
// sum of its incoming connections. The master and monitor gains are always
// rendered, so gated outputs receive silence rather than nothing. Sink write
// failures are collected and returned after the pass completes; an input
// failure aborts the pass.
//
// Only the processing step holds the graph lock. The input read and the sink
// writes run outside it, so control calls never wait on device I/O.
// Concurrent Render calls are serialized.
func (g *AudioGraph) Render() error {
	g.renderMu.Lock()
	defer g.renderMu.Unlock()

	n := g.cfg.BlockSize
	if len(g.input) != n {
		g.input = make([]float64, n)
	}

	if err := g.source.Produce(g.input); err != nil {
		return fmt.Errorf("%w: %w", errInput, err)
	}

	var errs []error

	for _, w := range g.process(n) {
		if err := w.to.Consume(w.block); err != nil {
			errs = append(errs, fmt.Errorf("graph: write %q: %w", w.name, err))
		}
	}

	return errors.Join(errs...)
}

// process runs one block through the compiled graph under the lock and
// returns a copy of every sink-bound block. Callers hold renderMu.
func (g *AudioGraph) process(n int) []pendingWrite {
	g.mu.Lock()
	defer g.mu.Unlock()

	order, incoming := g.router.compile(g.source, g.masterGain, g.monitorGain)
	g.writes = g.writes[:0]

	for _, s := range order {
		buf := g.buffer(s, n)

		if s == stage.Stage(g.source) {
			copy(buf, g.input)
		} else {
			clear(buf)
			for _, from := range incoming[s] {
				vecmath.AddBlockInPlace(buf, g.buffers[from])
			}
		}

		s.Process(buf)

		if c, ok := s.(stage.Consumer); ok {
			out := g.staged[s]
			if cap(out) < n {
				out = make([]float64, n)
				g.staged[s] = out
			}

			out = out[:n]
			copy(out, buf)
			g.writes = append(g.writes, pendingWrite{name: s.Name(), to: c, block: out})
		}
	}

	return g.writes
}

func (g *AudioGraph) buffer(s stage.Stage, n int) []float64 {
	buf := g.buffers[s]
	if cap(buf) < n {
		buf = make([]float64, n)
	}

	buf = buf[:n]
	g.buffers[s] = buf

	return buf
}

// Run renders blocks until ctx is cancelled or the input ends. The input
// paces the loop: a capture stream blocks until a block is available.
// Output write failures are logged and rendering continues. Run returns nil
// when the input reports io.EOF.
func (g *AudioGraph) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := g.Render()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, errInput):
			return err
		default:
			g.logger.Warn("render output failed", "error", err)
		}
	}
}

// Start runs the render loop on its own goroutine until ctx is cancelled or
// the input ends, so audio flows without the caller driving Run. A graph
// runs at most one loop; a second Start returns ErrStarted.
func (g *AudioGraph) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.done != nil {
		g.mu.Unlock()
		return ErrStarted
	}

	done := make(chan struct{})
	g.done = done
	g.mu.Unlock()

	go func() {
		defer close(done)
		g.runErr = g.Run(ctx)
	}()

	g.logger.Debug("render loop started")

	return nil
}

// Wait blocks until the loop launched by Start returns and reports its
// result. It returns nil immediately when the loop was never started.
func (g *AudioGraph) Wait() error {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()

	if done == nil {
		return nil
	}

	<-done

	return g.runErr
}
