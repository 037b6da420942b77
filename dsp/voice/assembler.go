package voice

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-voice/dsp/graph"
	"github.com/cwbudde/algo-voice/dsp/stage"
)

// Assembler swaps voices in and out of the graph of one capture session.
type Assembler struct {
	input    stage.Stream
	main     stage.Sink
	monitor  stage.Sink
	registry *Registry
	opts     []graph.Option

	mu      sync.Mutex
	graph   *graph.AudioGraph
	current string
}

// NewAssembler prepares an assembler for the given collaborators. The graph
// is built by the first Select, with opts. A nil registry selects the
// built-in voices.
func NewAssembler(input stage.Stream, main, monitor stage.Sink, registry *Registry, opts ...graph.Option) *Assembler {
	if registry == nil {
		registry = DefaultRegistry()
	}

	return &Assembler{
		input:    input,
		main:     main,
		monitor:  monitor,
		registry: registry,
		opts:     opts,
	}
}

// Registry returns the voices this assembler can select from.
func (a *Assembler) Registry() *Registry { return a.registry }

// Graph returns the session graph, or nil before the first Select.
func (a *Assembler) Graph() *graph.AudioGraph {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.graph
}

// Current returns the name of the active voice, or "" if none is active.
func (a *Assembler) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.current
}

// Select makes the named voice the active one. The previous voice is
// cleared from the graph, the new stages and parameters are built (which
// applies every parameter default), registered, and the input is
// reconnected with the voice path enabled. An unknown name fails without
// touching the graph. A voice that fails to build or register leaves no
// stages or connections behind.
func (a *Assembler) Select(name string) (*graph.AudioGraph, error) {
	factory := a.registry.Lookup(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVoice, name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	g, err := a.session()
	if err != nil {
		return nil, err
	}

	g.ClearGraph()
	a.current = ""

	w := &wiring{g: g}

	v, err := factory(BuildContext{SampleRate: g.Config().SampleRate, Wire: w})
	if err != nil {
		w.undo()
		return g, err
	}

	if err := register(g, v); err != nil {
		g.ClearGraph()
		w.undo()

		return g, fmt.Errorf("voice %s: %w", name, err)
	}

	g.LinkInputAndOutput(v.LinkIO)
	g.Toggle(false)
	g.Toggle(true)

	a.current = name
	g.Config().Logger.Info("voice selected", "voice", name, "stages", len(g.Nodes()), "params", len(v.Params))

	return g, nil
}

func register(g *graph.AudioGraph, v *Voice) error {
	if err := g.RegisterTopLevelNodes(v.Top...); err != nil {
		return err
	}

	if err := g.RegisterBottomLevelNodes(v.Bottom...); err != nil {
		return err
	}

	return g.RegisterParams(v.Params...)
}

// wiring hands factories the graph's Connect and remembers each edge, so a
// failed build can be taken apart again.
type wiring struct {
	g     *graph.AudioGraph
	edges [][2]stage.Stage
}

func (w *wiring) Connect(src, dst stage.Stage) error {
	if err := w.g.Connect(src, dst); err != nil {
		return err
	}

	w.edges = append(w.edges, [2]stage.Stage{src, dst})

	return nil
}

func (w *wiring) undo() {
	for _, e := range w.edges {
		w.g.Disconnect(e[0], e[1])
	}

	w.edges = nil
}

// session returns the graph, building it on first use.
func (a *Assembler) session() (*graph.AudioGraph, error) {
	if a.graph != nil {
		return a.graph, nil
	}

	g, err := graph.New(a.input, a.main, a.monitor, a.opts...)
	if err != nil {
		return nil, fmt.Errorf("voice: %w", err)
	}

	a.graph = g

	return g, nil
}
