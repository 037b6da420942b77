package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cwbudde/algo-voice/dsp/stage"
)

// AudioGraph owns the scaffold of one capture session and the stages of the
// voice currently plugged into it.
type AudioGraph struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	router *router

	source      *stage.Source
	inputGain   *stage.Gain
	masterGain  *stage.Gain
	analyser    *stage.Analyser
	destination *stage.Destination
	monitorGain *stage.Gain
	monitorDest *stage.Destination

	// Current voice. topLevel and bottomLevel are role subsets of nodes.
	nodes       []stage.Stage
	topLevel    []stage.Stage
	bottomLevel []stage.Stage
	params      []*Param

	enabled        bool
	monitorEnabled bool
	ioLinked       bool

	buffers map[stage.Stage][]float64

	// Render-side state, guarded by renderMu rather than mu.
	renderMu sync.Mutex
	input    []float64
	staged   map[stage.Stage][]float64
	writes   []pendingWrite

	// Set once by Start. runErr is written before done is closed.
	done   chan struct{}
	runErr error
}

// New builds the scaffold around input and the two playback sinks:
//
//	source -> input gain
//	master gain -> analyser, main destination, monitor gain
//	monitor gain -> monitor destination
//
// and then applies the configured enabled and monitor gates. Audio flows
// once the caller drives Render, Run or Start, or right away when the graph
// is built WithAutoStart.
func New(input stage.Stream, main, monitor stage.Sink, opts ...Option) (*AudioGraph, error) {
	if input == nil {
		return nil, ErrNoInput
	}

	if main == nil || monitor == nil {
		return nil, ErrNoSink
	}

	cfg := ApplyOptions(opts...)

	source, err := stage.NewSource("source", input)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	analyser, err := stage.NewAnalyser("analyser", cfg.FFTSize,
		stage.WithSmoothing(cfg.Smoothing),
		stage.WithDecibelRange(cfg.MinDecibels, cfg.MaxDecibels),
	)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	destination, err := stage.NewDestination("destination", main)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	monitorDest, err := stage.NewDestination("monitor-destination", monitor)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	g := &AudioGraph{
		cfg:            cfg,
		logger:         cfg.Logger,
		router:         newRouter(),
		source:         source,
		inputGain:      stage.NewGain("input-gain", cfg.InputGain),
		masterGain:     stage.NewGain("master-gain", 1),
		analyser:       analyser,
		destination:    destination,
		monitorGain:    stage.NewGain("monitor-gain", cfg.MonitorGain),
		monitorDest:    monitorDest,
		enabled:        cfg.Enabled,
		monitorEnabled: cfg.MonitorEnabled,
		buffers:        make(map[stage.Stage][]float64),
		staged:         make(map[stage.Stage][]float64),
	}

	for _, edge := range [][2]stage.Stage{
		{g.source, g.inputGain},
		{g.masterGain, g.analyser},
		{g.masterGain, g.destination},
		{g.masterGain, g.monitorGain},
		{g.monitorGain, g.monitorDest},
	} {
		if err := g.router.connect(edge[0], edge[1]); err != nil {
			return nil, err
		}
	}

	g.toggle(cfg.Enabled)
	g.toggleMonitor(cfg.MonitorEnabled)

	if cfg.startCtx != nil {
		if err := g.Start(cfg.startCtx); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Config returns the settings the graph was built with.
func (g *AudioGraph) Config() Config { return g.cfg }

func (g *AudioGraph) Source() *stage.Source                  { return g.source }
func (g *AudioGraph) InputGain() *stage.Gain                 { return g.inputGain }
func (g *AudioGraph) MasterGain() *stage.Gain                { return g.masterGain }
func (g *AudioGraph) Analyser() *stage.Analyser              { return g.analyser }
func (g *AudioGraph) Destination() *stage.Destination        { return g.destination }
func (g *AudioGraph) MonitorGain() *stage.Gain               { return g.monitorGain }
func (g *AudioGraph) MonitorDestination() *stage.Destination { return g.monitorDest }

// InputVolume returns the gain applied to the captured stream.
func (g *AudioGraph) InputVolume() float64 { return g.inputGain.Value() }

// SetInputVolume changes the input gain from the next block on.
func (g *AudioGraph) SetInputVolume(v float64) { g.inputGain.SetValue(v) }

// MonitorVolume returns the gain applied to the monitor branch.
func (g *AudioGraph) MonitorVolume() float64 { return g.monitorGain.Value() }

// SetMonitorVolume changes the monitor gain from the next block on.
func (g *AudioGraph) SetMonitorVolume(v float64) { g.monitorGain.SetValue(v) }

// Enabled reports whether the voice path is live.
func (g *AudioGraph) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.enabled
}

// MonitorEnabled reports the monitor gate as last requested.
func (g *AudioGraph) MonitorEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.monitorEnabled
}

// MonitorActive reports whether master gain currently feeds the monitor.
func (g *AudioGraph) MonitorActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.router.connected(g.masterGain, g.monitorGain)
}

// IOLinked reports whether the voice asked for a dry input -> master link.
func (g *AudioGraph) IOLinked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.ioLinked
}

// Nodes returns the stages of the current voice.
func (g *AudioGraph) Nodes() []stage.Stage {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.nodes)
}

// TopLevelNodes returns the voice stages fed by input gain, in connection order.
func (g *AudioGraph) TopLevelNodes() []stage.Stage {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.topLevel)
}

// Params returns the parameters of the current voice. The index of a
// parameter is its address for ModifyParam until the voice is cleared.
func (g *AudioGraph) Params() []*Param {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.params)
}

// Outputs returns the stages src currently feeds.
func (g *AudioGraph) Outputs(src stage.Stage) []stage.Stage {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.router.outputs(src)
}

// Connected reports whether src feeds dst directly.
func (g *AudioGraph) Connected(src, dst stage.Stage) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.router.connected(src, dst)
}

// Connect wires src into dst. It is meant for connections inside a voice;
// registration wires the voice to the scaffold. Connecting twice is a no-op.
func (g *AudioGraph) Connect(src, dst stage.Stage) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.router.connect(src, dst)
}

// Disconnect removes the src -> dst connection and reports whether it existed.
func (g *AudioGraph) Disconnect(src, dst stage.Stage) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.router.disconnect(src, dst)
}

// RegisterTopLevelNodes adds stages to the current voice as receivers of
// the input gain signal. They are connected right away only while the graph
// is enabled. A stage already registered as top-level is reported and left
// alone; the remaining stages are still registered.
func (g *AudioGraph) RegisterTopLevelNodes(stages ...stage.Stage) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error

	for _, s := range stages {
		if slices.Contains(g.topLevel, s) {
			errs = append(errs, g.duplicate("top-level node", s.Name(), ErrDuplicateNode))
			continue
		}

		if !s.Ports().Has(stage.PortIn) {
			errs = append(errs, fmt.Errorf("graph: top-level node %q: %w", s.Name(), ErrNoPort))
			continue
		}

		if g.enabled {
			if err := g.router.connect(g.inputGain, s); err != nil {
				errs = append(errs, err)
				continue
			}
		}

		g.addNode(s)
		g.topLevel = append(g.topLevel, s)
	}

	return errors.Join(errs...)
}

// RegisterBottomLevelNodes adds stages to the current voice and connects
// each of them to master gain. A stage already feeding master gain is
// reported and not reconnected.
func (g *AudioGraph) RegisterBottomLevelNodes(stages ...stage.Stage) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error

	for _, s := range stages {
		if slices.Contains(g.bottomLevel, s) {
			errs = append(errs, g.duplicate("bottom-level node", s.Name(), ErrDuplicateNode))
			continue
		}

		if err := g.router.connect(s, g.masterGain); err != nil {
			errs = append(errs, err)
			continue
		}

		g.addNode(s)
		g.bottomLevel = append(g.bottomLevel, s)
	}

	return errors.Join(errs...)
}

// RegisterParams appends parameters to the current voice. Their mutators
// have already run with the defaults when the params were built.
func (g *AudioGraph) RegisterParams(params ...*Param) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error

	for _, p := range params {
		if slices.Contains(g.params, p) {
			errs = append(errs, g.duplicate("param", p.Name(), ErrDuplicateParam))
			continue
		}

		g.params = append(g.params, p)
	}

	return errors.Join(errs...)
}

func (g *AudioGraph) addNode(s stage.Stage) {
	if !slices.Contains(g.nodes, s) {
		g.nodes = append(g.nodes, s)
	}
}

func (g *AudioGraph) duplicate(kind, name string, sentinel error) error {
	err := fmt.Errorf("graph: %s %q: %w", kind, name, sentinel)
	g.logger.Warn("duplicate registration ignored", "kind", kind, "name", name)

	return err
}

// LinkInputAndOutput opens (or closes) a dry input gain -> master gain path
// next to the voice stages, for voices that have no dry stage of their own.
// While the graph is disabled the bypass edge is kept regardless.
func (g *AudioGraph) LinkInputAndOutput(link bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ioLinked = link
	if link {
		_ = g.router.connect(g.inputGain, g.masterGain)
		return
	}

	if g.enabled {
		g.router.disconnect(g.inputGain, g.masterGain)
	}
}

// Toggle switches between the voice path (enable) and a direct input gain
// -> master gain bypass. It always rebuilds input gain's connections from
// scratch, so calling it repeatedly never leaves stale or doubled edges.
func (g *AudioGraph) Toggle(enable bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.toggle(enable)
	g.logger.Debug("voice path toggled", "enabled", enable)
}

func (g *AudioGraph) toggle(enable bool) {
	g.enabled = enable
	g.router.disconnectAll(g.inputGain)

	if enable {
		for _, s := range g.topLevel {
			_ = g.router.connect(g.inputGain, s)
		}

		if g.ioLinked {
			_ = g.router.connect(g.inputGain, g.masterGain)
		}
	} else {
		_ = g.router.connect(g.inputGain, g.masterGain)
	}

	g.applyMonitor()
}

// ToggleMonitor records the monitor gate. The monitor branch carries signal
// only while both the monitor gate and the voice path are enabled.
func (g *AudioGraph) ToggleMonitor(enable bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.toggleMonitor(enable)
	g.logger.Debug("monitor toggled", "enabled", enable, "active", g.router.connected(g.masterGain, g.monitorGain))
}

func (g *AudioGraph) toggleMonitor(enable bool) {
	g.monitorEnabled = enable
	g.applyMonitor()
}

func (g *AudioGraph) applyMonitor() {
	if g.monitorEnabled && g.enabled {
		_ = g.router.connect(g.masterGain, g.monitorGain)
		return
	}

	g.router.disconnect(g.masterGain, g.monitorGain)
}

// ClearGraph retires the current voice: input gain is disconnected (and put
// back on the bypass edge while disabled), every voice stage loses all of
// its outputs, and the node, top-level and param lists are emptied. The
// enabled and monitor gates and the scaffold are untouched.
func (g *AudioGraph) ClearGraph() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.router.disconnectAll(g.inputGain)
	if !g.enabled {
		_ = g.router.connect(g.inputGain, g.masterGain)
	}

	for _, s := range g.nodes {
		g.router.disconnectAll(s)
		delete(g.buffers, s)

		if r, ok := s.(stage.Resetter); ok {
			r.Reset()
		}
	}

	g.nodes = nil
	g.topLevel = nil
	g.bottomLevel = nil
	g.params = nil
	g.ioLinked = false
}

// ModifyParam applies value to the parameter at index i.
func (g *AudioGraph) ModifyParam(i int, value float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if i < 0 || i >= len(g.params) {
		return fmt.Errorf("graph: param %d of %d: %w", i, len(g.params), ErrParamIndex)
	}

	return g.params[i].Apply(value)
}

// ModifyParamText parses raw as a number and applies it to the parameter
// at index i. Control surfaces often deliver values as text.
func (g *AudioGraph) ModifyParamText(i int, raw string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("graph: param %d: %w", i, err)
	}

	return g.ModifyParam(i, v)
}

// SetOutputSink redirects the main destination to device id. The switch
// runs in the background; the returned channel yields its single result.
// On failure the previous device stays active.
func (g *AudioGraph) SetOutputSink(ctx context.Context, id string) <-chan error {
	return g.switchSink(ctx, "output", g.destination, id)
}

// SetMonitorSink redirects the monitor destination to device id, like
// SetOutputSink.
func (g *AudioGraph) SetMonitorSink(ctx context.Context, id string) <-chan error {
	return g.switchSink(ctx, "monitor", g.monitorDest, id)
}

func (g *AudioGraph) switchSink(ctx context.Context, role string, d *stage.Destination, id string) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)

		prev := d.Device()
		if err := d.SetDevice(ctx, id); err != nil {
			err = fmt.Errorf("graph: set %s sink %q: %w: %w", role, id, ErrInvalidSink, err)
			g.logger.Warn("sink change failed", "role", role, "device", id, "active", prev, "error", err)
			done <- err

			return
		}

		g.logger.Info("sink changed", "role", role, "device", d.Device())
		done <- nil
	}()

	return done
}
