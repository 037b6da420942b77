package voice

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-voice/dsp/graph"
	"github.com/cwbudde/algo-voice/dsp/stage"
	"github.com/cwbudde/algo-voice/internal/testutil"
)

func TestSelectUnknownVoice(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAssembler(nil)

	if _, err := a.Select("opera"); !errors.Is(err, ErrUnknownVoice) {
		t.Fatalf("expected ErrUnknownVoice, got %v", err)
	}

	if a.Graph() != nil {
		t.Fatal("graph built for an unknown voice")
	}

	if _, err := a.Select(Robot); err != nil {
		t.Fatalf("Select: %v", err)
	}

	if _, err := a.Select("opera"); !errors.Is(err, ErrUnknownVoice) {
		t.Fatalf("expected ErrUnknownVoice, got %v", err)
	}

	if a.Current() != Robot || len(a.Graph().Nodes()) != 2 {
		t.Fatal("unknown voice disturbed the active one")
	}
}

func TestSelectMissingInput(t *testing.T) {
	t.Parallel()

	a := NewAssembler(nil, &memSink{}, &memSink{}, nil)

	if _, err := a.Select(Robot); !errors.Is(err, graph.ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
}

func TestSelectRobot(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAssembler(nil)

	g, err := a.Select(Robot)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	top := g.TopLevelNodes()
	nodes := g.Nodes()

	if len(top) != 1 || len(nodes) != 2 {
		t.Fatalf("top=%v nodes=%v", stageNames(top), stageNames(nodes))
	}

	pitch, comb := nodes[0], nodes[1]

	if outs := g.Outputs(g.InputGain()); len(outs) != 1 || outs[0] != pitch {
		t.Fatalf("input gain feeds %v, want [pitch]", stageNames(outs))
	}

	if !g.Connected(pitch, comb) || !g.Connected(pitch, g.MasterGain()) || !g.Connected(comb, g.MasterGain()) {
		t.Fatal("robot wiring incomplete")
	}

	if !g.Enabled() || g.IOLinked() || a.Current() != Robot {
		t.Fatalf("enabled=%v linked=%v current=%q", g.Enabled(), g.IOLinked(), a.Current())
	}

	if got := len(g.Params()); got != 2 {
		t.Fatalf("params = %d, want 2", got)
	}

	if err := g.ModifyParam(1, 40); err != nil {
		t.Fatalf("ModifyParam: %v", err)
	}

	if got := comb.(*stage.Delay).DelayTime(); got != 0.04 {
		t.Fatalf("comb delay = %v, want 0.04", got)
	}
}

// Switching from robot to chipmunk must leave nothing of the robot
// connected, and open the dry link.
func TestSelectSwapsVoices(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAssembler(nil)

	g, err := a.Select(Robot)
	if err != nil {
		t.Fatalf("Select robot: %v", err)
	}

	old := g.Nodes()

	g2, err := a.Select(Chipmunk)
	if err != nil {
		t.Fatalf("Select chipmunk: %v", err)
	}

	if g2 != g {
		t.Fatal("the session graph must be reused")
	}

	pitch := g.TopLevelNodes()[0]
	outs := g.Outputs(g.InputGain())

	if len(outs) != 2 || !g.Connected(g.InputGain(), pitch) || !g.Connected(g.InputGain(), g.MasterGain()) {
		t.Fatalf("input gain feeds %v, want chipmunk pitch and master", stageNames(outs))
	}

	for _, s := range old {
		if len(g.Outputs(s)) != 0 || g.Connected(g.InputGain(), s) {
			t.Errorf("robot stage %s still connected", s.Name())
		}
	}

	if len(g.Params()) != 1 || len(g.Nodes()) != 1 || a.Current() != Chipmunk {
		t.Fatalf("params=%d nodes=%d current=%q", len(g.Params()), len(g.Nodes()), a.Current())
	}

	if _, err := a.Select(Robot); err != nil {
		t.Fatalf("Select robot again: %v", err)
	}

	if g.IOLinked() {
		t.Fatal("dry link leaked into the robot voice")
	}
}

func TestSelectReenablesAndKeepsMonitor(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAssembler(nil)

	g, err := a.Select(Chipmunk)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	g.ToggleMonitor(true)
	g.Toggle(false)

	if _, err := a.Select(Robot); err != nil {
		t.Fatalf("Select: %v", err)
	}

	if !g.Enabled() || !g.MonitorEnabled() || !g.MonitorActive() {
		t.Fatalf("enabled=%v monitor=%v active=%v", g.Enabled(), g.MonitorEnabled(), g.MonitorActive())
	}
}

func TestSelectBuildFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("no stages today")
	r := DefaultRegistry()
	r.MustRegister("broken", func(BuildContext) (*Voice, error) { return nil, boom })

	a, _, _ := newTestAssembler(r)

	if _, err := a.Select(Robot); err != nil {
		t.Fatalf("Select: %v", err)
	}

	g, err := a.Select("broken")
	if !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}

	if a.Current() != "" || len(g.Nodes()) != 0 {
		t.Fatalf("previous voice should be retired: current=%q nodes=%d", a.Current(), len(g.Nodes()))
	}
}

func TestSelectBuildFailureLeavesNoEdges(t *testing.T) {
	t.Parallel()

	boom := errors.New("ran out of stages")
	a1, b1 := stage.NewGain("a", 1), stage.NewGain("b", 1)

	r := DefaultRegistry()
	r.MustRegister("leaky", func(ctx BuildContext) (*Voice, error) {
		if err := ctx.Wire.Connect(a1, b1); err != nil {
			return nil, err
		}

		return nil, boom
	})

	a, _, _ := newTestAssembler(r)

	if _, err := a.Select("leaky"); !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}

	g, err := a.Select(Robot)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	if outs := g.Outputs(a1); len(outs) != 0 {
		t.Fatalf("failed build left edges behind: %v", stageNames(outs))
	}
}

func TestSelectRegisterFailureRetiresVoice(t *testing.T) {
	t.Parallel()

	x, y := stage.NewGain("x", 1), stage.NewGain("y", 1)

	r := DefaultRegistry()
	r.MustRegister("twice", func(ctx BuildContext) (*Voice, error) {
		if err := ctx.Wire.Connect(x, y); err != nil {
			return nil, err
		}

		return &Voice{Name: "twice", Top: []stage.Stage{x, x}, Bottom: []stage.Stage{y}}, nil
	})

	a, _, _ := newTestAssembler(r)

	if _, err := a.Select(Robot); err != nil {
		t.Fatalf("Select: %v", err)
	}

	g, err := a.Select("twice")
	if !errors.Is(err, graph.ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}

	if a.Current() != "" || len(g.Nodes()) != 0 {
		t.Fatalf("half-registered voice kept: current=%q nodes=%v", a.Current(), stageNames(g.Nodes()))
	}

	if g.Connected(g.InputGain(), x) || len(g.Outputs(x)) != 0 {
		t.Fatalf("x still wired: outputs=%v", stageNames(g.Outputs(x)))
	}
}

func TestSelectedVoiceProducesSound(t *testing.T) {
	t.Parallel()

	a, main, _ := newTestAssembler(nil)

	g, err := a.Select(Chipmunk)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	for range 40 {
		if err := g.Render(); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}

	out := main.last()
	testutil.RequireFinite(t, out)

	// Dry 0.5 plus the shifted DC at the same level.
	testutil.RequireSliceNearlyEqual(t, out, testutil.DC(1, len(out)), 1e-6)
}
