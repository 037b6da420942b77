package voice

import (
	"testing"

	"github.com/cwbudde/algo-voice/dsp/stage"
)

func TestRobot(t *testing.T) {
	t.Parallel()

	w := &edgeRecorder{}

	v, err := NewRobot(BuildContext{SampleRate: 48000, Wire: w})
	if err != nil {
		t.Fatalf("NewRobot: %v", err)
	}

	if len(v.Top) != 1 || len(v.Bottom) != 2 || v.Top[0] != v.Bottom[0] {
		t.Fatalf("top=%v bottom=%v", stageNames(v.Top), stageNames(v.Bottom))
	}

	if len(w.edges) != 1 || w.edges[0][0] != v.Bottom[0] || w.edges[0][1] != v.Bottom[1] {
		t.Fatalf("intra-voice wiring = %v, want pitch -> comb", w.edges)
	}

	if v.LinkIO {
		t.Error("robot should not link input and output")
	}

	pitch := v.Top[0].(*stage.PitchShift)
	comb := v.Bottom[1].(*stage.Delay)

	if pitch.Semitones() != -5 {
		t.Errorf("pitch default = %v, want -5", pitch.Semitones())
	}

	if comb.DelayTime() != 0.02 {
		t.Errorf("comb default = %v, want 0.02", comb.DelayTime())
	}

	if len(v.Params) != 2 || v.Params[0].Name() != "Pitch" || v.Params[1].Name() != "Comb" {
		t.Fatalf("params = %v", v.Params)
	}

	if err := v.Params[1].Apply(50); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if comb.DelayTime() != 0.05 {
		t.Errorf("comb after 50 ms = %v, want 0.05", comb.DelayTime())
	}

	if err := v.Params[0].Apply(3); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if pitch.Semitones() != 3 {
		t.Errorf("pitch after apply = %v, want 3", pitch.Semitones())
	}
}

func TestChipmunk(t *testing.T) {
	t.Parallel()

	w := &edgeRecorder{}

	v, err := NewChipmunk(BuildContext{SampleRate: 48000, Wire: w})
	if err != nil {
		t.Fatalf("NewChipmunk: %v", err)
	}

	if !v.LinkIO {
		t.Error("chipmunk should keep the dry path open")
	}

	if len(w.edges) != 0 {
		t.Errorf("unexpected intra-voice wiring: %v", w.edges)
	}

	if len(v.Top) != 1 || len(v.Bottom) != 1 || v.Top[0] != v.Bottom[0] {
		t.Fatalf("top=%v bottom=%v", stageNames(v.Top), stageNames(v.Bottom))
	}

	if got := v.Top[0].(*stage.PitchShift).Semitones(); got != 5 {
		t.Errorf("pitch default = %v, want 5", got)
	}

	spec := v.Params[0].Spec()
	if spec.Min != -12 || spec.Max != 12 || spec.Step != 0.5 || spec.Unit != "st" {
		t.Errorf("pitch spec = %+v", spec)
	}
}

func TestVoicesAreFreshPerBuild(t *testing.T) {
	t.Parallel()

	ctx := BuildContext{SampleRate: 48000, Wire: &edgeRecorder{}}

	a, err := NewChipmunk(ctx)
	if err != nil {
		t.Fatalf("NewChipmunk: %v", err)
	}

	b, err := NewChipmunk(ctx)
	if err != nil {
		t.Fatalf("NewChipmunk: %v", err)
	}

	if a.Top[0] == b.Top[0] {
		t.Fatal("two builds share a stage")
	}
}

func TestVoiceBuildFailsOnBadSampleRate(t *testing.T) {
	t.Parallel()

	for name, build := range map[string]Factory{Robot: NewRobot, Chipmunk: NewChipmunk} {
		if _, err := build(BuildContext{SampleRate: 0, Wire: &edgeRecorder{}}); err == nil {
			t.Errorf("%s: expected error for zero sample rate", name)
		}
	}
}
