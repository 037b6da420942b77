package main

import (
	"testing"
)

func testFlags() StreamFlags {
	return StreamFlags{SampleRate: 8000, BlockSize: 128, InputGain: 0.5, MonitorGain: 0.1, FFTSize: 256}
}

func TestRenderCommand(t *testing.T) {
	for _, voiceName := range []string{"robot", "chipmunk"} {
		cmd := &renderCmd{StreamFlags: testFlags(), Voice: voiceName, Tone: 440, Amplitude: 0.5, Duration: 0.25}
		if err := cmd.Run(&CLI{}); err != nil {
			t.Fatalf("%s: %v", voiceName, err)
		}
	}
}

func TestRenderCommandUnknownVoice(t *testing.T) {
	cmd := &renderCmd{StreamFlags: testFlags(), Voice: "opera", Tone: 440, Amplitude: 0.5, Duration: 0.25}
	if err := cmd.Run(&CLI{}); err == nil {
		t.Fatal("expected error for unknown voice")
	}
}

func TestRenderCommandRejectsEmptyTone(t *testing.T) {
	cmd := &renderCmd{StreamFlags: testFlags(), Voice: "robot", Duration: 0}
	if err := cmd.Run(&CLI{}); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestVoicesCommand(t *testing.T) {
	if err := (&voicesCmd{}).Run(&CLI{}); err != nil {
		t.Fatal(err)
	}
}
