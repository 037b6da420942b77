package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-voice/dsp/graph"
	"github.com/cwbudde/algo-voice/dsp/voice"
	"github.com/cwbudde/algo-voice/internal/cli"
	"github.com/cwbudde/algo-voice/internal/device"
	"github.com/cwbudde/algo-voice/internal/device/memory"
	"github.com/cwbudde/algo-voice/internal/testutil"
	"github.com/cwbudde/algo-voice/internal/tui"
)

// StreamFlags are the graph settings shared by run and render.
type StreamFlags struct {
	SampleRate  float64 `default:"48000" help:"Sample rate in Hz."`
	BlockSize   int     `default:"256" help:"Frames per render block."`
	InputGain   float64 `default:"0.5" help:"Input gain."`
	MonitorGain float64 `default:"0.1" help:"Monitor gain."`
	FFTSize     int     `name:"fft-size" default:"256" help:"Analyser window, a power of two."`
	MonitorOn   bool    `name:"monitor-on" help:"Start with the monitor output enabled."`
	Bypass      bool    `help:"Start with the voice bypassed."`
}

func (f StreamFlags) options() []graph.Option {
	return []graph.Option{
		graph.WithLogger(logger),
		graph.WithSampleRate(f.SampleRate),
		graph.WithBlockSize(f.BlockSize),
		graph.WithInputGain(f.InputGain),
		graph.WithMonitorGain(f.MonitorGain),
		graph.WithFFTSize(f.FFTSize),
		graph.WithMonitorEnabled(f.MonitorOn),
	}
}

// start selects voiceName and applies the bypass flag.
func (f StreamFlags) start(a *voice.Assembler, voiceName string) (*graph.AudioGraph, error) {
	g, err := a.Select(voiceName)
	if err != nil {
		return nil, err
	}

	if f.Bypass {
		g.Toggle(false)
	}

	return g, nil
}

type runCmd struct {
	StreamFlags `embed:""`

	Voice    string `default:"robot" help:"Voice to start with."`
	Input    string `default:"default" help:"Capture device name."`
	Output   string `default:"default" help:"Main output device name."`
	Monitor  string `default:"default" help:"Monitor output device name."`
	Headless bool   `help:"Run without the terminal UI until interrupted."`
	LogFile  string `type:"path" help:"Write logs to this file while the terminal UI is running."`
}

func (c *runCmd) Run(cliArgs *CLI) error {
	if !c.Headless {
		w := io.Discard
		if c.LogFile != "" {
			f, err := os.Create(c.LogFile)
			if err != nil {
				return err
			}
			defer f.Close()

			w = f
		}

		initLogger(w, cliArgs.Debug)
	}

	if err := device.Initialize(); err != nil {
		return err
	}
	defer device.Terminate()

	cfg := device.Config{SampleRate: c.SampleRate, BlockSize: c.BlockSize, Logger: logger}

	capture, err := device.OpenCapture(c.Input, cfg)
	if err != nil {
		return err
	}
	defer capture.Close()

	output, err := device.OpenPlayback(c.Output, cfg)
	if err != nil {
		return err
	}
	defer output.Close()

	monitor, err := device.OpenPlayback(c.Monitor, cfg)
	if err != nil {
		return err
	}
	defer monitor.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Playback starts with the session graph, ahead of the first voice.
	opts := append(c.options(), graph.WithAutoStart(ctx))
	a := voice.NewAssembler(capture, output, monitor, nil, opts...)

	g, err := c.start(a, c.Voice)
	if err != nil {
		stop()
		if session := a.Graph(); session != nil {
			_ = session.Wait()
		}

		return err
	}

	logger.Info("session started", "voice", c.Voice, "input", capture.Device(), "output", output.Device(), "monitor", monitor.Device())

	if c.Headless {
		return ignoreCancel(g.Wait())
	}

	outputs, err := device.Outputs()
	if err != nil {
		logger.Warn("listing output devices", "error", err)
	}

	names := make([]string, len(outputs))
	for i, d := range outputs {
		names[i] = d.Name
	}

	p := tea.NewProgram(tui.NewModel(a, a.Registry().Names(), names), tea.WithAltScreen(), tea.WithContext(ctx))
	_, uiErr := p.Run()

	stop()

	if errors.Is(uiErr, tea.ErrProgramKilled) {
		uiErr = nil
	}

	return errors.Join(uiErr, ignoreCancel(g.Wait()))
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

type renderCmd struct {
	StreamFlags `embed:""`

	Voice     string  `default:"robot" help:"Voice to render."`
	Tone      float64 `default:"440" help:"Test tone frequency in Hz."`
	Amplitude float64 `default:"0.5" help:"Test tone amplitude."`
	Duration  float64 `default:"1" help:"Test tone length in seconds."`
}

func (c *renderCmd) Run(_ *CLI) error {
	if c.Duration <= 0 || c.SampleRate <= 0 {
		return fmt.Errorf("render: duration and sample rate must be > 0")
	}

	input := testutil.Sine(c.Tone, c.SampleRate, c.Amplitude, int(c.Duration*c.SampleRate))
	output, monitor := memory.NewSink(), memory.NewSink()

	opts := append(c.options(), graph.WithSmoothing(0))
	a := voice.NewAssembler(memory.NewStream(input, false), output, monitor, nil, opts...)

	g, err := c.start(a, c.Voice)
	if err != nil {
		return err
	}

	if err := g.Run(context.Background()); err != nil {
		return err
	}

	bins := make([]byte, g.Analyser().FrequencyBinCount())
	g.Analyser().ByteFrequencyData(bins)

	peak := testutil.PeakBin(bins)
	binHz := c.SampleRate / float64(g.Analyser().FFTSize())

	fmt.Println(cli.Table([]string{"Measure", "Value"}, [][]string{
		{"Voice", c.Voice},
		{"Filter", onOff(g.Enabled())},
		{"Blocks", strconv.Itoa(output.Blocks())},
		{"Input RMS", fmt.Sprintf("%.4f", testutil.RMS(input))},
		{"Output RMS", fmt.Sprintf("%.4f", testutil.RMS(output.Samples()))},
		{"Monitor RMS", fmt.Sprintf("%.4f", testutil.RMS(monitor.Samples()))},
		{"Peak bin", fmt.Sprintf("%d (%.0f Hz)", peak, float64(peak)*binHz)},
	}))

	return nil
}

type voicesCmd struct{}

func (c *voicesCmd) Run(_ *CLI) error {
	a := voice.NewAssembler(memory.NewStream(nil, false), memory.NewSink(), memory.NewSink(), nil,
		graph.WithLogger(logger))

	var rows [][]string

	for _, name := range a.Registry().Names() {
		g, err := a.Select(name)
		if err != nil {
			return err
		}

		var params []string
		for _, p := range g.Params() {
			s := p.Spec()
			params = append(params, fmt.Sprintf("%s %s %g %s [%g..%g]", s.Name, s.UnitLabel, s.Default, s.Unit, s.Min, s.Max))
		}

		rows = append(rows, []string{name, strconv.Itoa(len(g.Nodes())), onOff(g.IOLinked()), strings.Join(params, "\n")})
	}

	fmt.Println(cli.Table([]string{"Voice", "Stages", "Dry link", "Parameters"}, rows))

	return nil
}

type devicesCmd struct{}

func (c *devicesCmd) Run(_ *CLI) error {
	if err := device.Initialize(); err != nil {
		return err
	}
	defer device.Terminate()

	outputs, err := device.Outputs()
	if err != nil {
		return err
	}

	rows := make([][]string, len(outputs))
	for i, d := range outputs {
		def := ""
		if d.Default {
			def = "*"
		}

		rows[i] = []string{def, d.Name, d.HostAPI, strconv.Itoa(d.Outputs), fmt.Sprintf("%.0f", d.SampleRate)}
	}

	fmt.Println(cli.Table([]string{"", "Name", "Host API", "Channels", "Rate"}, rows))

	return nil
}

type versionCmd struct{}

func (c *versionCmd) Run(_ *CLI) error {
	cli.PrintVersion(os.Stdout, version)
	return nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}

	return "off"
}
