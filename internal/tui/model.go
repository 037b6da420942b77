// Package tui provides the Bubbletea control surface of a live session:
// voice selection, the filter and monitor gates, volumes, voice parameters
// and output devices, plus a spectrum display fed by the analyser.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-voice/dsp/graph"
	"github.com/cwbudde/algo-voice/dsp/voice"
)

const (
	refreshInterval = 50 * time.Millisecond
	volumeStep      = 0.05
	maxVolume       = 4
)

// Session is the part of a voice assembler the UI drives.
type Session interface {
	Select(name string) (*graph.AudioGraph, error)
	Graph() *graph.AudioGraph
	Current() string
}

// Model is the Bubbletea model for a live session.
type Model struct {
	session Session
	voices  []string
	devices []string

	param      int
	outputDev  int
	monitorDev int

	spectrum []byte
	status   string
	err      error

	Width  int
	Height int
}

// NewModel creates a model for session. voices are offered on the number
// keys in order; devices are the output devices to cycle through. The
// session graph must exist, i.e. a voice must already be selected.
func NewModel(session Session, voices, devices []string) Model {
	m := Model{
		session: session,
		voices:  voices,
		devices: devices,
	}

	if g := session.Graph(); g != nil {
		m.spectrum = make([]byte, g.Analyser().FrequencyBinCount())
	}

	return m
}

// Init starts the spectrum refresh.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	g := m.session.Graph()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(g, msg.String())

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if g != nil {
			g.Analyser().ByteFrequencyData(m.spectrum)
		}

		return m, tick()

	case voiceMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.param = 0
			m.status = "voice: " + msg.Voice
		}

	case sinkMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.status = fmt.Sprintf("%s device: %s", msg.Role, msg.Device)
		}
	}

	return m, nil
}

func (m Model) handleKey(g *graph.AudioGraph, key string) (tea.Model, tea.Cmd) {
	if key == "q" || key == "ctrl+c" || key == "esc" {
		return m, tea.Quit
	}

	if g == nil {
		return m, nil
	}

	m.err = nil

	switch key {
	case "g":
		g.Toggle(!g.Enabled())
		m.status = onOff("filter", g.Enabled())

	case "m":
		g.ToggleMonitor(!g.MonitorEnabled())
		m.status = onOff("monitor", g.MonitorEnabled())

	case "+", "=":
		g.SetInputVolume(clampVolume(g.InputVolume() + volumeStep))

	case "-":
		g.SetInputVolume(clampVolume(g.InputVolume() - volumeStep))

	case "]":
		g.SetMonitorVolume(clampVolume(g.MonitorVolume() + volumeStep))

	case "[":
		g.SetMonitorVolume(clampVolume(g.MonitorVolume() - volumeStep))

	case "up", "k":
		m.param = max(m.param-1, 0)

	case "down", "j":
		if n := len(g.Params()); n > 0 {
			m.param = min(m.param+1, n-1)
		}

	case "left", "h":
		m.err = m.stepParam(g, -1)

	case "right", "l":
		m.err = m.stepParam(g, 1)

	case "o":
		if len(m.devices) > 0 {
			m.outputDev = (m.outputDev + 1) % len(m.devices)
			return m, switchSink("output", m.devices[m.outputDev], g.SetOutputSink)
		}

	case "p":
		if len(m.devices) > 0 {
			m.monitorDev = (m.monitorDev + 1) % len(m.devices)
			return m, switchSink("monitor", m.devices[m.monitorDev], g.SetMonitorSink)
		}

	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.voices) {
				return m, selectVoice(m.session, m.voices[i])
			}
		}
	}

	return m, nil
}

// stepParam moves the selected parameter by one step within its range.
func (m Model) stepParam(g *graph.AudioGraph, dir float64) error {
	params := g.Params()
	if m.param >= len(params) {
		return nil
	}

	p := params[m.param]
	spec := p.Spec()
	v := min(max(p.Value()+dir*spec.Step, spec.Min), spec.Max)

	return g.ModifyParam(m.param, v)
}

func selectVoice(s Session, name string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Select(name)
		return voiceMsg{Voice: name, Err: err}
	}
}

func switchSink(role, id string, set func(context.Context, string) <-chan error) tea.Cmd {
	return func() tea.Msg {
		return sinkMsg{Role: role, Device: id, Err: <-set(context.Background(), id)}
	}
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), maxVolume)
}

func onOff(what string, on bool) string {
	if on {
		return what + " on"
	}

	return what + " off"
}

var _ Session = (*voice.Assembler)(nil)
