package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-voice/dsp/graph"
)

const spectrumBars = 32

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AA00"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A40000"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// View renders the UI
func (m Model) View() string {
	g := m.session.Graph()
	if g == nil {
		return "Starting session...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("voicegraph"))
	b.WriteString("\n\n")
	b.WriteString(m.renderVoices())
	b.WriteString("\n")
	b.WriteString(renderGates(g))
	b.WriteString("\n\n")
	b.WriteString(m.renderParams(g))
	b.WriteString("\n")
	b.WriteString(barStyle.Render(renderSpectrum(m.spectrum)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else {
		b.WriteString(m.status)
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("1-9 voice  g filter  m monitor  +/- input  [/] monitor  ↑↓←→ params  o/p devices  q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderVoices() string {
	current := m.session.Current()
	parts := make([]string, len(m.voices))

	for i, name := range m.voices {
		label := fmt.Sprintf("%d %s", i+1, name)
		if name == current {
			parts[i] = activeStyle.Render("[" + label + "]")
		} else {
			parts[i] = mutedStyle.Render(" " + label + " ")
		}
	}

	return strings.Join(parts, " ")
}

func renderGates(g *graph.AudioGraph) string {
	return fmt.Sprintf("filter %s   monitor %s   input %.2f   monitor vol %.2f   out %s   mon %s",
		gate(g.Enabled()), gate(g.MonitorActive()),
		g.InputVolume(), g.MonitorVolume(),
		g.Destination().Device(), g.MonitorDestination().Device())
}

func gate(on bool) string {
	if on {
		return activeStyle.Render("on")
	}

	return mutedStyle.Render("off")
}

func (m Model) renderParams(g *graph.AudioGraph) string {
	var b strings.Builder

	for i, p := range g.Params() {
		spec := p.Spec()

		cursor := "  "
		if i == m.param {
			cursor = "> "
		}

		fmt.Fprintf(&b, "%s%s %s: %.2f %s\n", cursor, spec.Name, spec.UnitLabel, p.Value(), spec.Unit)
	}

	return b.String()
}

// renderSpectrum folds the byte spectrum into a fixed number of bars,
// keeping the peak of each group.
func renderSpectrum(bins []byte) string {
	if len(bins) == 0 {
		return ""
	}

	bars := min(spectrumBars, len(bins))
	per := len(bins) / bars
	out := make([]rune, bars)

	for i := range bars {
		var peak byte
		for _, v := range bins[i*per : (i+1)*per] {
			peak = max(peak, v)
		}

		out[i] = barGlyphs[int(peak)*(len(barGlyphs)-1)/255]
	}

	return string(out)
}
