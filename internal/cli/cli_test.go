package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type testCLI struct {
	Debug bool `help:"Verbose logging."`

	Play struct {
		Voice string  `arg:"" help:"Voice to play."`
		Gain  float64 `default:"0.5" help:"Input gain."`
	} `cmd:"" help:"Play a voice."`
}

func renderHelp(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	parser, err := kong.New(&testCLI{},
		kong.Name("voicegraph"),
		kong.Description("Voice routing"),
		kong.Writers(&out, &out),
		kong.Exit(func(int) {}),
		kong.Help(StyledHelpPrinter(kong.HelpOptions{})),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}

	_, _ = parser.Parse(args)

	return out.String()
}

func TestStyledHelpPrinter(t *testing.T) {
	t.Parallel()

	top := renderHelp(t, "--help")
	for _, want := range []string{"voicegraph", "Commands:", "play", "Play a voice.", "--debug"} {
		if !strings.Contains(top, want) {
			t.Errorf("top-level help missing %q:\n%s", want, top)
		}
	}

	sub := renderHelp(t, "play", "--help")
	for _, want := range []string{"Arguments:", "Voice to play.", "--gain", "0.5", "--debug"} {
		if !strings.Contains(sub, want) {
			t.Errorf("command help missing %q:\n%s", want, sub)
		}
	}
}

func TestTable(t *testing.T) {
	t.Parallel()

	out := Table([]string{"Voice", "Params"}, [][]string{{"robot", "Pitch, Comb"}, {"chipmunk", "Pitch"}})
	for _, want := range []string{"Voice", "Params", "robot", "Pitch, Comb", "chipmunk"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	PrintVersion(&out, "1.2.3")

	if !strings.Contains(out.String(), "1.2.3") {
		t.Fatalf("version output = %q", out.String())
	}
}
