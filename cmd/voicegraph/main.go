package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-voice/internal/cli"
)

var version = "0.1.0"

// logger is replaced by initLogger once flags are parsed.
var logger = slog.Default()

// CLI defines the command-line interface
type CLI struct {
	Debug bool `help:"Enable debug logging with source locations."`

	Run     runCmd     `cmd:"" help:"Route the microphone through a voice to the output devices."`
	Render  renderCmd  `cmd:"" help:"Render a test tone through a voice offline and summarise the result."`
	Voices  voicesCmd  `cmd:"" help:"List the available voices and their parameters."`
	Devices devicesCmd `cmd:"" help:"List the output devices."`
	Version versionCmd `cmd:"" help:"Show version information."`
}

// initLogger configures the shared slog logger and makes it the default.
func initLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("voicegraph"),
		kong.Description("Real-time voice transformation through a reconfigurable routing graph"),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	initLogger(os.Stderr, cliArgs.Debug)

	if err := ctx.Run(cliArgs); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}
