package graph

import (
	"context"
	"log/slog"

	"github.com/cwbudde/algo-voice/dsp/stage"
)

// Config defines the scaffold settings of an AudioGraph.
type Config struct {
	SampleRate     float64
	BlockSize      int
	InputGain      float64
	MonitorGain    float64
	FFTSize        int
	Smoothing      float64
	MinDecibels    float64
	MaxDecibels    float64
	Enabled        bool
	MonitorEnabled bool
	Logger         *slog.Logger

	startCtx context.Context
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults of a fresh session: voice path enabled,
// monitor muted, input at half gain.
func DefaultConfig() Config {
	return Config{
		SampleRate:     48000,
		BlockSize:      256,
		InputGain:      0.5,
		MonitorGain:    0.1,
		FFTSize:        stage.DefaultFFTSize,
		Smoothing:      stage.DefaultSmoothing,
		MinDecibels:    stage.DefaultMinDecibels,
		MaxDecibels:    stage.DefaultMaxDecibels,
		Enabled:        true,
		MonitorEnabled: false,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the number of frames rendered per pass.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithInputGain sets the initial input volume.
func WithInputGain(gain float64) Option {
	return func(cfg *Config) {
		if gain >= 0 {
			cfg.InputGain = gain
		}
	}
}

// WithMonitorGain sets the initial monitor volume.
func WithMonitorGain(gain float64) Option {
	return func(cfg *Config) {
		if gain >= 0 {
			cfg.MonitorGain = gain
		}
	}
}

// WithFFTSize sets the analyser window. Validation happens in New.
func WithFFTSize(size int) Option {
	return func(cfg *Config) {
		if size > 0 {
			cfg.FFTSize = size
		}
	}
}

// WithSmoothing sets the analyser smoothing time constant.
func WithSmoothing(tau float64) Option {
	return func(cfg *Config) {
		if tau >= 0 && tau <= 1 {
			cfg.Smoothing = tau
		}
	}
}

// WithDecibelRange sets the analyser byte mapping range.
func WithDecibelRange(minDB, maxDB float64) Option {
	return func(cfg *Config) {
		if minDB < maxDB {
			cfg.MinDecibels = minDB
			cfg.MaxDecibels = maxDB
		}
	}
}

// WithEnabled sets whether the voice path starts live.
func WithEnabled(enabled bool) Option {
	return func(cfg *Config) {
		cfg.Enabled = enabled
	}
}

// WithMonitorEnabled sets whether the monitor branch starts live.
func WithMonitorEnabled(enabled bool) Option {
	return func(cfg *Config) {
		cfg.MonitorEnabled = enabled
	}
}

// WithLogger sets the logger for recoverable errors and state changes.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// WithAutoStart makes New launch the render loop on its own goroutine,
// bound to ctx. Use Wait to collect the loop's result.
func WithAutoStart(ctx context.Context) Option {
	return func(cfg *Config) {
		cfg.startCtx = ctx
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return cfg
}
