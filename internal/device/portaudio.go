package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrUnknownDevice is returned when a device id matches no known device.
var ErrUnknownDevice = errors.New("device: unknown device")

// DefaultID selects the platform default device.
const DefaultID = "default"

// Info describes one PortAudio device.
type Info struct {
	Name       string
	HostAPI    string
	Inputs     int
	Outputs    int
	SampleRate float64
	Default    bool
}

// Initialize starts PortAudio. Every successful call must be matched by
// Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("device: initialize portaudio: %w", err)
	}

	return nil
}

// Terminate shuts PortAudio down.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("device: terminate portaudio: %w", err)
	}

	return nil
}

// Outputs lists the devices that can play audio.
func Outputs() ([]Info, error) {
	return list(func(d *portaudio.DeviceInfo) bool { return d.MaxOutputChannels > 0 }, portaudio.DefaultOutputDevice)
}

// Inputs lists the devices that can capture audio.
func Inputs() ([]Info, error) {
	return list(func(d *portaudio.DeviceInfo) bool { return d.MaxInputChannels > 0 }, portaudio.DefaultInputDevice)
}

func list(keep func(*portaudio.DeviceInfo) bool, def func() (*portaudio.DeviceInfo, error)) ([]Info, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("device: list devices: %w", err)
	}

	// A missing default device is not an error when listing.
	defaultDev, _ := def()

	var infos []Info

	for _, d := range devices {
		if !keep(d) {
			continue
		}

		info := Info{
			Name:       d.Name,
			Inputs:     d.MaxInputChannels,
			Outputs:    d.MaxOutputChannels,
			SampleRate: d.DefaultSampleRate,
			Default:    defaultDev != nil && d.Name == defaultDev.Name,
		}
		if d.HostApi != nil {
			info.HostAPI = d.HostApi.Name
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// lookup resolves id to a device. "" and DefaultID select the default.
func lookup(id string, output bool) (*portaudio.DeviceInfo, error) {
	if id == "" || id == DefaultID {
		var (
			d   *portaudio.DeviceInfo
			err error
		)

		if output {
			d, err = portaudio.DefaultOutputDevice()
		} else {
			d, err = portaudio.DefaultInputDevice()
		}

		if err != nil {
			return nil, fmt.Errorf("device: default device: %w", err)
		}

		return d, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("device: list devices: %w", err)
	}

	for _, d := range devices {
		if d.Name != id {
			continue
		}

		if (output && d.MaxOutputChannels > 0) || (!output && d.MaxInputChannels > 0) {
			return d, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, id)
}

// Config selects the stream format shared by capture and playback.
type Config struct {
	SampleRate float64
	BlockSize  int
	Logger     *slog.Logger
}

func (c Config) validate() error {
	if c.SampleRate <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("device: invalid stream format: %v Hz, %d frames", c.SampleRate, c.BlockSize)
	}

	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}

	return c.Logger
}

// Capture reads mono blocks from an input device.
type Capture struct {
	cfg    Config
	stream *portaudio.Stream
	buf    []float32
	name   string
}

// OpenCapture opens and starts a blocking mono input stream on device id.
func OpenCapture(id string, cfg Config) (*Capture, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d, err := lookup(id, false)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(d, nil)
	params.Input.Channels = 1
	params.SampleRate = cfg.SampleRate
	params.FramesPerBuffer = cfg.BlockSize

	c := &Capture{cfg: cfg, buf: make([]float32, cfg.BlockSize), name: d.Name}

	c.stream, err = portaudio.OpenStream(params, c.buf)
	if err != nil {
		return nil, fmt.Errorf("device: open capture %q: %w", d.Name, err)
	}

	if err := c.stream.Start(); err != nil {
		_ = c.stream.Close()
		return nil, fmt.Errorf("device: start capture %q: %w", d.Name, err)
	}

	cfg.logger().Info("capture opened", "device", d.Name, "sampleRate", cfg.SampleRate, "blockSize", cfg.BlockSize)

	return c, nil
}

// Read blocks until len(block) frames are captured. Input overflows are
// logged and otherwise ignored.
func (c *Capture) Read(block []float64) error {
	for off := 0; off < len(block); off += len(c.buf) {
		err := c.stream.Read()
		if errors.Is(err, portaudio.InputOverflowed) {
			c.cfg.logger().Debug("capture overflow", "device", c.name)
		} else if err != nil {
			return fmt.Errorf("device: read %q: %w", c.name, err)
		}

		toFloat64(block[off:], c.buf)
	}

	return nil
}

// Device returns the name of the capture device.
func (c *Capture) Device() string { return c.name }

// Close stops and closes the stream.
func (c *Capture) Close() error {
	return closeStream(c.stream)
}

// Playback writes mono blocks to an output device and can move to another
// device while running.
type Playback struct {
	cfg Config

	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []float32
	name   string
}

// OpenPlayback opens and starts a blocking mono output stream on device id.
func OpenPlayback(id string, cfg Config) (*Playback, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Playback{cfg: cfg}
	if err := p.open(id); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Playback) open(id string) error {
	d, err := lookup(id, true)
	if err != nil {
		return err
	}

	params := portaudio.HighLatencyParameters(nil, d)
	params.Output.Channels = 1
	params.SampleRate = p.cfg.SampleRate
	params.FramesPerBuffer = p.cfg.BlockSize

	buf := make([]float32, p.cfg.BlockSize)

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return fmt.Errorf("device: open playback %q: %w", d.Name, err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("device: start playback %q: %w", d.Name, err)
	}

	old := p.stream
	p.stream, p.buf, p.name = stream, buf, d.Name

	if old != nil {
		if err := closeStream(old); err != nil {
			p.cfg.logger().Warn("closing previous playback stream", "error", err)
		}
	}

	return nil
}

// Write plays block. Output underflows are logged and otherwise ignored.
func (p *Playback) Write(block []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for off := 0; off < len(block); off += len(p.buf) {
		toFloat32(p.buf, block[off:])

		err := p.stream.Write()
		if errors.Is(err, portaudio.OutputUnderflowed) {
			p.cfg.logger().Debug("playback underflow", "device", p.name)
		} else if err != nil {
			return fmt.Errorf("device: write %q: %w", p.name, err)
		}
	}

	return nil
}

// SetDevice moves playback to device id. The new stream is started before
// the old one is closed; on failure the old stream keeps playing.
func (p *Playback) SetDevice(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.open(id)
}

// Device returns the name of the playback device.
func (p *Playback) Device() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.name
}

// Close stops and closes the stream.
func (p *Playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return closeStream(p.stream)
}

func closeStream(s *portaudio.Stream) error {
	return errors.Join(s.Stop(), s.Close())
}

// toFloat64 copies the overlap of src into dst.
func toFloat64(dst []float64, src []float32) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i])
	}
}

// toFloat32 copies src into dst, clipping to [-1, 1] and zero padding dst
// past len(src).
func toFloat32(dst []float32, src []float64) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(max(-1, min(1, src[i])))
	}

	clear(dst[n:])
}
