package voice

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cwbudde/algo-voice/dsp/graph"
	"github.com/cwbudde/algo-voice/dsp/stage"
)

var (
	// ErrUnknownVoice is returned when no factory is registered for a name.
	ErrUnknownVoice = errors.New("voice: unknown voice")

	errDuplicateVoice = errors.New("duplicate voice")
)

// Wirer connects two stages of a voice to each other.
type Wirer interface {
	Connect(src, dst stage.Stage) error
}

// BuildContext carries what a factory needs to build its stages.
type BuildContext struct {
	SampleRate float64
	// Wire connects stages inside the voice. Connections to the scaffold
	// are made by registration, never through Wire.
	Wire Wirer
}

// Voice is one assembled transformation: the stages fed by input gain
// (Top), the stages feeding master gain (Bottom) and the user parameters.
// A stage may appear in both Top and Bottom.
type Voice struct {
	Name   string
	Top    []stage.Stage
	Bottom []stage.Stage
	Params []*graph.Param
	// LinkIO keeps a dry input -> master path open next to the voice.
	LinkIO bool
}

// Factory builds a fresh Voice. Stages must not be shared between calls.
type Factory func(ctx BuildContext) (*Voice, error)

// Registry maps voice names to their factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given voice name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("voice: empty voice name")
	}

	if factory == nil {
		return errors.New("voice: nil factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("voice: %w: %s", errDuplicateVoice, name)
	}

	r.factories[name] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err.Error())
	}
}

// Lookup returns the factory for the given voice name, or nil.
func (r *Registry) Lookup(name string) Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.factories[name]
}

// Names returns the registered voice names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
