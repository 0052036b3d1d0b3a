package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MrWong99/ohbot/internal/device"
	"github.com/MrWong99/ohbot/pkg/audio/engine"
)

// ErrNotRegistered is returned by Create* methods when no factory has been
// registered under the requested name.
var ErrNotRegistered = errors.New("config: factory not registered")

// ChannelFactory builds a device channel from its config section.
type ChannelFactory func(DeviceConfig) (device.Channel, error)

// OutputFactory builds an audio output from its config section.
type OutputFactory func(AudioConfig) (engine.Output, error)

// Registry maps device channel and audio output names to constructors.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]ChannelFactory
	outputs  map[string]OutputFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]ChannelFactory),
		outputs:  make(map[string]OutputFactory),
	}
}

// RegisterChannel registers a device channel factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterChannel(name string, f ChannelFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[name] = f
}

// RegisterOutput registers an audio output factory under name.
func (r *Registry) RegisterOutput(name string, f OutputFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[name] = f
}

// CreateChannel instantiates the channel named by cfg.Channel.
func (r *Registry) CreateChannel(cfg DeviceConfig) (device.Channel, error) {
	r.mu.RLock()
	f, ok := r.channels[cfg.Channel]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: device channel %q", ErrNotRegistered, cfg.Channel)
	}
	return f(cfg)
}

// CreateOutput instantiates the output named by cfg.Output.
func (r *Registry) CreateOutput(cfg AudioConfig) (engine.Output, error) {
	r.mu.RLock()
	f, ok := r.outputs[cfg.Output]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: audio output %q", ErrNotRegistered, cfg.Output)
	}
	return f(cfg)
}
