package config_test

import (
	"errors"
	"testing"

	"github.com/MrWong99/ohbot/internal/config"
	"github.com/MrWong99/ohbot/internal/device"
	"github.com/MrWong99/ohbot/internal/device/mock"
	"github.com/MrWong99/ohbot/pkg/audio/engine"
)

func TestRegistry_CreateChannel(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	want := &mock.Channel{}
	var gotURL string
	reg.RegisterChannel("mock", func(cfg config.DeviceConfig) (device.Channel, error) {
		gotURL = cfg.URL
		return want, nil
	})

	ch, err := reg.CreateChannel(config.DeviceConfig{Channel: "mock", URL: "ws://robot"})
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if ch != want {
		t.Error("CreateChannel returned a different channel")
	}
	if gotURL != "ws://robot" {
		t.Errorf("factory saw url %q", gotURL)
	}
}

func TestRegistry_CreateOutput(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	reg.RegisterOutput(config.OutputDiscard, func(config.AudioConfig) (engine.Output, error) {
		return engine.Discard, nil
	})
	if _, err := reg.CreateOutput(config.AudioConfig{Output: config.OutputDiscard}); err != nil {
		t.Fatalf("CreateOutput: %v", err)
	}
}

func TestRegistry_NotRegistered(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	if _, err := reg.CreateChannel(config.DeviceConfig{Channel: "serial"}); !errors.Is(err, config.ErrNotRegistered) {
		t.Errorf("CreateChannel err = %v, want ErrNotRegistered", err)
	}
	if _, err := reg.CreateOutput(config.AudioConfig{Output: "alsa"}); !errors.Is(err, config.ErrNotRegistered) {
		t.Errorf("CreateOutput err = %v, want ErrNotRegistered", err)
	}
}
