package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MrWong99/ohbot/internal/app"
	"github.com/MrWong99/ohbot/internal/config"
	"github.com/MrWong99/ohbot/internal/device"
	"github.com/MrWong99/ohbot/pkg/audio/engine"
)

// builtinProviders lists what ships with ohbot. Used for startup logging.
var builtinProviders = map[string][]string{
	"device": {config.ChannelWebSocket, config.ChannelLog},
	"audio":  {config.OutputDiscard, config.OutputPCM, config.OutputPortAudio},
}

// registerBuiltinProviders wires the built-in device channels and audio
// outputs into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── Device ────────────────────────────────────────────────────────────────

	reg.RegisterChannel(config.ChannelWebSocket, func(cfg config.DeviceConfig) (device.Channel, error) {
		var opts []device.WSOption
		if cfg.ExtensionID != "" {
			opts = append(opts, device.WithExtensionID(cfg.ExtensionID))
		}
		return device.NewWSChannel(cfg.URL, opts...), nil
	})

	reg.RegisterChannel(config.ChannelLog, func(config.DeviceConfig) (device.Channel, error) {
		return device.NewLogChannel(slog.Default()), nil
	})

	// ── Audio ─────────────────────────────────────────────────────────────────

	reg.RegisterOutput(config.OutputDiscard, func(config.AudioConfig) (engine.Output, error) {
		return engine.Discard, nil
	})

	reg.RegisterOutput(config.OutputPCM, func(cfg config.AudioConfig) (engine.Output, error) {
		if cfg.PCMPath == "-" {
			return engine.NewPCMOutput(nopCloser{os.Stdout}), nil
		}
		f, err := os.Create(cfg.PCMPath)
		if err != nil {
			return nil, fmt.Errorf("open pcm output: %w", err)
		}
		return engine.NewPCMOutput(f), nil
	})

	reg.RegisterOutput(config.OutputPortAudio, func(cfg config.AudioConfig) (engine.Output, error) {
		return engine.NewPortAudioOutput(cfg.SampleRate, cfg.BlockSize)
	})

	for kind, names := range builtinProviders {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// buildProviders instantiates the channel and output named in cfg.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ch, err := reg.CreateChannel(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("create device channel %q: %w", cfg.Device.Channel, err)
	}
	slog.Info("provider created", "kind", "device", "name", cfg.Device.Channel)

	out, err := reg.CreateOutput(cfg.Audio)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("create audio output %q: %w", cfg.Audio.Output, err)
	}
	slog.Info("provider created", "kind", "audio", "name", cfg.Audio.Output)

	return &app.Providers{Channel: ch, Output: out}, nil
}

// nopCloser keeps stdout open when the PCM output is closed.
type nopCloser struct{ *os.File }

func (nopCloser) Close() error { return nil }
