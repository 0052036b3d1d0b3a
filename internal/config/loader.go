package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and
// validates the result. An empty document yields the default config.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if err := validateURL("speech.server_host", cfg.Speech.ServerHost, "http", "https"); err != nil {
		errs = append(errs, err)
	}
	for i, h := range cfg.Speech.FallbackHosts {
		if err := validateURL(fmt.Sprintf("speech.fallback_hosts[%d]", i), h, "http", "https"); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Speech.Timeout < 0 {
		errs = append(errs, fmt.Errorf("speech.timeout %s must not be negative", cfg.Speech.Timeout))
	}
	if cfg.Speech.Breaker.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("speech.breaker.max_failures %d must not be negative", cfg.Speech.Breaker.MaxFailures))
	}

	if cfg.Device.Channel == ChannelWebSocket {
		if err := validateURL("device.url", cfg.Device.URL, "ws", "wss"); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Device.Pace < 0 {
		errs = append(errs, fmt.Errorf("device.pace %s must not be negative", cfg.Device.Pace))
	}

	if cfg.Audio.Output == OutputPCM && cfg.Audio.PCMPath == "" {
		errs = append(errs, errors.New("audio.pcm_path is required when audio.output is pcm"))
	}
	if cfg.Audio.SampleRate < 0 || cfg.Audio.BlockSize < 0 {
		errs = append(errs, errors.New("audio.sample_rate and audio.block_size must not be negative"))
	}

	return errors.Join(errs...)
}

func validateURL(field, raw string, schemes ...string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s %q: %w", field, raw, err)
	}
	if !slices.Contains(schemes, u.Scheme) || u.Host == "" {
		return fmt.Errorf("%s %q must be an absolute %v URL", field, raw, schemes)
	}
	return nil
}
