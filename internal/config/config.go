// Package config provides the configuration schema, loader, file watcher
// and factory registry for the Ohbot server.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to a [slog.Level]. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Built-in device channel names.
const (
	ChannelWebSocket = "websocket"
	ChannelLog       = "log"
)

// Built-in audio output names.
const (
	OutputDiscard   = "discard"
	OutputPCM       = "pcm"
	OutputPortAudio = "portaudio"
)

// Default values applied by [ApplyDefaults].
const (
	DefaultListenAddr   = ":8080"
	DefaultServerHost   = "https://synthesis-service.scratch.mit.edu"
	DefaultTimeout      = 10 * time.Second
	DefaultMaxFailures  = 5
	DefaultResetTimeout = 30 * time.Second
	DefaultDeviceURL    = "ws://localhost:8765/ohbot"
	DefaultExtensionID  = "mmobhkfcipfooaiiikpnnkllmgillgpn"
	DefaultPace         = 100 * time.Millisecond
	DefaultSampleRate   = 22050
	DefaultBlockSize    = 1024
	DefaultServiceName  = "ohbot"
)

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Speech    SpeechConfig    `yaml:"speech"`
	Device    DeviceConfig    `yaml:"device"`
	Audio     AudioConfig     `yaml:"audio"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP API listens on.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Hot-reloadable.
	LogLevel LogLevel `yaml:"log_level"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins"`

	// ProjectPath, when set, is loaded into the runtime at start-up.
	ProjectPath string `yaml:"project_path"`
}

// SpeechConfig configures the synthesis service client.
type SpeechConfig struct {
	// ServerHost is the base URL of the synthesis service.
	ServerHost string `yaml:"server_host"`

	// FallbackHosts are mirrors tried in order when ServerHost fails.
	FallbackHosts []string `yaml:"fallback_hosts"`

	// Timeout bounds each request to one host.
	Timeout time.Duration `yaml:"timeout"`

	// EditorLocale initialises the speech language of a new project.
	// Empty means the LANG environment variable. Hot-reloadable.
	EditorLocale string `yaml:"editor_locale"`

	// FuzzyLanguageNames lets the language block accept misspelled names.
	// Off by default: an unknown name selects the default language.
	FuzzyLanguageNames bool `yaml:"fuzzy_language_names"`

	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the per-host circuit breaker.
type BreakerConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// DeviceConfig selects how robot commands leave the process.
type DeviceConfig struct {
	// Channel names a registered channel factory: "websocket" or "log".
	Channel string `yaml:"channel"`

	// URL is the companion's websocket endpoint.
	URL string `yaml:"url"`

	// ExtensionID is sent to the companion on connect.
	ExtensionID string `yaml:"extension_id"`

	// Pace is the delay after every command block.
	Pace time.Duration `yaml:"pace"`
}

// AudioConfig selects where speech is played.
type AudioConfig struct {
	// Output names a registered output factory: "discard", "pcm" or
	// "portaudio".
	Output string `yaml:"output"`

	// PCMPath is the file raw PCM is written to when Output is "pcm".
	// "-" means standard output.
	PCMPath string `yaml:"pcm_path"`

	SampleRate int `yaml:"sample_rate"`
	BlockSize  int `yaml:"block_size"`
}

// TelemetryConfig configures OpenTelemetry resource attributes.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
}

// ApplyDefaults fills every zero field of cfg with its default value.
func ApplyDefaults(cfg *Config) {
	setDefault(&cfg.Server.ListenAddr, DefaultListenAddr)
	setDefault(&cfg.Server.LogLevel, LogInfo)
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	setDefault(&cfg.Speech.ServerHost, DefaultServerHost)
	setDefault(&cfg.Speech.Timeout, DefaultTimeout)
	setDefault(&cfg.Speech.Breaker.MaxFailures, DefaultMaxFailures)
	setDefault(&cfg.Speech.Breaker.ResetTimeout, DefaultResetTimeout)

	setDefault(&cfg.Device.Channel, ChannelWebSocket)
	setDefault(&cfg.Device.URL, DefaultDeviceURL)
	setDefault(&cfg.Device.ExtensionID, DefaultExtensionID)
	setDefault(&cfg.Device.Pace, DefaultPace)

	setDefault(&cfg.Audio.Output, OutputDiscard)
	setDefault(&cfg.Audio.SampleRate, DefaultSampleRate)
	setDefault(&cfg.Audio.BlockSize, DefaultBlockSize)

	setDefault(&cfg.Telemetry.ServiceName, DefaultServiceName)
}

func setDefault[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}
