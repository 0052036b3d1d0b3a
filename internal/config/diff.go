package config

import "slices"

// ConfigDiff describes what changed between two configs. Hot-reloadable
// fields are reported individually; RestartRequired is set when anything
// else changed.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	EditorLocaleChanged bool
	NewEditorLocale     string

	// RestartRequired lists the sections whose changes only take effect
	// after a restart.
	RestartRequired []string
}

// Changed reports whether anything differs.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.EditorLocaleChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Speech.EditorLocale != new.Speech.EditorLocale {
		d.EditorLocaleChanged = true
		d.NewEditorLocale = new.Speech.EditorLocale
	}

	if old.Server.ListenAddr != new.Server.ListenAddr ||
		old.Server.ProjectPath != new.Server.ProjectPath ||
		!slices.Equal(old.Server.CORSOrigins, new.Server.CORSOrigins) {
		d.RestartRequired = append(d.RestartRequired, "server")
	}
	if !speechEqual(old.Speech, new.Speech) {
		d.RestartRequired = append(d.RestartRequired, "speech")
	}
	if old.Device != new.Device {
		d.RestartRequired = append(d.RestartRequired, "device")
	}
	if old.Audio != new.Audio {
		d.RestartRequired = append(d.RestartRequired, "audio")
	}
	if old.Telemetry != new.Telemetry {
		d.RestartRequired = append(d.RestartRequired, "telemetry")
	}
	return d
}

// speechEqual compares everything but the hot-reloadable editor locale.
func speechEqual(a, b SpeechConfig) bool {
	return a.ServerHost == b.ServerHost &&
		a.Timeout == b.Timeout &&
		a.Breaker == b.Breaker &&
		a.FuzzyLanguageNames == b.FuzzyLanguageNames &&
		slices.Equal(a.FallbackHosts, b.FallbackHosts)
}
