// Command ohbot serves the Ohbot block extension over HTTP and offers a few
// offline helpers (one-shot speech, catalog listings).
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrWong99/ohbot/internal/config"
)

// Set by the linker: -ldflags "-X main.version=v1.2.3".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ohbot: %v\n", err)
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "ohbot",
		Short:         "Ohbot robot extension: motors, eye colours and speech with lip sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "ohbot.yaml", "path to the YAML configuration file")

	loader := func() (*config.Config, error) {
		return loadConfig(configPath, cmd.PersistentFlags().Changed("config"))
	}
	cmd.AddCommand(
		serveCmd(loader, &configPath),
		speakCmd(loader),
		voicesCmd(),
		languagesCmd(),
		versionCmd(),
	)
	return cmd
}

// loadConfig reads path. A missing default config file yields the built-in
// defaults; a missing file named explicitly is an error.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		slog.Debug("no config file, using defaults", "path", path)
		return config.Default(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %q not found, copy configs/ohbot.example.yaml to get started", path)
	}
	return cfg, err
}

// ── Logger ─────────────────────────────────────────────────────────────────────

// newLogger returns a text logger on stderr whose level is controlled by lv.
func newLogger(lv *slog.LevelVar, level config.LogLevel) *slog.Logger {
	lv.Set(level.Level())
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}
