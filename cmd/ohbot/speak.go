package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrWong99/ohbot/internal/app"
	"github.com/MrWong99/ohbot/internal/config"
	"github.com/MrWong99/ohbot/internal/extension"
)

func speakCmd(load func() (*config.Config, error)) *cobra.Command {
	var voice, language, output, pcmPath, channel string
	cmd := &cobra.Command{
		Use:   "speak [words...]",
		Short: "Speak the words once through the full speech pipeline",
		Example: `  ohbot speak hello there
  ohbot speak --voice GIANT --language de "guten Tag"
  ohbot speak --output pcm --pcm-path - hello | aplay -f S16_LE -r 22050`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Audio.Output = output
			}
			if pcmPath != "" {
				cfg.Audio.PCMPath = pcmPath
			}
			if channel != "" {
				cfg.Device.Channel = channel
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return speak(cfg, voice, language, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&voice, "voice", "", "voice id or 1-based menu index (e.g. TENOR)")
	cmd.Flags().StringVar(&language, "language", "", "language id, locale or name (e.g. de, German)")
	cmd.Flags().StringVar(&output, "output", "", "audio output override: discard, pcm or portaudio")
	cmd.Flags().StringVar(&pcmPath, "pcm-path", "", "file for pcm output, - for stdout")
	cmd.Flags().StringVar(&channel, "device", config.ChannelLog, "device channel: websocket or log")
	return cmd
}

func speak(cfg *config.Config, voice, language, words string) error {
	var lv slog.LevelVar
	slog.SetDefault(newLogger(&lv, cfg.Server.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		return err
	}

	// The one-shot run keeps no project.
	cfg.Server.ProjectPath = ""
	application, err := app.New(ctx, cfg, providers, app.WithLevelVar(&lv))
	if err != nil {
		return fmt.Errorf("initialise application: %w", err)
	}
	defer application.Shutdown(context.Background())

	ext := application.Extension()
	target := application.Runtime().AddTarget("ohbot-cli")

	if voice != "" {
		if _, err := ext.Invoke(ctx, target, extension.OpSetVoice, map[string]any{"VOICE": voice}); err != nil {
			return err
		}
	}
	if language != "" {
		if _, err := ext.Invoke(ctx, target, extension.OpSetLanguage, map[string]any{"LANGUAGE": language}); err != nil {
			return err
		}
	}

	v, _ := ext.VoiceID(target)
	slog.Info("speaking", "voice", v, "language", ext.CurrentLanguage(), "words", words)
	_, err = ext.Invoke(ctx, target, extension.OpSpeakAndWait, map[string]any{"WORDS": words})
	return err
}
