// Package app wires all Ohbot subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves the HTTP API until the context ends, and Shutdown
// tears everything down in order.
//
// The device channel and audio output come from main.go (built through the
// config registry); tests pass mocks in the same way.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/ohbot/internal/api"
	"github.com/MrWong99/ohbot/internal/config"
	"github.com/MrWong99/ohbot/internal/device"
	"github.com/MrWong99/ohbot/internal/extension"
	"github.com/MrWong99/ohbot/internal/health"
	"github.com/MrWong99/ohbot/internal/host"
	"github.com/MrWong99/ohbot/internal/langnames"
	"github.com/MrWong99/ohbot/internal/observe"
	"github.com/MrWong99/ohbot/internal/resilience"
	"github.com/MrWong99/ohbot/internal/speech"
	"github.com/MrWong99/ohbot/pkg/audio/engine"
)

// serverShutdownTimeout bounds how long Run waits for in-flight requests.
const serverShutdownTimeout = 5 * time.Second

// ErrSynthUnavailable is reported by the readiness check while every
// synthesis host's circuit breaker is open.
var ErrSynthUnavailable = errors.New("app: all synthesis hosts unavailable")

// Providers holds the pluggable endpoints. Populated by main.go via the
// config registry.
type Providers struct {
	Channel device.Channel
	Output  engine.Output
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	level      *slog.LevelVar
	metrics    *observe.Metrics
	configPath string
	watchOpts  []config.WatcherOption
	realtime   bool

	engine    *engine.Engine
	client    *speech.Client
	forwarder *device.Forwarder
	pipeline  *speech.Pipeline
	rt        *host.Runtime
	ext       *extension.Extension
	handler   http.Handler

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New.
type Option func(*App)

// WithLevelVar lets config reloads change the log level through lv.
func WithLevelVar(lv *slog.LevelVar) Option {
	return func(a *App) { a.level = lv }
}

// WithMetrics injects a metrics instance instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithConfigWatch makes Run watch the config file at path and apply
// hot-reloadable changes.
func WithConfigWatch(path string, opts ...config.WatcherOption) Option {
	return func(a *App) {
		a.configPath = path
		a.watchOpts = opts
	}
}

// WithRealtime controls whether audio is paced by the wall clock.
// Default: true.
func WithRealtime(realtime bool) Option {
	return func(a *App) { a.realtime = realtime }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. A missing channel
// or output in providers falls back to a logging channel and silent audio.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil {
		providers = &Providers{}
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
		realtime:  true,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Audio engine ──────────────────────────────────────────────────
	a.initEngine()

	// ── 2. Device forwarder ──────────────────────────────────────────────
	a.initDevice()

	// ── 3. Speech pipeline ───────────────────────────────────────────────
	a.initSpeech()

	// ── 4. Runtime + extension ───────────────────────────────────────────
	if err := a.initRuntime(ctx); err != nil {
		return nil, fmt.Errorf("app: init runtime: %w", err)
	}

	// ── 5. HTTP API ──────────────────────────────────────────────────────
	a.initAPI()

	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

func (a *App) initEngine() {
	out := a.providers.Output
	if out == nil {
		out = engine.Discard
	}
	a.engine = engine.New(
		engine.WithSampleRate(a.cfg.Audio.SampleRate),
		engine.WithBlockSize(a.cfg.Audio.BlockSize),
		engine.WithOutput(out),
		engine.WithRealtime(a.realtime),
	)
	slog.Debug("audio engine ready",
		"sample_rate", a.engine.SampleRate(),
		"block_size", a.engine.BlockSize(),
		"realtime", a.realtime,
	)
}

func (a *App) initDevice() {
	ch := a.providers.Channel
	if ch == nil {
		ch = device.NewLogChannel(slog.Default())
		a.providers.Channel = ch
	}
	a.forwarder = device.NewForwarder(ch,
		device.WithPace(a.cfg.Device.Pace),
		device.WithMetrics(a.metrics),
	)
}

func (a *App) initSpeech() {
	sc := a.cfg.Speech
	a.client = speech.NewClient(sc.ServerHost,
		resilience.CircuitBreakerConfig{
			Name:         "synth",
			MaxFailures:  sc.Breaker.MaxFailures,
			ResetTimeout: sc.Breaker.ResetTimeout,
		},
		speech.WithTimeout(sc.Timeout),
		speech.WithFallbackHosts(sc.FallbackHosts...),
		speech.WithClientMetrics(a.metrics),
	)
	a.pipeline = speech.New(a.client, a.engine,
		speech.WithResetter(a.forwarder),
		speech.WithMetrics(a.metrics),
	)

	// The pipeline resets the robot on close, so it goes before the channel.
	a.closers = append(a.closers, a.pipeline.Close, a.providers.Channel.Close, a.engine.Close)
}

// initRuntime creates the block runtime, attaches the extension and loads
// the saved project if one exists.
func (a *App) initRuntime(ctx context.Context) error {
	a.rt = host.NewRuntime()

	var nameOpts []langnames.Option
	if a.cfg.Speech.FuzzyLanguageNames {
		nameOpts = append(nameOpts, langnames.WithFuzzy())
	}
	extOpts := []extension.Option{extension.WithNameResolver(langnames.New(nameOpts...))}
	if loc := a.cfg.Speech.EditorLocale; loc != "" {
		extOpts = append(extOpts, extension.WithEditorLocale(loc))
	}
	a.ext = extension.New(a.rt, a.cfg.Speech.ServerHost, a.pipeline, a.forwarder, extOpts...)

	path := a.cfg.Server.ProjectPath
	if path == "" {
		return nil
	}
	switch err := a.rt.LoadProjectFile(path); {
	case errors.Is(err, os.ErrNotExist):
		observe.Logger(ctx).Info("no saved project yet", "path", path)
	case err != nil:
		return err
	default:
		observe.Logger(ctx).Info("loaded project", "path", path, "targets", len(a.rt.Targets()))
	}
	return nil
}

func (a *App) initAPI() {
	checkers := []health.Checker{{
		Name: "synth",
		Check: func(context.Context) error {
			if !a.client.Available() {
				return fmt.Errorf("%w: %v", ErrSynthUnavailable, a.client.HostStates())
			}
			return nil
		},
	}}
	if c, ok := a.providers.Channel.(device.Checker); ok {
		checkers = append(checkers, health.Checker{Name: "device", Check: c.Check, Optional: true})
	}

	a.handler = api.New(a.rt, a.ext,
		api.WithHealth(health.New(checkers...)),
		api.WithMetrics(a.metrics),
		api.WithCORSOrigins(a.cfg.Server.CORSOrigins...),
	).Handler()
}

// ─── Accessors ───────────────────────────────────────────────────────────────

// Runtime returns the block runtime.
func (a *App) Runtime() *host.Runtime { return a.rt }

// Extension returns the Ohbot extension.
func (a *App) Extension() *extension.Extension { return a.ext }

// Pipeline returns the speech pipeline.
func (a *App) Pipeline() *speech.Pipeline { return a.pipeline }

// Handler returns the HTTP API handler.
func (a *App) Handler() http.Handler { return a.handler }

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run serves the HTTP API on the configured address and blocks until ctx
// is cancelled or the server fails. When ctx is done, Run returns
// context.Canceled (or the underlying cause).
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.applyConfig, a.watchOpts...)
		if err != nil {
			slog.Warn("config watcher disabled", "path", a.configPath, "err", err)
		} else {
			defer w.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// applyConfig applies the hot-reloadable part of a config change and logs
// everything that needs a restart.
func (a *App) applyConfig(old, new *config.Config) {
	d := config.Diff(old, new)
	if d.EditorLocaleChanged {
		a.ext.SetEditorLocale(d.NewEditorLocale)
		slog.Info("editor locale changed", "locale", d.NewEditorLocale)
	}
	if d.LogLevelChanged && a.level != nil {
		a.level.Set(d.NewLogLevel.Level())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("config changes need a restart to take effect", "sections", d.RestartRequired)
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown saves the project (when a project path is configured) and tears
// down all subsystems in order. It respects the context deadline: if ctx
// expires before all closers finish, remaining closers are skipped and the
// context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		if path := a.cfg.Server.ProjectPath; path != "" {
			if err := a.saveProject(path); err != nil {
				slog.Warn("failed to save project", "path", path, "err", err)
			}
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

func (a *App) saveProject(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.rt.SaveProject(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
