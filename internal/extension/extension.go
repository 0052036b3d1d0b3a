// Package extension implements the Ohbot block set: robot motor and colour
// commands, speech with live lip-sync values, and per-sprite voice and
// project-wide language selection.
//
// An [Extension] is attached to a [host.Runtime]. It registers a clone hook
// (so cloned sprites keep their voice), a stop-all hook (so the red stop
// button silences speech and resets the robot) and a decoder for its saved
// custom state.
package extension

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/MrWong99/ohbot/internal/device"
	"github.com/MrWong99/ohbot/internal/host"
	"github.com/MrWong99/ohbot/internal/speech"
	"github.com/MrWong99/ohbot/pkg/catalog"
)

// ID is the extension id reported in [Info].
const ID = "ohbot"

// Speaker runs speech invocations. [speech.Pipeline] implements it.
type Speaker interface {
	// Speak starts one invocation and returns a channel closed when it ends.
	Speak(ctx context.Context, req speech.Request) <-chan struct{}

	// StopAll ends every invocation and resets the robot.
	StopAll(ctx context.Context)

	// Lip returns the shared lip signal.
	Lip() *speech.LipSignal
}

// Commander sends paced device commands. [device.Forwarder] implements it.
type Commander interface {
	Run(ctx context.Context, cmd device.Command) error
}

// NameResolver maps a free-form language name to a locale.
// [langnames.Resolver] implements it.
type NameResolver interface {
	Lookup(name string) (string, bool)
}

// Option configures an [Extension].
type Option func(*Extension)

// WithCatalog replaces [catalog.Default].
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Extension) { e.catalog = c }
}

// WithNameResolver enables language lookups by name.
func WithNameResolver(r NameResolver) Option {
	return func(e *Extension) { e.names = r }
}

// WithEditorLocale sets the locale used to initialise the speech language.
// Without it the LANG environment variable is used.
func WithEditorLocale(locale string) Option {
	return func(e *Extension) { e.editorLocale = locale }
}

// Extension is safe for concurrent use.
type Extension struct {
	rt        *host.Runtime
	catalog   *catalog.Catalog
	builder   *speech.RequestBuilder
	speaker   Speaker
	commander Commander
	names     NameResolver

	mu           sync.RWMutex
	editorLocale string
}

// New attaches an extension to rt. Speech requests go to serverHost.
func New(rt *host.Runtime, serverHost string, sp Speaker, cmd Commander, opts ...Option) *Extension {
	e := &Extension{
		rt:        rt,
		catalog:   catalog.Default(),
		speaker:   sp,
		commander: cmd,
	}
	for _, o := range opts {
		o(e)
	}
	if e.editorLocale == "" {
		e.editorLocale = localeFromEnv(os.Getenv("LANG"))
	}
	e.builder = speech.NewRequestBuilder(e.catalog, serverHost)

	rt.RegisterState(StateKey, decodeVoiceState)
	rt.OnClone(e.onClone)
	rt.OnStopAll(e.stopAll)
	return e
}

// SetEditorLocale replaces the editor locale. It only affects projects
// whose stage language is still unset.
func (e *Extension) SetEditorLocale(locale string) {
	e.mu.Lock()
	e.editorLocale = locale
	e.mu.Unlock()
}

// Catalog returns the voice and language tables in use.
func (e *Extension) Catalog() *catalog.Catalog { return e.catalog }

// Reset stops all speech and resets the robot. It does not wait for the
// device pacing delay.
func (e *Extension) Reset(ctx context.Context) {
	e.stopAll(ctx)
}

// GetLip returns the current lip value.
func (e *Extension) GetLip() float64 {
	return e.speaker.Lip().Value()
}

func (e *Extension) stopAll(ctx context.Context) {
	e.speaker.StopAll(ctx)
}

// localeFromEnv turns a POSIX locale such as "en_US.UTF-8" into "en-us".
func localeFromEnv(lang string) string {
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "C" || lang == "POSIX" {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(lang, "_", "-"))
}
