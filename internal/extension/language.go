package extension

import (
	"strings"

	"github.com/MrWong99/ohbot/pkg/catalog"
)

// EditorLanguage returns the lower-cased locale of the editor, or the
// default language when none is known.
func (e *Extension) EditorLanguage() string {
	e.mu.RLock()
	locale := e.editorLocale
	e.mu.RUnlock()
	if locale == "" {
		return catalog.DefaultLanguage
	}
	return strings.ToLower(locale)
}

// CurrentLanguage returns the speech language id stored on the stage. When
// unset it is initialised from the editor locale first.
func (e *Extension) CurrentLanguage() string {
	if lang := e.rt.Language(); lang != "" {
		return lang
	}
	return e.SetLanguage(e.EditorLanguage())
}

// SetLanguage stores the language matching locale on the stage and returns
// its id. locale is resolved as an alias, then as a language name, and
// falls back to the default language.
func (e *Extension) SetLanguage(locale string) string {
	id := e.resolveLanguage(locale)
	e.rt.SetLanguage(id)
	return id
}

func (e *Extension) resolveLanguage(locale string) string {
	if l, ok := e.catalog.ResolveLanguage(locale); ok {
		return l.ID
	}
	if e.names != nil {
		if named, ok := e.names.Lookup(locale); ok {
			if l, ok := e.catalog.ResolveLanguage(named); ok {
				return l.ID
			}
		}
	}
	return e.catalog.DefaultLanguage().ID
}
