// Package catalog holds the static voice and language tables used for speech
// synthesis, together with the pure lookup functions over them.
//
// A [Catalog] is read-only after construction and safe for concurrent use.
// [Default] returns the built-in tables; [New] builds a catalog from custom
// tables and rejects language profiles whose locale aliases overlap.
package catalog

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAliasOverlap is returned by [New] when a locale alias is claimed by more
// than one language profile.
var ErrAliasOverlap = errors.New("catalog: locale alias claimed by more than one language")

// Gender is the acoustic gender requested from the synthesis service.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Voice identifiers.
const (
	Alto   = "ALTO"
	Tenor  = "TENOR"
	Squeak = "SQUEAK"
	Giant  = "GIANT"
)

// Playback rates substituted for the tenor and giant voices when a language
// only offers a female voice bank.
const (
	FemaleTenorRate = 0.89
	FemaleGiantRate = 0.79
)

// DefaultLanguage is the language id used whenever no other language resolves.
const DefaultLanguage = "en"

// VoiceProfile describes one selectable voice.
type VoiceProfile struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Gender       Gender  `json:"gender" yaml:"gender"`
	PlaybackRate float64 `json:"playbackRate" yaml:"playback_rate"`
}

// LanguageProfile describes one supported language and how the synthesis
// service spells it.
type LanguageProfile struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Locales     []string `json:"locales" yaml:"locales"`
	SynthLocale string   `json:"synthLocale" yaml:"synth_locale"`

	// SingleGender is true when the service only has a female voice for
	// this language.
	SingleGender bool `json:"singleGender,omitempty" yaml:"single_gender,omitempty"`
}

// Catalog is an immutable set of voice and language profiles.
type Catalog struct {
	voices    []VoiceProfile
	languages []LanguageProfile
	voiceIdx  map[string]int
	aliasIdx  map[string]int
	defLang   string
}

// New builds a Catalog. Voices keep the given order (it defines the 1-based
// voice index used by block arguments). Languages are resolved in the given
// order. It returns an error wrapping [ErrAliasOverlap] if any alias appears
// in two profiles, and an error if defaultLanguage is not one of the ids.
func New(voices []VoiceProfile, languages []LanguageProfile, defaultLanguage string) (*Catalog, error) {
	c := &Catalog{
		voices:    make([]VoiceProfile, len(voices)),
		languages: make([]LanguageProfile, len(languages)),
		voiceIdx:  make(map[string]int, len(voices)),
		aliasIdx:  make(map[string]int),
		defLang:   defaultLanguage,
	}
	copy(c.voices, voices)

	var errs []error
	for i, v := range voices {
		if v.ID == "" {
			errs = append(errs, fmt.Errorf("catalog: voices[%d].id is required", i))
			continue
		}
		if _, dup := c.voiceIdx[v.ID]; dup {
			errs = append(errs, fmt.Errorf("catalog: voice %q defined twice", v.ID))
			continue
		}
		if v.PlaybackRate <= 0 {
			errs = append(errs, fmt.Errorf("catalog: voice %q playback rate must be > 0", v.ID))
		}
		c.voiceIdx[v.ID] = i
	}

	for i, l := range languages {
		l.Locales = append([]string(nil), l.Locales...)
		c.languages[i] = l
		if len(l.Locales) == 0 {
			errs = append(errs, fmt.Errorf("catalog: language %q has no locale aliases", l.ID))
		}
		for _, alias := range l.Locales {
			if prev, ok := c.aliasIdx[alias]; ok {
				errs = append(errs, fmt.Errorf("%w: %q in %q and %q", ErrAliasOverlap, alias, languages[prev].ID, l.ID))
				continue
			}
			c.aliasIdx[alias] = i
		}
	}

	if _, ok := c.languageByID(defaultLanguage); !ok {
		errs = append(errs, fmt.Errorf("catalog: default language %q is not defined", defaultLanguage))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the built-in catalog. Panics if the built-in tables are
// inconsistent, which is a programming error.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		var err error
		defaultCatalog, err = New(builtinVoices, builtinLanguages, DefaultLanguage)
		if err != nil {
			panic("catalog: invalid built-in tables: " + err.Error())
		}
	})
	return defaultCatalog
}

// Voices returns the voice profiles in their fixed enumeration order.
func (c *Catalog) Voices() []VoiceProfile {
	out := make([]VoiceProfile, len(c.voices))
	copy(out, c.voices)
	return out
}

// Languages returns the language profiles in enumeration order.
func (c *Catalog) Languages() []LanguageProfile {
	out := make([]LanguageProfile, len(c.languages))
	copy(out, c.languages)
	return out
}

// DefaultLanguage returns the fallback language profile.
func (c *Catalog) DefaultLanguage() LanguageProfile {
	l, _ := c.languageByID(c.defLang)
	return l
}

// ResolveVoice looks up a voice by id.
func (c *Catalog) ResolveVoice(id string) (VoiceProfile, bool) {
	i, ok := c.voiceIdx[id]
	if !ok {
		return VoiceProfile{}, false
	}
	return c.voices[i], true
}

// VoiceAt returns the voice at the zero-based position i.
func (c *Catalog) VoiceAt(i int) (VoiceProfile, bool) {
	if i < 0 || i >= len(c.voices) {
		return VoiceProfile{}, false
	}
	return c.voices[i], true
}

// ResolveLanguage returns the first language whose alias set contains alias.
// Matching is exact and case-sensitive.
func (c *Catalog) ResolveLanguage(alias string) (LanguageProfile, bool) {
	i, ok := c.aliasIdx[alias]
	if !ok {
		return LanguageProfile{}, false
	}
	return c.languages[i], true
}

// Language looks up a language by its id rather than by alias.
func (c *Catalog) Language(id string) (LanguageProfile, bool) {
	return c.languageByID(id)
}

func (c *Catalog) languageByID(id string) (LanguageProfile, bool) {
	for _, l := range c.languages {
		if l.ID == id {
			return l, true
		}
	}
	return LanguageProfile{}, false
}

// EffectivePlaybackRate returns the rate a voice should play at for lang.
// On single-gender languages the tenor and giant voices are emulated by
// slowing down the female voice.
func EffectivePlaybackRate(voice VoiceProfile, lang LanguageProfile) float64 {
	if !lang.SingleGender {
		return voice.PlaybackRate
	}
	switch voice.ID {
	case Tenor:
		return FemaleTenorRate
	case Giant:
		return FemaleGiantRate
	}
	return voice.PlaybackRate
}

// EffectiveGender returns the gender to request from the synthesis service.
func EffectiveGender(voice VoiceProfile, lang LanguageProfile) Gender {
	if lang.SingleGender {
		return Female
	}
	return voice.Gender
}
