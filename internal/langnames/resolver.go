// Package langnames resolves free-form language names, such as a name held
// in a variable or reported by a translation block, to locale codes.
//
// By default Lookup is an exact match on the lower-cased, trimmed name, so an
// unsupported language is reported as unknown. [WithFuzzy] adds a second
// stage for misspellings: the Double Metaphone codes of the whole input and
// each whole known name are compared; among phonetic candidates the name
// with the highest Jaro-Winkler similarity wins if it reaches the phonetic
// threshold (default 0.70). Without any phonetic candidate, pure
// Jaro-Winkler similarity must reach the fuzzy threshold (default 0.90).
// Names are only ever compared whole; a single shared word never matches.
package langnames

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.90
)

// Option configures a [Resolver].
type Option func(*Resolver)

// WithNames adds name→locale entries, overriding built-in ones.
func WithNames(names map[string]string) Option {
	return func(r *Resolver) {
		for name, locale := range names {
			r.names[normalize(name)] = locale
		}
	}
}

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for a
// phonetically matching name. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(r *Resolver) { r.phoneticThreshold = threshold }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score when no name
// matches phonetically. Default: 0.90.
func WithFuzzyThreshold(threshold float64) Option {
	return func(r *Resolver) { r.fuzzyThreshold = threshold }
}

// WithFuzzy enables matching of misspelled names.
func WithFuzzy() Option {
	return func(r *Resolver) { r.fuzzy = true }
}

// Resolver is read-only after construction and safe for concurrent use.
type Resolver struct {
	names             map[string]string
	codes             map[string]map[string]struct{}
	phoneticThreshold float64
	fuzzyThreshold    float64
	fuzzy             bool
}

// New returns a Resolver over the built-in name table.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		names:             make(map[string]string, len(builtin)),
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for name, locale := range builtin {
		r.names[name] = locale
	}
	for _, o := range opts {
		o(r)
	}
	r.codes = make(map[string]map[string]struct{}, len(r.names))
	for name := range r.names {
		r.codes[name] = codesFor(name)
	}
	return r
}

// Lookup returns the locale for name.
func (r *Resolver) Lookup(name string) (string, bool) {
	key := normalize(name)
	if key == "" {
		return "", false
	}
	if locale, ok := r.names[key]; ok {
		return locale, true
	}
	if !r.fuzzy {
		return "", false
	}
	match, _, ok := r.closest(key)
	if !ok {
		return "", false
	}
	return r.names[match], true
}

// closest returns the known name most similar to key. Ties keep the
// lexically smaller name so results do not depend on map order.
func (r *Resolver) closest(key string) (string, float64, bool) {
	inputCodes := codesFor(key)

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)
	for name, nameCodes := range r.codes {
		score := matchr.JaroWinkler(key, name, false)
		phonetic := codesOverlap(inputCodes, nameCodes)

		switch {
		case phonetic && score >= r.phoneticThreshold:
			if !bestPhonetic || better(score, name, bestScore, best) {
				best, bestScore, bestPhonetic = name, score, true
			}
		case !phonetic && !bestPhonetic && score >= r.fuzzyThreshold:
			if better(score, name, bestScore, best) {
				best, bestScore = name, score
			}
		}
	}
	return best, bestScore, best != ""
}

func better(score float64, name string, bestScore float64, best string) bool {
	if best == "" || score > bestScore {
		return true
	}
	return score == bestScore && name < best
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// codesFor returns the Double Metaphone codes of s with spaces removed.
func codesFor(s string) map[string]struct{} {
	codes := make(map[string]struct{}, 2)
	p, sec := matchr.DoubleMetaphone(strings.Join(strings.Fields(s), ""))
	if p != "" {
		codes[p] = struct{}{}
	}
	if sec != "" {
		codes[sec] = struct{}{}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
