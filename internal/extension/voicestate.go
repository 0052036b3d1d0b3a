package extension

import (
	"context"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/ohbot/internal/observe"
	"github.com/MrWong99/ohbot/pkg/catalog"
)

// StateKey is the custom-state key under which each sprite keeps its
// [VoiceState].
const StateKey = "Scratch.ohbot"

// VoiceState is the per-sprite speech settings. Stored values are never
// mutated; every change stores a fresh copy.
type VoiceState struct {
	VoiceID string `yaml:"voiceId" json:"voiceId"`
}

func decodeVoiceState(node *yaml.Node) (any, error) {
	var s VoiceState
	if err := node.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// VoiceID returns the voice of target, creating the default state on first
// access.
func (e *Extension) VoiceID(targetID string) (string, error) {
	s, err := e.voiceState(targetID)
	if err != nil {
		return "", err
	}
	return s.VoiceID, nil
}

func (e *Extension) voiceState(targetID string) (VoiceState, error) {
	v, err := e.rt.UpdateCustomState(targetID, StateKey, func(cur any, ok bool) any {
		if s, isState := cur.(*VoiceState); ok && isState {
			return s
		}
		return &VoiceState{VoiceID: catalog.Alto}
	})
	if err != nil {
		return VoiceState{}, err
	}
	return *v.(*VoiceState), nil
}

// SetVoice selects the voice of target. voice is either a voice id or a
// 1-based index into the voice list; indices wrap around in both
// directions. Anything else leaves the voice unchanged.
func (e *Extension) SetVoice(targetID, voice string) error {
	if n, ok := parseLeadingInt(voice); ok {
		count := len(e.catalog.Voices())
		if v, ok := e.catalog.VoiceAt(wrapClamp(n-1, count)); ok {
			voice = v.ID
		}
	}
	if _, ok := e.catalog.ResolveVoice(voice); !ok {
		return nil
	}
	_, err := e.rt.UpdateCustomState(targetID, StateKey, func(any, bool) any {
		return &VoiceState{VoiceID: voice}
	})
	return err
}

// onClone copies the source's voice state to the clone. A source that never
// touched speech has no state, and neither will the clone.
func (e *Extension) onClone(ctx context.Context, clone, source string) {
	v, ok, err := e.rt.CustomState(source, StateKey)
	if err != nil || !ok {
		return
	}
	s, isState := v.(*VoiceState)
	if !isState {
		return
	}
	cp := *s
	if err := e.rt.SetCustomState(clone, StateKey, &cp); err != nil {
		observe.ComponentLogger(ctx, "extension").Warn("voice state not cloned", "clone", clone, "err", err)
	}
}

// wrapClamp maps n into [0, count) wrapping around at both ends.
func wrapClamp(n, count int) int {
	if count <= 0 {
		return 0
	}
	return ((n % count) + count) % count
}

// parseLeadingInt parses an optionally signed decimal integer at the start
// of s, after leading white space, ignoring anything that follows it.
// "3 voices" yields 3; "x3" yields no number.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '\uFEFF' })
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		// Saturates instead of overflowing.
		if n < 1<<40 {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
