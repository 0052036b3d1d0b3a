// Package speech turns block text into audible speech and a live lip signal.
//
// [RequestBuilder] resolves voice and language into a synthesis [Request].
// [Client] fetches the encoded clip from the synthesis service. [Pipeline]
// decodes the clip, normalises it against its own peak, plays it through
// the audio engine and follows its loudness frame by frame into a
// [LipSignal] until playback stops.
package speech

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/MrWong99/ohbot/pkg/catalog"
)

// MaxTextLength is the maximum number of UTF-16 code units sent to the
// synthesis service.
const MaxTextLength = 128

// ErrInvalidVoiceID is returned by [RequestBuilder.Build] for a voice id that
// is not in the catalog.
var ErrInvalidVoiceID = errors.New("speech: invalid voice id")

// Request is a resolved synthesis request.
type Request struct {
	// Path is the service-relative request, e.g.
	// "/synth?locale=en-GB&gender=female&text=hello".
	Path string

	// URL is Path on the primary synthesis host.
	URL string

	Locale       string
	Gender       catalog.Gender
	PlaybackRate float64

	// Text is the truncated, unescaped text.
	Text string
}

// RequestBuilder builds synthesis requests against one catalog.
type RequestBuilder struct {
	catalog    *catalog.Catalog
	serverHost string
}

// NewRequestBuilder returns a builder producing URLs on serverHost.
func NewRequestBuilder(c *catalog.Catalog, serverHost string) *RequestBuilder {
	return &RequestBuilder{catalog: c, serverHost: strings.TrimRight(serverHost, "/")}
}

// Build resolves voiceID and languageID into a [Request] for text.
// languageID is expected to be a resolved language id; an unknown id falls
// back to the catalog's default language.
func (b *RequestBuilder) Build(text, voiceID, languageID string) (Request, error) {
	voice, ok := b.catalog.ResolveVoice(voiceID)
	if !ok {
		return Request{}, fmt.Errorf("%w: %q", ErrInvalidVoiceID, voiceID)
	}
	lang, ok := b.catalog.Language(languageID)
	if !ok {
		lang = b.catalog.DefaultLanguage()
	}

	text = truncate(text, MaxTextLength)
	gender := catalog.EffectiveGender(voice, lang)
	path := "/synth?locale=" + lang.SynthLocale +
		"&gender=" + string(gender) +
		"&text=" + escapeComponent(text)

	return Request{
		Path:         path,
		URL:          b.serverHost + path,
		Locale:       lang.SynthLocale,
		Gender:       gender,
		PlaybackRate: catalog.EffectivePlaybackRate(voice, lang),
		Text:         text,
	}, nil
}

// truncate keeps the first n UTF-16 code units of s. A high surrogate left
// without its pair at the cut is dropped.
func truncate(s string, n int) string {
	units := utf16.Encode([]rune(s))
	if len(units) <= n {
		return s
	}
	units = units[:n]
	if last := rune(units[n-1]); utf16.IsSurrogate(last) && last < 0xDC00 {
		units = units[:n-1]
	}
	return string(utf16.Decode(units))
}

// escapeComponent percent-encodes s as a URI component. Unlike
// url.QueryEscape it keeps !'()*~ literal and encodes space as %20.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0F])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
