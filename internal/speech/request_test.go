package speech

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/MrWong99/ohbot/pkg/catalog"
)

func newBuilder() *RequestBuilder {
	return NewRequestBuilder(catalog.Default(), "https://synth.example.com/")
}

func TestBuild_URL(t *testing.T) {
	req, err := newBuilder().Build("hello world", catalog.Alto, "de")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "https://synth.example.com/synth?locale=de-DE&gender=female&text=hello%20world"
	if req.URL != want {
		t.Errorf("URL = %q, want %q", req.URL, want)
	}
	if req.Path != "/synth?locale=de-DE&gender=female&text=hello%20world" {
		t.Errorf("Path = %q", req.Path)
	}
	if req.PlaybackRate != 1 {
		t.Errorf("PlaybackRate = %v, want 1", req.PlaybackRate)
	}
}

func TestBuild_SingleGenderSubstitution(t *testing.T) {
	tests := []struct {
		voice      string
		wantGender catalog.Gender
		wantRate   float64
	}{
		{catalog.Tenor, catalog.Female, 0.89},
		{catalog.Giant, catalog.Female, 0.79},
		{catalog.Alto, catalog.Female, 1},
		{catalog.Squeak, catalog.Female, 1.19},
	}
	for _, tt := range tests {
		t.Run(tt.voice, func(t *testing.T) {
			// Korean only offers a female voice bank.
			req, err := newBuilder().Build("hi", tt.voice, "ko")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if req.Gender != tt.wantGender {
				t.Errorf("Gender = %q, want %q", req.Gender, tt.wantGender)
			}
			if req.PlaybackRate != tt.wantRate {
				t.Errorf("PlaybackRate = %v, want %v", req.PlaybackRate, tt.wantRate)
			}
			if req.Locale != "ko-KR" {
				t.Errorf("Locale = %q, want ko-KR", req.Locale)
			}
		})
	}
}

func TestBuild_TwoGenderLanguageKeepsVoice(t *testing.T) {
	req, err := newBuilder().Build("hi", catalog.Giant, "fr")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Gender != catalog.Male || req.PlaybackRate != 0.84 {
		t.Errorf("giant on fr = (%q, %v), want (male, 0.84)", req.Gender, req.PlaybackRate)
	}
}

func TestBuild_TruncatesTo128(t *testing.T) {
	input := strings.Repeat("abcdefghij", 20) // 200 characters
	req, err := newBuilder().Build(input, catalog.Alto, "en")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	got := u.Query().Get("text")
	if got != input[:128] {
		t.Errorf("decoded text = %q (%d chars), want first 128 chars", got, len(got))
	}
	if req.Text != input[:128] {
		t.Errorf("Text = %q", req.Text)
	}
}

func TestBuild_InvalidVoice(t *testing.T) {
	_, err := newBuilder().Build("hi", "BARITONE", "en")
	if !errors.Is(err, ErrInvalidVoiceID) {
		t.Errorf("err = %v, want ErrInvalidVoiceID", err)
	}
}

func TestBuild_UnknownLanguageUsesDefault(t *testing.T) {
	req, err := newBuilder().Build("hi", catalog.Alto, "tlh")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Locale != "en-GB" {
		t.Errorf("Locale = %q, want en-GB", req.Locale)
	}
}

func TestEscapeComponent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"a b", "a%20b"},
		{"it's (fun)!*~", "it's%20(fun)!*~"},
		{"a&b=c?d/e#f+g", "a%26b%3Dc%3Fd%2Fe%23f%2Bg"},
		{"ü", "%C3%BC"},
		{"日本", "%E6%97%A5%E6%9C%AC"},
		{"😀", "%F0%9F%98%80"},
		{"-_.", "-_."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := escapeComponent(tt.in); got != tt.want {
				t.Errorf("escapeComponent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		n         int
		wantUnits int
	}{
		{"short", "abc", 128, 3},
		{"exact", strings.Repeat("x", 128), 128, 128},
		{"bmp", strings.Repeat("ü", 130), 128, 128},
		// 127 ASCII + emoji: the cut lands between the surrogate halves.
		{"split pair", strings.Repeat("a", 127) + "😀", 128, 127},
		{"whole pair", strings.Repeat("a", 126) + "😀", 128, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if units := len(utf16.Encode([]rune(got))); units != tt.wantUnits {
				t.Errorf("truncate() has %d UTF-16 units, want %d", units, tt.wantUnits)
			}
			if !strings.HasPrefix(tt.in, got) {
				t.Errorf("truncate() = %q is not a prefix of the input", got)
			}
		})
	}
}
