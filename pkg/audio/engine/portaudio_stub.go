//go:build !portaudio

package engine

import "errors"

// PortAudioAvailable reports whether this binary was built with speaker
// output support.
const PortAudioAvailable = false

// ErrNoPortAudio is returned when speaker output is requested from a binary
// built without the portaudio build tag.
var ErrNoPortAudio = errors.New("engine: built without portaudio support (rebuild with -tags portaudio)")

// NewPortAudioOutput always fails in builds without the portaudio tag.
func NewPortAudioOutput(sampleRate, blockSize int) (Output, error) {
	return nil, ErrNoPortAudio
}
