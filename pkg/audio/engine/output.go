package engine

import (
	"fmt"
	"io"
	"sync"

	"github.com/MrWong99/ohbot/pkg/audio"
)

// Output consumes rendered mono audio.
type Output interface {
	// Write receives one rendered block. samples must not be retained.
	Write(samples []float32, sampleRate int) error
	Close() error
}

// Discard is an [Output] that drops all audio.
var Discard Output = discard{}

type discard struct{}

func (discard) Write([]float32, int) error { return nil }
func (discard) Close() error               { return nil }

// PCMOutput writes raw little-endian signed 16-bit mono PCM to a writer,
// suitable for piping into `aplay -f S16_LE` or `ffplay -f s16le`.
type PCMOutput struct {
	mu     sync.Mutex
	w      io.Writer
	rate   int
	frames int64
}

// NewPCMOutput returns an Output writing to w. If w is an io.Closer it is
// closed by Close.
func NewPCMOutput(w io.Writer) *PCMOutput {
	return &PCMOutput{w: w}
}

// Write encodes samples and writes them. All writes must share a sample rate.
func (o *PCMOutput) Write(samples []float32, sampleRate int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.rate == 0 {
		o.rate = sampleRate
	} else if o.rate != sampleRate {
		return fmt.Errorf("engine: pcm output: sample rate changed from %d to %d", o.rate, sampleRate)
	}
	if _, err := o.w.Write(audio.FloatToPCM16(samples)); err != nil {
		return fmt.Errorf("engine: pcm output: %w", err)
	}
	o.frames += int64(len(samples))
	return nil
}

// Frames returns the number of samples written so far.
func (o *PCMOutput) Frames() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frames
}

// Close closes the underlying writer when it implements io.Closer.
func (o *PCMOutput) Close() error {
	if c, ok := o.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
