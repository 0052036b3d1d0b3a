// Package engine is a software implementation of [audio.Engine].
//
// Sounds are rendered block by block on their own goroutine, paced by a
// wall-clock ticker so that subscribers observe frames at the rate a sound
// card would consume them. Each block is delivered to subscribers before
// the effect chain gain is applied, then written to the engine [Output].
//
// Typical usage:
//
//	e := engine.New(engine.WithOutput(engine.NewPCMOutput(f)))
//	s, err := e.NewSound(ctx, mp3Bytes)
//	s.Connect(e.NewEffectChain())
//	s.Play()
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MrWong99/ohbot/pkg/audio"
	"github.com/MrWong99/ohbot/pkg/audio/decode"
)

// Compile-time interface assertion.
var _ audio.Engine = (*Engine)(nil)

const (
	defaultSampleRate = 22050
	defaultBlockSize  = 1024
)

// Option is a functional option for configuring an [Engine].
type Option func(*Engine)

// WithSampleRate sets the rendering sample rate. Decoded clips are resampled
// to it. Default: 22050 Hz.
func WithSampleRate(rate int) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.sampleRate = rate
		}
	}
}

// WithBlockSize sets the number of samples per rendered frame. Default: 1024.
func WithBlockSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.blockSize = n
		}
	}
}

// WithRealtime controls whether rendering is paced by the wall clock.
// Disabling it renders as fast as possible, which is useful in tests and
// for offline rendering. Default: true.
func WithRealtime(realtime bool) Option {
	return func(e *Engine) {
		e.realtime = realtime
	}
}

// WithOutput sets where rendered audio is written. Default: [Discard].
func WithOutput(out Output) Option {
	return func(e *Engine) {
		if out != nil {
			e.out = out
		}
	}
}

// Engine renders sounds in software. It is safe for concurrent use.
type Engine struct {
	sampleRate int
	blockSize  int
	realtime   bool
	out        Output

	// outMu serialises writes from concurrently playing sounds.
	outMu sync.Mutex
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		sampleRate: defaultSampleRate,
		blockSize:  defaultBlockSize,
		realtime:   true,
		out:        Discard,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SampleRate returns the rendering sample rate.
func (e *Engine) SampleRate() int { return e.sampleRate }

// BlockSize returns the number of samples per frame.
func (e *Engine) BlockSize() int { return e.blockSize }

// Decode decodes data and resamples it to the engine rate.
func (e *Engine) Decode(ctx context.Context, data []byte) (*audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf, err := decode.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if buf.SampleRate != e.sampleRate {
		slog.Debug("engine: resampling decoded clip", "clip", buf.String(), "rate", e.sampleRate)
	}
	return audio.ResampleBuffer(buf, e.sampleRate), nil
}

// NewSound decodes data into a new, stopped sound.
func (e *Engine) NewSound(ctx context.Context, data []byte) (audio.Sound, error) {
	buf, err := e.Decode(ctx, data)
	if err != nil {
		return nil, err
	}
	return newSound(e, buf), nil
}

// NewEffectChain returns a chain at nominal volume.
func (e *Engine) NewEffectChain() audio.EffectChain {
	return &effectChain{volume: 100}
}

// Close releases the engine output.
func (e *Engine) Close() error {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	return e.out.Close()
}

func (e *Engine) write(samples []float32) {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	if err := e.out.Write(samples, e.sampleRate); err != nil {
		slog.Warn("engine: output write failed", "err", err)
	}
}

// effectChain applies a fixed gain.
type effectChain struct {
	mu     sync.Mutex
	volume float64
}

func (c *effectChain) SetVolume(percent float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = max(percent, 0)
}

func (c *effectChain) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}
