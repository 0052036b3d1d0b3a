// Package mock provides in-memory mock implementations of the [audio.Engine],
// [audio.Sound] and [audio.EffectChain] interfaces for use in unit tests.
//
// All mocks are safe for concurrent use. They record every method call so that
// tests can assert on call counts and arguments, and they expose exported fields
// that the test can set to control return values. Sounds never render on their
// own: tests drive playback with [Sound.Emit] and [Sound.Finish].
//
// Typical usage:
//
//	eng := &mock.Engine{DecodeResult: &audio.Buffer{SampleRate: 22050, Channels: [][]float32{{0.1, -0.5}}}}
//	s, _ := eng.NewSound(ctx, data)
//	s.Play()
//	eng.Sounds[0].Emit(audio.Frame{Samples: []float32{0.25}})
//	eng.Sounds[0].Finish()
package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrWong99/ohbot/pkg/audio"
)

// ─── Engine ──────────────────────────────────────────────────────────────────

// Engine is a mock implementation of [audio.Engine].
type Engine struct {
	mu sync.Mutex

	// DecodeResult is returned by Decode. Defaults to an empty mono buffer.
	DecodeResult *audio.Buffer

	// DecodeErr, if non-nil, is returned by Decode.
	DecodeErr error

	// NewSoundErr, if non-nil, is returned by NewSound.
	NewSoundErr error

	// DecodeBlock, if non-nil, makes Decode wait until it is closed or ctx
	// is done.
	DecodeBlock chan struct{}

	// DecodeCalls records the data passed to every Decode call.
	DecodeCalls [][]byte

	// NewSoundCalls records the data passed to every NewSound call.
	NewSoundCalls [][]byte

	// Sounds holds every sound created, in creation order.
	Sounds []*Sound

	// Chains holds every effect chain created, in creation order.
	Chains []*EffectChain

	// OnNewSound, if set, is called with each sound before NewSound returns.
	OnNewSound func(*Sound)
}

// Decode records the call and returns DecodeResult, DecodeErr.
func (e *Engine) Decode(ctx context.Context, data []byte) (*audio.Buffer, error) {
	e.mu.Lock()
	e.DecodeCalls = append(e.DecodeCalls, data)
	block := e.DecodeBlock
	e.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.DecodeErr != nil {
		return nil, e.DecodeErr
	}
	if e.DecodeResult == nil {
		return &audio.Buffer{SampleRate: 22050, Channels: [][]float32{{}}}, nil
	}
	return e.DecodeResult, nil
}

// NewSound records the call and returns a new [Sound].
func (e *Engine) NewSound(_ context.Context, data []byte) (audio.Sound, error) {
	e.mu.Lock()
	e.NewSoundCalls = append(e.NewSoundCalls, data)
	if e.NewSoundErr != nil {
		err := e.NewSoundErr
		e.mu.Unlock()
		return nil, err
	}
	s := &Sound{id: fmt.Sprintf("sound-%d", len(e.Sounds)+1), Rate: 1}
	e.Sounds = append(e.Sounds, s)
	hook := e.OnNewSound
	e.mu.Unlock()

	if hook != nil {
		hook(s)
	}
	return s, nil
}

// NewEffectChain returns a new [EffectChain] at volume 100.
func (e *Engine) NewEffectChain() audio.EffectChain {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := &EffectChain{volume: 100}
	e.Chains = append(e.Chains, c)
	return c
}

// DecodeCount returns the number of Decode calls so far.
func (e *Engine) DecodeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.DecodeCalls)
}

// SoundCount returns the number of sounds created so far.
func (e *Engine) SoundCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Sounds)
}

// Sound returns the i-th created sound, or nil.
func (e *Engine) Sound(i int) *Sound {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.Sounds) {
		return nil
	}
	return e.Sounds[i]
}

// ─── Sound ───────────────────────────────────────────────────────────────────

// ErrAlreadyPlayed is returned by Sound.Play when called twice.
var ErrAlreadyPlayed = errors.New("mock: sound already played")

// Sound is a mock implementation of [audio.Sound].
type Sound struct {
	mu sync.Mutex
	id string

	// Rate is the last playback rate set.
	Rate float64

	// Chain is the effect chain passed to Connect.
	Chain audio.EffectChain

	// Played reports whether Play was called.
	Played bool

	// StopCalls counts Stop invocations.
	StopCalls int

	stopped bool
	onStop  []func()

	// deliverMu is held while subscribers run.
	deliverMu sync.Mutex
	subs      map[int]func(audio.Frame)
	nextSub   int
}

// ID returns the sound id.
func (s *Sound) ID() string { return s.id }

// SetPlaybackRate records rate.
func (s *Sound) SetPlaybackRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rate = rate
}

// Connect records chain.
func (s *Sound) Connect(chain audio.EffectChain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Chain = chain
}

// Subscribe registers fn for frames passed to [Sound.Emit].
func (s *Sound) Subscribe(fn func(audio.Frame)) audio.Subscription {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(audio.Frame))
	}
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return &subscription{s: s, id: id}
}

// OnStop registers fn; it runs on [Sound.Finish] or [Sound.Stop].
func (s *Sound) OnStop(fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		fn()
		return
	}
	s.onStop = append(s.onStop, fn)
	s.mu.Unlock()
}

// Play marks the sound as playing.
func (s *Sound) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Played {
		return ErrAlreadyPlayed
	}
	s.Played = true
	return nil
}

// Stop records the call and ends playback like a real engine would.
func (s *Sound) Stop() {
	s.mu.Lock()
	s.StopCalls++
	s.mu.Unlock()
	s.Finish()
}

// Emit delivers f to every current subscriber, as the engine clock would.
// Frames emitted after the sound stopped still reach subscribers that have
// not cancelled, so tests can check that cleanup detached them.
func (s *Sound) Emit(f audio.Frame) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	for _, fn := range s.subs {
		fn(f)
	}
}

// Finish simulates natural end of playback. Stop handlers run once.
func (s *Sound) Finish() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	handlers := s.onStop
	s.onStop = nil
	s.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Sound) Subscribers() int {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	return len(s.subs)
}

// IsPlayed reports whether Play was called.
func (s *Sound) IsPlayed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Played
}

// PlaybackRate returns the last rate set.
func (s *Sound) PlaybackRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Rate
}

// Stops returns the number of Stop calls.
func (s *Sound) Stops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.StopCalls
}

// ConnectedChain returns the chain passed to Connect.
func (s *Sound) ConnectedChain() audio.EffectChain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Chain
}

type subscription struct {
	s    *Sound
	id   int
	once sync.Once
}

func (sub *subscription) Cancel() {
	sub.once.Do(func() {
		sub.s.deliverMu.Lock()
		defer sub.s.deliverMu.Unlock()
		delete(sub.s.subs, sub.id)
	})
}

// ─── EffectChain ─────────────────────────────────────────────────────────────

// EffectChain is a mock implementation of [audio.EffectChain].
type EffectChain struct {
	mu     sync.Mutex
	volume float64
}

// SetVolume records percent.
func (c *EffectChain) SetVolume(percent float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = percent
}

// Volume returns the last volume set.
func (c *EffectChain) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}
