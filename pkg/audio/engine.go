// Package audio defines the audio engine abstractions used by the speech
// pipeline: decoding, playable sounds, effect chains and frame subscriptions.
//
// The primary abstractions are:
//
//   - [Engine] decodes encoded audio and creates [Sound] instances and
//     [EffectChain] stages.
//   - [Sound] is one playable instance with its own playback rate, output
//     chain, stop notification and a live frame tap ([Sound.Subscribe]).
//
// The software implementation lives in audio/engine; a test double lives in
// audio/mock. This package lives under pkg/ so other hosts can plug in their
// own engine.
package audio

import "context"

// Engine decodes audio and creates playable sounds.
type Engine interface {
	// Decode decodes an encoded clip (WAV or MP3) into a [Buffer] at the
	// engine's sample rate. Decode must not retain data.
	Decode(ctx context.Context, data []byte) (*Buffer, error)

	// NewSound decodes data and returns a stopped [Sound] ready to [Sound.Play].
	NewSound(ctx context.Context, data []byte) (Sound, error)

	// NewEffectChain returns a fresh effect chain at nominal volume (100).
	NewEffectChain() EffectChain
}

// Sound is a single playable instance of a decoded clip.
//
// All methods are safe for concurrent use.
type Sound interface {
	// ID uniquely identifies this instance within the engine.
	ID() string

	// SetPlaybackRate scales playback speed (and pitch). 1 is nominal.
	SetPlaybackRate(rate float64)

	// Connect routes the sound's output through chain. Subscribers see the
	// signal before the chain is applied.
	Connect(chain EffectChain)

	// Subscribe registers fn to receive every frame while the sound plays.
	// fn must not call Cancel on its own subscription.
	Subscribe(fn func(Frame)) Subscription

	// OnStop registers fn to run once when playback ends, either naturally
	// or through [Sound.Stop]. Handlers registered after the sound stopped
	// run immediately.
	OnStop(fn func())

	// Play starts playback. Calling Play twice returns an error.
	Play() error

	// Stop ends playback. It is idempotent and does not block.
	Stop()
}

// EffectChain is a post-processing stage applied to a sound's output.
type EffectChain interface {
	// SetVolume sets output gain in percent of nominal (100 = unchanged).
	SetVolume(percent float64)

	// Volume returns the current gain in percent.
	Volume() float64
}

// Subscription is a handle to a frame subscription.
type Subscription interface {
	// Cancel detaches the subscriber. When Cancel returns, the subscriber is
	// not running and will not be called again. Cancel is idempotent.
	Cancel()
}
