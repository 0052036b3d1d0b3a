package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrWong99/ohbot/pkg/audio"
)

// ErrAlreadyPlayed is returned by Play on a sound that was played or stopped.
var ErrAlreadyPlayed = errors.New("engine: sound already played")

// Compile-time interface assertion.
var _ audio.Sound = (*sound)(nil)

// sound renders channel 0 of its buffer. Subscribers and the output see the
// same signal; the output additionally has the chain gain applied.
type sound struct {
	id      string
	e       *Engine
	samples []float32

	mu       sync.Mutex
	rate     float64
	chain    audio.EffectChain
	started  bool
	finished bool
	onStop   []func()

	stopCh   chan struct{}
	stopOnce sync.Once

	// subMu is held while subscribers run so that Cancel can wait for an
	// in-flight delivery.
	subMu   sync.Mutex
	subs    map[uint64]func(audio.Frame)
	nextSub uint64
}

func newSound(e *Engine, buf *audio.Buffer) *sound {
	return &sound{
		id:      uuid.NewString(),
		e:       e,
		samples: buf.ChannelData(0),
		rate:    1,
		stopCh:  make(chan struct{}),
		subs:    make(map[uint64]func(audio.Frame)),
	}
}

func (s *sound) ID() string { return s.id }

func (s *sound) SetPlaybackRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
}

func (s *sound) Connect(chain audio.EffectChain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain = chain
}

func (s *sound) Subscribe(fn func(audio.Frame)) audio.Subscription {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return &subscription{s: s, id: id}
}

func (s *sound) OnStop(fn func()) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		fn()
		return
	}
	s.onStop = append(s.onStop, fn)
	s.mu.Unlock()
}

func (s *sound) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyPlayed
	}
	s.started = true
	go s.run()
	return nil
}

func (s *sound) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	// Never played: there is no render goroutine to run the stop handlers.
	s.started = true
	s.mu.Unlock()
	s.finish()
}

// run renders blocks until the clip ends or Stop is called.
func (s *sound) run() {
	defer s.finish()

	sr := s.e.sampleRate
	bs := s.e.blockSize
	blockDur := time.Duration(bs) * time.Second / time.Duration(sr)

	var tick <-chan time.Time
	if s.e.realtime {
		t := time.NewTicker(blockDur)
		defer t.Stop()
		tick = t.C
	}

	n := float64(len(s.samples))
	var pos float64
	var ts time.Duration
	for pos < n {
		if tick != nil {
			select {
			case <-s.stopCh:
				return
			case <-tick:
			}
		} else {
			select {
			case <-s.stopCh:
				return
			default:
			}
		}

		rate, gain := s.params()
		block := make([]float32, 0, bs)
		for len(block) < bs && pos < n {
			block = append(block, audio.Interpolate(s.samples, pos))
			pos += rate
		}

		s.deliver(audio.Frame{Samples: block, SampleRate: sr, Timestamp: ts})
		s.e.write(applyGain(block, gain))
		ts += blockDur
	}
}

func (s *sound) params() (rate, gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gain = 1
	if s.chain != nil {
		gain = s.chain.Volume() / 100
	}
	return s.rate, gain
}

func (s *sound) deliver(f audio.Frame) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, fn := range s.subs {
		fn(f)
	}
}

// finish marks the sound stopped and runs the stop handlers once.
func (s *sound) finish() {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	handlers := s.onStop
	s.onStop = nil
	s.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

func applyGain(block []float32, gain float64) []float32 {
	out := make([]float32, len(block))
	g := float32(gain)
	for i, v := range block {
		out[i] = v * g
	}
	return out
}

type subscription struct {
	s    *sound
	id   uint64
	once sync.Once
}

func (sub *subscription) Cancel() {
	sub.once.Do(func() {
		sub.s.subMu.Lock()
		defer sub.s.subMu.Unlock()
		delete(sub.s.subs, sub.id)
	})
}
