package speech

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/MrWong99/ohbot/pkg/audio"
)

// session is one playing clip. It owns its sound and frame subscription
// until halt releases them.
type session struct {
	id   string
	p    *Pipeline
	peak float64
	done chan struct{}

	mu      sync.Mutex
	sound   audio.Sound
	sub     audio.Subscription
	stopped bool
	force   bool
}

func newSession(p *Pipeline, snd audio.Sound, peak float64) *session {
	id := snd.ID()
	if id == "" {
		id = uuid.NewString()
	}
	return &session{
		id:    id,
		p:     p,
		peak:  peak,
		sound: snd,
		done:  make(chan struct{}),
	}
}

// attach hands the frame subscription to the session. A session halted
// before attach cancels it at once.
func (s *session) attach(sub audio.Subscription) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	s.sub = sub
	s.mu.Unlock()
}

// onFrame follows the loudness of one frame into the lip signal.
func (s *session) onFrame(f audio.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.p.lip.store(LipLevel(framePeak(f.Samples), s.peak))
	if s.p.metrics != nil {
		s.p.metrics.LipUpdates.Add(context.Background(), 1)
	}
}

// halt moves the session to stopped: detach the analyzer, stop the sound,
// drop the session from the pipeline and put the lip signal at rest. Only
// the first call has an effect; later calls return immediately.
func (s *session) halt(forced bool) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.force = forced
	sub, snd := s.sub, s.sound
	s.sub, s.sound = nil, nil
	s.mu.Unlock()

	// Cancel waits for an in-flight onFrame, so nothing writes the lip
	// signal after this point.
	if sub != nil {
		sub.Cancel()
	}
	if snd != nil {
		snd.Stop()
	}
	s.p.remove(s.id)
	s.p.lip.Reset()
	close(s.done)
}

func (s *session) forced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.force
}
