package speech

import (
	"bytes"
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/ohbot/internal/observe"
	"github.com/MrWong99/ohbot/pkg/audio"
)

// BoostVolume is the effect-chain volume, in percent, applied to speech.
const BoostVolume = 250

// State is the lifecycle state of one speak invocation.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateDecoding
	StateNormalizing
	StatePlaying
	StateStopped
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateDecoding:
		return "decoding"
	case StateNormalizing:
		return "normalizing"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Resetter sends the device reset issued by [Pipeline.StopAll].
type Resetter interface {
	Reset(ctx context.Context)
}

// StateHook observes every state transition of every invocation.
type StateHook func(invocationID string, s State)

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithResetter makes StopAll reset the robot through r.
func WithResetter(r Resetter) Option {
	return func(p *Pipeline) { p.resetter = r }
}

// WithMetrics records pipeline metrics to m.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithStateHook registers h for state transitions.
func WithStateHook(h StateHook) Option {
	return func(p *Pipeline) { p.hook = h }
}

// WithLipSignal shares an existing signal instead of creating one.
func WithLipSignal(l *LipSignal) Option {
	return func(p *Pipeline) { p.lip = l }
}

// WithVolume overrides [BoostVolume].
func WithVolume(percent float64) Option {
	return func(p *Pipeline) { p.volume = percent }
}

// Pipeline runs speak invocations. Any number of invocations may run at
// once; they share one [LipSignal].
//
// All methods are safe for concurrent use.
type Pipeline struct {
	fetcher  Fetcher
	engine   audio.Engine
	lip      *LipSignal
	resetter Resetter
	metrics  *observe.Metrics
	hook     StateHook
	volume   float64

	mu       sync.Mutex
	sessions map[string]*session
	// gen is cancelled by StopAll; invocations that have not started
	// playing yet abort when their generation ends.
	gen       context.Context
	cancelGen context.CancelFunc

	wg sync.WaitGroup
}

// New creates a Pipeline fetching with f and playing through e.
func New(f Fetcher, e audio.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:  f,
		engine:   e,
		volume:   BoostVolume,
		sessions: make(map[string]*session),
	}
	p.gen, p.cancelGen = context.WithCancel(context.Background())
	for _, o := range opts {
		o(p)
	}
	if p.lip == nil {
		p.lip = NewLipSignal()
	}
	return p
}

// Lip returns the shared lip signal.
func (p *Pipeline) Lip() *LipSignal { return p.lip }

// ActiveSessions returns the number of sessions currently playing.
func (p *Pipeline) ActiveSessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Speak starts one invocation for req and returns a channel closed when it
// reaches [StateStopped]. Failures are logged and never reported to the
// caller. The invocation outlives ctx; only [Pipeline.StopAll] ends it early.
func (p *Pipeline) Speak(ctx context.Context, req Request) <-chan struct{} {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stopWatch := context.AfterFunc(gen, cancel)

	done := make(chan struct{})
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(done)
		defer cancel()
		defer stopWatch()
		p.run(runCtx, gen, req)
	}()
	return done
}

// Wait blocks until every invocation started so far has stopped.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// StopAll stops every invocation, including those still fetching or
// decoding, then resets the device. When StopAll returns, no session will
// write the lip signal again. It is safe to call at any time.
func (p *Pipeline) StopAll(ctx context.Context) {
	p.mu.Lock()
	p.cancelGen()
	p.gen, p.cancelGen = context.WithCancel(context.Background())
	sessions := slices.Collect(maps.Values(p.sessions))
	p.mu.Unlock()

	for _, s := range sessions {
		s.halt(true)
	}
	p.lip.Reset()
	if p.resetter != nil {
		p.resetter.Reset(ctx)
	}
}

// Close stops everything and waits for background invocations.
func (p *Pipeline) Close() error {
	p.StopAll(context.Background())
	p.Wait()
	return nil
}

func (p *Pipeline) run(ctx context.Context, gen context.Context, req Request) {
	id := uuid.NewString()
	log := observe.ComponentLogger(ctx, "speech").With(slog.String("invocation", id))
	ctx, span := observe.StartSpan(ctx, "speech.speak",
		trace.WithAttributes(
			attribute.String("speech.invocation", id),
			attribute.String("speech.locale", req.Locale),
			attribute.Float64("speech.playback_rate", req.PlaybackRate),
		),
	)
	defer span.End()

	status := observe.SpeechPlayed
	defer func() {
		p.setState(id, StateStopped)
		if p.metrics != nil {
			p.metrics.RecordSpeechRequest(ctx, status)
		}
	}()
	fail := func(st, msg string, err error) {
		if gen.Err() != nil {
			status = observe.SpeechCancelled
			log.Debug("speech stopped before playback", "stage", msg)
			return
		}
		status = st
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		log.Warn("speech "+msg, "url", req.URL, "err", err)
	}

	p.setState(id, StateRequesting)
	data, err := p.fetcher.Fetch(ctx, req)
	if err != nil {
		fail(observe.SpeechFetchFailed, "request failed", err)
		return
	}

	p.setState(id, StateDecoding)
	// Decode may consume its input; the sound needs its own copy.
	raw := bytes.Clone(data)
	start := time.Now()
	buf, err := p.engine.Decode(ctx, data)
	if err != nil {
		fail(observe.SpeechDecodeError, "decode failed", err)
		return
	}

	p.setState(id, StateNormalizing)
	peak := PeakAmplitude(buf.ChannelData(0))
	if p.metrics != nil {
		p.metrics.DecodeDuration.Record(ctx, time.Since(start).Seconds())
	}

	snd, err := p.engine.NewSound(ctx, raw)
	if err != nil {
		fail(observe.SpeechDecodeError, "sound creation failed", err)
		return
	}

	s := newSession(p, snd, peak)
	if !p.register(gen, s) {
		status = observe.SpeechCancelled
		snd.Stop()
		return
	}
	p.setState(id, StatePlaying)

	snd.SetPlaybackRate(req.PlaybackRate)
	chain := p.engine.NewEffectChain()
	chain.SetVolume(p.volume)
	snd.Connect(chain)
	s.attach(snd.Subscribe(s.onFrame))
	snd.OnStop(func() { s.halt(false) })

	playStart := time.Now()
	if err := snd.Play(); err != nil {
		log.Debug("sound did not start", "err", err)
		s.halt(false)
	}
	<-s.done

	if p.metrics != nil {
		p.metrics.PlaybackDuration.Record(ctx, time.Since(playStart).Seconds())
	}
	if s.forced() {
		status = observe.SpeechCancelled
	}
	log.Debug("speech finished", "peak", peak, "forced", s.forced())
}

// register adds s to the session map unless gen was stopped meanwhile.
func (p *Pipeline) register(gen context.Context, s *session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen.Err() != nil {
		return false
	}
	p.sessions[s.id] = s
	if p.metrics != nil {
		p.metrics.ActiveSpeech.Add(context.Background(), 1)
	}
	return true
}

func (p *Pipeline) remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[id]; !ok {
		return
	}
	delete(p.sessions, id)
	if p.metrics != nil {
		p.metrics.ActiveSpeech.Add(context.Background(), -1)
	}
}

func (p *Pipeline) setState(id string, s State) {
	if p.hook != nil {
		p.hook(id, s)
	}
}
