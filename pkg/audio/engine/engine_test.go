package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrWong99/ohbot/pkg/audio"
)

// buildTestWAV returns a mono 16-bit WAV holding samples at rate.
func buildTestWAV(samples []int16, rate int) []byte {
	le := binary.LittleEndian
	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = le.AppendUint32(buf, uint32(36+len(samples)*2))
	buf = append(buf, "WAVEfmt "...)
	buf = le.AppendUint32(buf, 16)
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint32(buf, uint32(rate))
	buf = le.AppendUint32(buf, uint32(rate*2))
	buf = le.AppendUint16(buf, 2)
	buf = le.AppendUint16(buf, 16)
	buf = append(buf, "data"...)
	buf = le.AppendUint32(buf, uint32(len(samples)*2))
	for _, s := range samples {
		buf = le.AppendUint16(buf, uint16(s))
	}
	return buf
}

func constantWAV(n int, v int16, rate int) []byte {
	s := make([]int16, n)
	for i := range s {
		s[i] = v
	}
	return buildTestWAV(s, rate)
}

// playToEnd plays s and waits for its stop handlers.
func playToEnd(t *testing.T, s audio.Sound) {
	t.Helper()
	done := make(chan struct{})
	s.OnStop(func() { close(done) })
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sound did not stop")
	}
}

func TestSound_DeliversFramesAndWritesOutput(t *testing.T) {
	var pcm bytes.Buffer
	out := NewPCMOutput(&pcm)
	e := New(WithSampleRate(8000), WithBlockSize(100), WithRealtime(false), WithOutput(out))

	s, err := e.NewSound(context.Background(), constantWAV(250, 16384, 8000))
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}
	chain := e.NewEffectChain()
	chain.SetVolume(200)
	s.Connect(chain)

	var mu sync.Mutex
	var sizes []int
	var peak float32
	s.Subscribe(func(f audio.Frame) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, len(f.Samples))
		for _, v := range f.Samples {
			peak = max(peak, v)
		}
	})
	playToEnd(t, s)

	mu.Lock()
	defer mu.Unlock()
	if want := []int{100, 100, 50}; len(sizes) != 3 || sizes[0] != want[0] || sizes[2] != want[2] {
		t.Errorf("frame sizes = %v, want %v", sizes, want)
	}
	if peak != 0.5 {
		t.Errorf("subscriber peak = %v, want 0.5 (pre-gain)", peak)
	}
	if out.Frames() != 250 {
		t.Errorf("output frames = %d, want 250", out.Frames())
	}
	first := int16(binary.LittleEndian.Uint16(pcm.Bytes()[0:2]))
	if first != 32767 {
		t.Errorf("first output sample = %d, want 32767 (gain 200%%)", first)
	}
}

func TestSound_PlaybackRate(t *testing.T) {
	e := New(WithSampleRate(8000), WithBlockSize(1000), WithRealtime(false))
	s, err := e.NewSound(context.Background(), constantWAV(1000, 100, 8000))
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}
	s.SetPlaybackRate(2)

	var total atomic.Int64
	s.Subscribe(func(f audio.Frame) { total.Add(int64(len(f.Samples))) })
	playToEnd(t, s)

	if got := total.Load(); got != 500 {
		t.Errorf("rendered samples = %d, want 500 at rate 2", got)
	}
}

func TestSound_DecodeResamplesToEngineRate(t *testing.T) {
	e := New(WithSampleRate(16000), WithRealtime(false))
	buf, err := e.Decode(context.Background(), constantWAV(800, 0, 8000))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.SampleRate != 16000 || buf.Len() != 1600 {
		t.Errorf("decoded = %dHz x %d, want 16000Hz x 1600", buf.SampleRate, buf.Len())
	}
}

func TestSound_CancelStopsDelivery(t *testing.T) {
	e := New(WithSampleRate(8000), WithBlockSize(10), WithRealtime(false))
	s, err := e.NewSound(context.Background(), constantWAV(1000, 100, 8000))
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}

	var calls atomic.Int64
	var sub audio.Subscription
	sub = s.Subscribe(func(audio.Frame) { calls.Add(1) })
	sub.Cancel()
	sub.Cancel() // idempotent
	playToEnd(t, s)

	if got := calls.Load(); got != 0 {
		t.Errorf("subscriber called %d times after Cancel, want 0", got)
	}
}

func TestSound_StopDuringPlayback(t *testing.T) {
	e := New(WithSampleRate(8000), WithBlockSize(80), WithRealtime(true))
	s, err := e.NewSound(context.Background(), constantWAV(80000, 100, 8000)) // 10s clip
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}
	first := make(chan struct{})
	var once sync.Once
	s.Subscribe(func(audio.Frame) { once.Do(func() { close(first) }) })

	stopped := make(chan struct{})
	s.OnStop(func() { close(stopped) })
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	<-first
	s.Stop()
	s.Stop()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("OnStop not called after Stop")
	}
}

func TestSound_StopBeforePlay(t *testing.T) {
	e := New(WithRealtime(false))
	s, err := e.NewSound(context.Background(), constantWAV(10, 0, defaultSampleRate))
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}
	var called atomic.Bool
	s.OnStop(func() { called.Store(true) })
	s.Stop()
	if !called.Load() {
		t.Error("OnStop handler not run by Stop before Play")
	}
	if err := s.Play(); !errors.Is(err, ErrAlreadyPlayed) {
		t.Errorf("Play after Stop = %v, want ErrAlreadyPlayed", err)
	}

	var late atomic.Bool
	s.OnStop(func() { late.Store(true) })
	if !late.Load() {
		t.Error("OnStop registered after stop should run immediately")
	}
}

func TestSound_UniqueIDs(t *testing.T) {
	e := New(WithRealtime(false))
	data := constantWAV(10, 0, defaultSampleRate)
	a, _ := e.NewSound(context.Background(), data)
	b, _ := e.NewSound(context.Background(), data)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("sound IDs %q and %q are not unique", a.ID(), b.ID())
	}
}

func TestEngine_DecodeError(t *testing.T) {
	e := New()
	if _, err := e.NewSound(context.Background(), []byte("garbage")); err == nil {
		t.Error("expected error for undecodable data")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Decode(ctx, constantWAV(1, 0, 8000)); !errors.Is(err, context.Canceled) {
		t.Errorf("Decode with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestEffectChain_Volume(t *testing.T) {
	c := New().NewEffectChain()
	if c.Volume() != 100 {
		t.Errorf("default volume = %v, want 100", c.Volume())
	}
	c.SetVolume(250)
	if c.Volume() != 250 {
		t.Errorf("volume = %v, want 250", c.Volume())
	}
	c.SetVolume(-5)
	if c.Volume() != 0 {
		t.Errorf("negative volume clamped to %v, want 0", c.Volume())
	}
}

func TestPCMOutput_RejectsRateChange(t *testing.T) {
	o := NewPCMOutput(&bytes.Buffer{})
	if err := o.Write([]float32{0}, 8000); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := o.Write([]float32{0}, 16000); err == nil {
		t.Error("expected error on sample rate change")
	}
}
