package device

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrWong99/ohbot/internal/observe"
)

// DefaultPace is the delay after each command before the caller resumes.
const DefaultPace = 100 * time.Millisecond

// Command outcomes used as the "status" attribute of device metrics.
const (
	statusSent  = "sent"
	statusError = "error"
)

// Option configures a [Forwarder].
type Option func(*Forwarder)

// WithPace overrides [DefaultPace].
func WithPace(d time.Duration) Option {
	return func(f *Forwarder) { f.pace = d }
}

// WithMetrics records command counts to m.
func WithMetrics(m *observe.Metrics) Option {
	return func(f *Forwarder) { f.metrics = m }
}

// Forwarder sends commands through a [Channel]. Send failures are logged
// and counted but never returned: a missing robot must not break the
// program running the blocks.
type Forwarder struct {
	ch      Channel
	pace    time.Duration
	metrics *observe.Metrics
}

// NewForwarder returns a Forwarder sending through ch.
func NewForwarder(ch Channel, opts ...Option) *Forwarder {
	f := &Forwarder{ch: ch, pace: DefaultPace}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Channel returns the underlying channel.
func (f *Forwarder) Channel() Channel { return f.ch }

// Run sends cmd and then waits for the pacing delay. It returns early with
// the context error if ctx ends while waiting.
func (f *Forwarder) Run(ctx context.Context, cmd Command) error {
	f.send(ctx, cmd)
	if f.pace <= 0 {
		return nil
	}
	t := time.NewTimer(f.pace)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset sends the reset command without pacing.
func (f *Forwarder) Reset(ctx context.Context) {
	f.send(ctx, Reset())
}

func (f *Forwarder) send(ctx context.Context, cmd Command) {
	status := statusSent
	if err := f.ch.Send(ctx, cmd); err != nil {
		status = statusError
		observe.ComponentLogger(ctx, "device").Warn("device command not delivered",
			slog.String("op", string(cmd.Op)),
			slog.Any("err", err),
		)
	}
	if f.metrics != nil {
		f.metrics.RecordDeviceCommand(ctx, string(cmd.Op), status)
	}
}
