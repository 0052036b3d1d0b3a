package device

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Send after the channel has been closed.
var ErrClosed = errors.New("device: channel closed")

// Channel delivers commands to the device. Implementations must be safe for
// concurrent use.
type Channel interface {
	// Send delivers cmd. It does not wait for any acknowledgement.
	Send(ctx context.Context, cmd Command) error

	// Close releases the underlying connection. Further sends fail with
	// [ErrClosed].
	Close() error
}

// Checker is implemented by channels that can report whether the device is
// reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// LogChannel writes commands to a logger instead of a device. It is used
// when no robot is attached.
type LogChannel struct {
	log *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewLogChannel returns a LogChannel writing to log, or to slog.Default when
// log is nil.
func NewLogChannel(log *slog.Logger) *LogChannel {
	if log == nil {
		log = slog.Default()
	}
	return &LogChannel{log: log.With(slog.String("component", "device"))}
}

// Send implements [Channel].
func (c *LogChannel) Send(ctx context.Context, cmd Command) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	c.log.InfoContext(ctx, "device command", "op", string(cmd.Op), "tuple", cmd.String())
	return nil
}

// Close implements [Channel].
func (c *LogChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}
