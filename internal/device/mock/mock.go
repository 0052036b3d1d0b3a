// Package mock provides an in-memory [device.Channel] for unit tests.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/ohbot/internal/device"
)

// Channel records every command it is asked to send.
type Channel struct {
	// SendErr is returned by every Send when non-nil.
	SendErr error

	// CheckErr is returned by Check.
	CheckErr error

	mu       sync.Mutex
	commands []device.Command
	closed   bool
}

// Send implements [device.Channel].
func (c *Channel) Send(_ context.Context, cmd device.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, cmd)
	return c.SendErr
}

// Check implements [device.Checker].
func (c *Channel) Check(context.Context) error { return c.CheckErr }

// Close implements [device.Channel].
func (c *Channel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// Commands returns a copy of the commands sent so far.
func (c *Channel) Commands() []device.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]device.Command, len(c.commands))
	copy(out, c.commands)
	return out
}

// Tuples returns the wire form of every command sent so far.
func (c *Channel) Tuples() [][]string {
	cmds := c.Commands()
	out := make([][]string, len(cmds))
	for i, cmd := range cmds {
		out[i] = cmd.Tuple()
	}
	return out
}

// Closed reports whether Close was called.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
