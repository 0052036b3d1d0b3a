package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/MrWong99/ohbot/internal/observe"
)

// ExtensionID identifies the browser companion that relays commands to the
// robot. It is sent as the [ExtensionHeader] when dialling.
const ExtensionID = "mmobhkfcipfooaiiikpnnkllmgillgpn"

// ExtensionHeader carries the companion id on the websocket handshake.
const ExtensionHeader = "X-Ohbot-Extension"

const (
	defaultDialTimeout = 5 * time.Second
	defaultQueueSize   = 64

	minRedialDelay = 250 * time.Millisecond
	maxRedialDelay = 10 * time.Second
)

// ErrQueueFull is returned by [WSChannel.Send] when the writer has fallen
// too far behind. The command is dropped.
var ErrQueueFull = errors.New("device: send queue full")

// WSOption configures a [WSChannel].
type WSOption func(*WSChannel)

// WithExtensionID overrides [ExtensionID].
func WithExtensionID(id string) WSOption {
	return func(c *WSChannel) { c.extensionID = id }
}

// WithDialTimeout bounds each connection attempt and each write.
func WithDialTimeout(d time.Duration) WSOption {
	return func(c *WSChannel) { c.dialTimeout = d }
}

// WithHTTPClient sets the client used for the websocket handshake.
func WithHTTPClient(hc *http.Client) WSOption {
	return func(c *WSChannel) { c.hc = hc }
}

// WithQueueSize sets how many commands may wait for the writer.
// Default: 64.
func WithQueueSize(n int) WSOption {
	return func(c *WSChannel) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

type outgoing struct {
	op  Op
	msg []byte
}

// WSChannel sends commands as JSON text frames over a websocket.
//
// Send only enqueues; a single writer goroutine dials, writes and redials.
// While the companion is unreachable, commands are dropped and dialling is
// retried with exponential backoff.
type WSChannel struct {
	url         string
	extensionID string
	dialTimeout time.Duration
	queueSize   int
	hc          *http.Client
	log         *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan outgoing

	startOnce sync.Once
	stopped   chan struct{}
	closeOnce sync.Once

	// dialMu serializes connection attempts and guards the backoff state.
	dialMu  sync.Mutex
	retryAt time.Time
	delay   time.Duration
	lastErr error

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSChannel returns a channel for the companion listening at url.
func NewWSChannel(url string, opts ...WSOption) *WSChannel {
	c := &WSChannel{
		url:         url,
		extensionID: ExtensionID,
		dialTimeout: defaultDialTimeout,
		queueSize:   defaultQueueSize,
		stopped:     make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.queue = make(chan outgoing, c.queueSize)
	c.log = observe.ComponentLogger(c.ctx, "device").With(slog.String("url", url))
	return c
}

// Send implements [Channel]. It never waits for the network: cmd is queued
// for the writer, or dropped with [ErrQueueFull].
func (c *WSChannel) Send(_ context.Context, cmd Command) error {
	msg, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("device: marshal %s: %w", cmd.Op, err)
	}
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	c.startOnce.Do(func() { go c.run() })

	select {
	case c.queue <- outgoing{op: cmd.Op, msg: msg}:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	default:
		return fmt.Errorf("device: send %s: %w", cmd.Op, ErrQueueFull)
	}
}

// Check dials if necessary and pings the companion.
func (c *WSChannel) Check(ctx context.Context) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	if err := conn.Ping(ctx); err != nil {
		c.drop(conn)
		return fmt.Errorf("device: ping: %w", err)
	}
	return nil
}

// Close implements [Channel]. Queued commands that were not yet written are
// discarded.
func (c *WSChannel) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		// A writer that was never started has nothing to wait for.
		c.startOnce.Do(func() { close(c.stopped) })
		<-c.stopped

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()
		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "closing")
		}
	})
	return nil
}

// run is the single writer.
func (c *WSChannel) run() {
	defer close(c.stopped)
	for {
		select {
		case <-c.ctx.Done():
			return
		case out := <-c.queue:
			if err := c.write(out); err != nil && c.ctx.Err() == nil {
				c.log.Warn("device command dropped", slog.String("op", string(out.op)), slog.Any("err", err))
			}
		}
	}
}

func (c *WSChannel) write(out outgoing) error {
	conn, err := c.connect(c.ctx)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(c.ctx, c.dialTimeout)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, out.msg); err != nil {
		c.drop(conn)
		return fmt.Errorf("device: send %s: %w", out.op, err)
	}
	return nil
}

// connect returns the live connection, dialling one unless the previous
// attempt failed less than the backoff delay ago.
func (c *WSChannel) connect(ctx context.Context) (*websocket.Conn, error) {
	if c.ctx.Err() != nil {
		return nil, ErrClosed
	}
	if conn := c.current(); conn != nil {
		return conn, nil
	}

	c.dialMu.Lock()
	defer c.dialMu.Unlock()
	if conn := c.current(); conn != nil {
		return conn, nil
	}
	if time.Now().Before(c.retryAt) {
		return nil, fmt.Errorf("device: dial %s: %w (retrying in %s)",
			c.url, c.lastErr, time.Until(c.retryAt).Round(time.Millisecond))
	}

	// Closing the channel aborts a pending handshake.
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	conn, _, err := websocket.Dial(dialCtx, c.url, &websocket.DialOptions{
		HTTPClient: c.hc,
		HTTPHeader: http.Header{
			ExtensionHeader: []string{c.extensionID},
		},
	})
	if err != nil {
		c.delay = min(max(2*c.delay, minRedialDelay), maxRedialDelay)
		c.retryAt = time.Now().Add(c.delay)
		c.lastErr = err
		return nil, fmt.Errorf("device: dial %s: %w", c.url, err)
	}
	c.delay, c.retryAt, c.lastErr = 0, time.Time{}, nil

	// The companion never sends data; reading in the background only
	// serves control frames so that Ping can complete.
	conn.CloseRead(c.ctx)

	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		conn.CloseNow()
		return nil, ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()
	c.log.Info("device connected")
	return conn, nil
}

func (c *WSChannel) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// drop forgets conn and tears it down without waiting for the close
// handshake.
func (c *WSChannel) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.CloseNow()
}
