// Package realtime maintains WebSocket channels for Polymarket market and
// user data, plus the message translation layer.
package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"polyfeed/pkg/hashset"
)

const (
	BaseURL = "wss://ws-subscriptions-clob.polymarket.com"

	MarketChannelPath = "/ws/market"
	UserChannelPath   = "/ws/user"

	HandshakeTimeout    = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	PingInterval        = 10 * time.Second
)

const (
	pingFrame = "PING"
	pongFrame = "PONG"
)

var (
	ErrAlreadyConnected = errors.New("channel already connected")
	ErrNotConnected     = errors.New("channel not connected")
)

// Config holds the callbacks for one channel. OnMessage receives translated
// messages; when Raw is set, OnRaw receives each frame element undecoded
// instead. OnError and OnClose fire only after the channel has been open.
type Config struct {
	URL          string // base URL, BaseURL when empty
	OnMessage    func(*Message)
	OnRaw        func(json.RawMessage)
	OnError      func(error)
	OnClose      func(code int)
	Raw          bool
	PingInterval time.Duration // heartbeat interval, PingInterval when zero
	Logger       *slog.Logger
}

// variant parameterizes the shared transport with the per-channel wire
// shaping: the path segment, the on-open type announcement and the
// subscribe/unsubscribe frame builders.
type variant struct {
	path        string
	handshake   func() any
	subscribe   func(ids []string, customFeatureEnabled bool) any
	unsubscribe func(ids []string) any
}

type channel struct {
	cfg     Config
	variant variant
	log     *slog.Logger

	mu       sync.Mutex // guards conn, dialing, stopPing, subs
	writeMu  sync.Mutex // serializes socket writes
	conn     *websocket.Conn
	dialing  bool
	stopPing chan struct{}
	subs     hashset.Set[string]
}

func newChannel(cfg Config, v variant) *channel {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &channel{
		cfg:     cfg,
		variant: v,
		log:     logger.With("component", "realtime", "channel", v.path),
		subs:    hashset.NewSet[string](),
	}
}

// connect dials the channel endpoint, performs the type announcement and
// subscribes to ids plus any ids tracked from a previous connection, so a
// caller-driven reconnect restores its subscriptions. A second connect while
// a socket exists fails before any network I/O.
func (c *channel) connect(ctx context.Context, ids []string, customFeatureEnabled bool) error {
	c.mu.Lock()
	if c.conn != nil || c.dialing {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.dialing = true
	c.mu.Unlock()

	base := c.cfg.URL
	if base == "" {
		base = BaseURL
	}

	dialer := websocket.Dialer{HandshakeTimeout: HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, base+c.variant.path, http.Header{})
	if err != nil {
		c.abortDial()
		return fmt.Errorf("couldn't connect channel %s: %w", c.variant.path, err)
	}
	c.log.Info("channel connected", "status", resp.Status)

	if err := writeJSON(conn, c.variant.handshake()); err != nil {
		conn.Close()
		c.abortDial()
		return fmt.Errorf("couldn't announce channel type: %w", err)
	}

	c.mu.Lock()
	for _, id := range ids {
		c.subs.Set(id)
	}
	resub := c.subs.AsSlice()
	c.mu.Unlock()

	if len(resub) > 0 {
		if err := writeJSON(conn, c.variant.subscribe(resub, customFeatureEnabled)); err != nil {
			conn.Close()
			c.abortDial()
			return fmt.Errorf("couldn't send subscription: %w", err)
		}
	}

	stop := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.dialing = false
	c.stopPing = stop
	c.mu.Unlock()

	go c.pingLoop(conn, stop)
	go c.readLoop(conn)
	return nil
}

func (c *channel) abortDial() {
	c.mu.Lock()
	c.dialing = false
	c.mu.Unlock()
}

// disconnect stops the heartbeat, sends a close frame and releases the
// socket. Safe to call twice.
func (c *channel) disconnect() {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return
	}
	if c.stopPing != nil {
		close(c.stopPing)
		c.stopPing = nil
	}
	c.conn = nil
	c.mu.Unlock()

	deadline := time.Now().Add(DefaultWriteTimeout)
	if err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		deadline,
	); err != nil {
		c.log.Warn("failed to send close message", "error", err)
	}
	conn.Close()
}

func (c *channel) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// teardown releases a connection after a read failure. It reports whether
// conn was still the active socket; the heartbeat is stopped before the
// socket reference is dropped.
func (c *channel) teardown(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return false
	}
	if c.stopPing != nil {
		close(c.stopPing)
		c.stopPing = nil
	}
	c.conn = nil
	conn.Close()
	return true
}

func (c *channel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !c.teardown(conn) {
				// explicit disconnect already released this socket
				return
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				c.log.Warn("channel closed", "code", closeErr.Code, "reason", closeErr.Text)
				if c.cfg.OnClose != nil {
					c.cfg.OnClose(closeErr.Code)
				}
				return
			}
			c.reportError(fmt.Errorf("couldn't read message: %w", err))
			return
		}
		c.dispatch(data)
	}
}

func (c *channel) dispatch(data []byte) {
	frame := bytes.TrimSpace(data)
	if string(frame) == pongFrame {
		return
	}

	if !json.Valid(frame) {
		c.reportError(fmt.Errorf("couldn't parse frame: invalid JSON"))
		return
	}

	if len(frame) > 0 && frame[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(frame, &items); err != nil {
			c.reportError(fmt.Errorf("couldn't parse frame array: %w", err))
			return
		}
		for _, item := range items {
			c.deliver(item)
		}
		return
	}

	c.deliver(frame)
}

func (c *channel) deliver(item json.RawMessage) {
	if c.cfg.Raw {
		if c.cfg.OnRaw != nil {
			c.cfg.OnRaw(item)
		}
		return
	}

	msg, err := ParseMessage(item)
	if err != nil {
		c.reportError(err)
		return
	}
	if c.cfg.OnMessage != nil {
		c.cfg.OnMessage(msg)
	}
}

func (c *channel) reportError(err error) {
	if c.cfg.OnError != nil {
		c.cfg.OnError(err)
		return
	}
	c.log.Warn("channel error", "error", err)
}

func (c *channel) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	interval := c.cfg.PingInterval
	if interval <= 0 {
		interval = PingInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
			err := conn.WriteMessage(websocket.TextMessage, []byte(pingFrame))
			c.writeMu.Unlock()
			if err != nil {
				c.log.Warn("failed to send ping", "error", err)
				return
			}
		}
	}
}

// send writes a frame to the open socket; subscribe and unsubscribe are
// fire-and-forget, no acknowledgment is awaited.
func (c *channel) send(v any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeJSON(conn, v)
}

func writeJSON(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
	return conn.WriteJSON(v)
}

func (c *channel) trackSubscribe(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.subs.Set(id)
	}
}

func (c *channel) trackUnsubscribe(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.subs.Unset(id)
	}
}
