// Package transport maintains the websocket link to the gateway and
// surfaces its lifecycle as an event stream. The control loop drains
// the stream each tick and feeds the transitions to the dispatch
// queue, so the core never runs code on the transport's goroutine
// beyond channel sends.
package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/protocol"
)

// EventKind discriminates transport lifecycle events.
type EventKind int

const (
	// Opened means a connection was established.
	Opened EventKind = iota
	// Closed means the peer closed the connection; Code carries the
	// websocket close code when known.
	Closed
	// Failed means a dial or read error; Err carries the cause.
	Failed
	// Inbound carries a message from the gateway. The core only uses
	// these to confirm liveness.
	Inbound
)

// Event is one transport notification.
type Event struct {
	Kind EventKind
	Code int
	Err  error
	Data []byte
}

const (
	handshakeTimeout = 5 * time.Second
	writeTimeout     = 2 * time.Second

	reconnectMin = 500 * time.Millisecond
	reconnectMax = 5 * time.Second
)

// ErrNotConnected is returned by Send when no link is up.
var ErrNotConnected = errors.New("transport: not connected")

// Client dials the gateway and keeps redialing with backoff until its
// context is cancelled. Safe for one writer (the tick loop) plus the
// internal read goroutine.
type Client struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn

	events chan Event
}

// NewClient creates a client for the given websocket URL. Run must be
// called to start connecting.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		events: make(chan Event, 64),
	}
}

// Events returns the lifecycle/inbound event stream. The control loop
// must drain it every tick.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Send transmits one command. Implements dispatch.Sender.
func (c *Client) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Run dials and reads until ctx is cancelled, reconnecting with
// exponential backoff. Every connect, close and error is delivered on
// the event stream.
func (c *Client) Run(ctx context.Context) {
	backoff := reconnectMin

	for {
		if ctx.Err() != nil {
			return
		}

		dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
		conn, _, err := dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			log.Debug("gateway dial failed", "url", c.url, "error", err, "retry_in", backoff.String())
			c.emit(ctx, Event{Kind: Failed, Err: err})
			if !sleepCtx(ctx, backoff) {
				return
			}
			if backoff *= 2; backoff > reconnectMax {
				backoff = reconnectMax
			}
			continue
		}
		backoff = reconnectMin
		log.Info("gateway connected", "url", c.url)

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.emit(ctx, Event{Kind: Opened})

		c.readLoop(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
	}
}

// readLoop reads until the connection dies, emitting inbound messages
// and the final close/error event.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				c.emit(ctx, Event{Kind: Closed, Code: closeErr.Code})
			} else {
				c.emit(ctx, Event{Kind: Failed, Err: err})
			}
			return
		}
		// Inbound traffic is liveness only; drop rather than block
		// the reader if the loop is behind.
		select {
		case c.events <- Event{Kind: Inbound, Data: data}:
		default:
		}
	}
}

// emit delivers a lifecycle event, giving up only on shutdown.
// Lifecycle events must not be dropped: the dispatch queue's purge
// contract depends on seeing every transition.
func (c *Client) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

// Close tears down the active connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
