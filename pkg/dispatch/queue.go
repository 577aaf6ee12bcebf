// Package dispatch buffers and forwards outbound commands according to
// transport connectivity. Its one non-obvious rule: commands buffered
// while disconnected are flushed FIFO on reconnect, but anything still
// buffered when the connection is lost is purged — a motion command
// encodes a physical pose that is stale by the time a link comes back,
// and must never be executed late.
package dispatch

import (
	"sync"

	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/protocol"
)

// ConnectionState mirrors the transport lifecycle.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

// String returns a human-readable state name.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Sender transmits one serialized command. Implemented by the
// websocket transport client.
type Sender interface {
	Send(msg *protocol.Message) error
}

// Queue routes commands to the sender when connected and buffers them
// otherwise. A single mutex guards the buffer and state: EnqueueOrSend
// runs on the tick loop while SetState runs from transport
// notifications.
//
// Buffering only applies before the first connection is established.
// Once a connection has been lost, every command produced until the
// link is back encodes an already-stale pose, so it is discarded
// instead of buffered.
type Queue struct {
	sender Sender

	mu      sync.Mutex
	state   ConnectionState
	lost    bool // a previously established connection dropped
	pending []*protocol.Message

	// Diagnostics.
	sent    uint64
	dropped uint64
	purged  uint64
}

// NewQueue creates a queue in the Disconnected state.
func NewQueue(sender Sender) *Queue {
	return &Queue{sender: sender}
}

// EnqueueOrSend transmits msg immediately when connected. Before the
// first connection it buffers; after a connection loss it discards,
// never delivering stale motion on reconnect. A transmit failure is
// logged and the command dropped without retry: the next tick supplies
// a fresher one.
func (q *Queue) EnqueueOrSend(msg *protocol.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state == Connected {
		q.send(msg)
		return
	}
	if q.lost {
		q.purged++
		return
	}
	q.pending = append(q.pending, msg)
}

// SetState applies a transport state transition. Entering Connected
// flushes the pending buffer in FIFO order; leaving Connected purges
// it entirely and marks the queue stale until reconnect.
func (q *Queue) SetState(state ConnectionState) {
	q.mu.Lock()
	defer q.mu.Unlock()

	prev := q.state
	q.state = state
	if prev == state {
		return
	}

	switch {
	case state == Connected:
		q.lost = false
		for _, msg := range q.pending {
			q.send(msg)
		}
		q.pending = nil
	case prev == Connected:
		q.lost = true
		if n := len(q.pending); n > 0 {
			q.purged += uint64(n)
			q.pending = nil
		}
		log.Info("connection lost, stale commands will be discarded", "state", state.String())
	}
}

// State returns the current connection state.
func (q *Queue) State() ConnectionState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// PendingLen returns the number of buffered commands.
func (q *Queue) PendingLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stats returns sent, dropped and purged counts since start.
func (q *Queue) Stats() (sent, dropped, purged uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sent, q.dropped, q.purged
}

// send transmits one message. Callers hold q.mu.
func (q *Queue) send(msg *protocol.Message) {
	if err := q.sender.Send(msg); err != nil {
		q.dropped++
		log.Warn("command transmit failed", "type", msg.Type, "error", err)
		return
	}
	q.sent++
}
