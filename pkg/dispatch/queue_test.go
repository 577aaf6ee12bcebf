package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/teslashibe/go-pepper/pkg/protocol"
)

// mockSender records transmitted messages and can fail on demand.
type mockSender struct {
	mu   sync.Mutex
	sent []*protocol.Message
	fail bool
}

func (m *mockSender) Send(msg *protocol.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("transmit failed")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockSender) types() []protocol.MessageType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]protocol.MessageType, len(m.sent))
	for i, msg := range m.sent {
		out[i] = msg.Type
	}
	return out
}

func mustMsg(msg *protocol.Message, err error) *protocol.Message {
	if err != nil {
		panic(fmt.Sprintf("building message: %v", err))
	}
	return msg
}

func TestQueue_SendsImmediatelyWhenConnected(t *testing.T) {
	sender := &mockSender{}
	q := NewQueue(sender)
	q.SetState(Connected)

	q.EnqueueOrSend(mustMsg(protocol.NewHeadMove(0.1, 0.2, 0.3)))

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(sender.sent))
	}
	if q.PendingLen() != 0 {
		t.Errorf("expected empty buffer, got %d pending", q.PendingLen())
	}
}

func TestQueue_BuffersWhileDisconnectedAndFlushesInOrder(t *testing.T) {
	sender := &mockSender{}
	q := NewQueue(sender)

	q.EnqueueOrSend(mustMsg(protocol.NewHeadMove(0, 0, 0.3)))
	q.EnqueueOrSend(mustMsg(protocol.NewHandMove("left", 0.5)))
	q.EnqueueOrSend(mustMsg(protocol.NewBaseMove([2]float64{0.1, 0}, 0)))

	if len(sender.sent) != 0 {
		t.Fatalf("nothing should be sent while disconnected, got %d", len(sender.sent))
	}
	if q.PendingLen() != 3 {
		t.Fatalf("expected 3 pending, got %d", q.PendingLen())
	}

	q.SetState(Connected)

	want := []protocol.MessageType{protocol.TypeHeadMove, protocol.TypeHandMove, protocol.TypeBaseMove}
	got := sender.types()
	if len(got) != len(want) {
		t.Fatalf("expected %d flushed messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("flush order[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
	if q.PendingLen() != 0 {
		t.Errorf("buffer should be empty after flush, got %d", q.PendingLen())
	}
}

func TestQueue_DiscardsAfterConnectionLoss(t *testing.T) {
	sender := &mockSender{}
	q := NewQueue(sender)
	q.SetState(Connecting)
	q.SetState(Connected)
	q.SetState(Disconnected)

	// Commands produced after the loss are discarded outright — the
	// poses they encode will be stale by the time the link is back.
	q.EnqueueOrSend(mustMsg(protocol.NewHandMove("right", 1.0)))
	q.EnqueueOrSend(mustMsg(protocol.NewHandMove("right", 0.0)))

	if q.PendingLen() != 0 {
		t.Fatalf("expected nothing buffered after a loss, got %d", q.PendingLen())
	}
	_, _, purged := q.Stats()
	if purged != 2 {
		t.Errorf("purged: got %d, want 2", purged)
	}

	// Reconnect delivers nothing old and resumes immediate send.
	q.SetState(Connecting)
	q.SetState(Connected)
	if len(sender.types()) != 0 {
		t.Fatalf("stale commands delivered on reconnect: %v", sender.types())
	}
	q.EnqueueOrSend(mustMsg(protocol.NewHandMove("left", 0.7)))
	if len(sender.types()) != 1 {
		t.Errorf("expected fresh command to send, got %d", len(sender.types()))
	}
}

func TestQueue_StaleCommandsNeverDeliveredAfterReconnect(t *testing.T) {
	sender := &mockSender{}
	q := NewQueue(sender)

	// Startup: commands produced while the first dial is in flight are
	// buffered and flushed on connect.
	q.SetState(Connecting)
	q.EnqueueOrSend(mustMsg(protocol.NewArmMove("left", protocol.Joints{ShoulderPitch: 1}, 0.2)))
	q.SetState(Connected)
	if len(sender.types()) != 1 {
		t.Fatalf("expected startup buffer flushed, got %d sent", len(sender.types()))
	}

	// Mid-session error drop: everything produced until reconnect is
	// discarded, across any number of intermediate states.
	q.SetState(Disconnected)
	q.EnqueueOrSend(mustMsg(protocol.NewArmMove("left", protocol.Joints{ShoulderPitch: 2}, 0.2)))
	q.SetState(Connecting)
	q.EnqueueOrSend(mustMsg(protocol.NewArmMove("left", protocol.Joints{ShoulderPitch: 3}, 0.2)))
	q.SetState(Connected)

	got := sender.types()
	if len(got) != 1 {
		t.Errorf("stale commands delivered after reconnect: %v", got[1:])
	}
	_, _, purged := q.Stats()
	if purged != 2 {
		t.Errorf("purged: got %d, want 2", purged)
	}
}

func TestQueue_TransmitFailureDropsWithoutRetry(t *testing.T) {
	sender := &mockSender{fail: true}
	q := NewQueue(sender)
	q.SetState(Connected)

	q.EnqueueOrSend(mustMsg(protocol.NewHeadMove(0, 0, 0.3)))

	if q.PendingLen() != 0 {
		t.Errorf("failed command must not be requeued, got %d pending", q.PendingLen())
	}
	_, dropped, _ := q.Stats()
	if dropped != 1 {
		t.Errorf("dropped: got %d, want 1", dropped)
	}

	// Next command goes through once the sender recovers.
	sender.fail = false
	q.EnqueueOrSend(mustMsg(protocol.NewHeadMove(0, 0, 0.3)))
	if len(sender.sent) != 1 {
		t.Errorf("expected 1 delivered after recovery, got %d", len(sender.sent))
	}
}
