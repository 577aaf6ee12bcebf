package gateway

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-pepper/pkg/premotion"
	"github.com/teslashibe/go-pepper/pkg/protocol"
	"github.com/teslashibe/go-pepper/pkg/robot"
)

// mockProxy records motor daemon calls; the pre-motion player writes
// from its own goroutine, so everything is mutex-guarded.
type mockProxy struct {
	mu         sync.Mutex
	angleCalls []struct {
		joints []string
		angles []float64
	}
	stopCalls int
	postures  []string
}

func newMockProxy() *mockProxy {
	return &mockProxy{}
}

func (m *mockProxy) SetAngles(names []string, angles []float64, speed float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.angleCalls = append(m.angleCalls, struct {
		joints []string
		angles []float64
	}{names, angles})
	return nil
}

func (m *mockProxy) MoveToward(vx, vy, wz float64) error { return nil }

func (m *mockProxy) StopMove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	return nil
}

func (m *mockProxy) GoToPosture(posture string, speed float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postures = append(m.postures, posture)
	return nil
}

func (m *mockProxy) touched(joint string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.angleCalls {
		for _, name := range call.joints {
			if name == joint {
				return true
			}
		}
	}
	return false
}

func (m *mockProxy) stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func newTestRouter() (*Router, *mockProxy, *premotion.Player) {
	proxy := newMockProxy()
	limits := robot.DefaultLimits()
	player := premotion.NewPlayer(proxy, limits)
	return NewRouter(robot.NewPepper(proxy, limits), player), proxy, player
}

func mustMsg(msg *protocol.Message, err error) *protocol.Message {
	if err != nil {
		panic(err)
	}
	return msg
}

func TestRouter_ArmMoveReachesDaemon(t *testing.T) {
	router, proxy, _ := newTestRouter()
	msg := mustMsg(protocol.NewArmMove("right", protocol.Joints{ShoulderPitch: 0.5}, 0.2))
	router.Handle(msg)
	if !proxy.touched("RShoulderPitch") {
		t.Error("arm command never reached the daemon")
	}
}

func TestRouter_HeadMoveReachesDaemon(t *testing.T) {
	router, proxy, _ := newTestRouter()
	router.Handle(mustMsg(protocol.NewHeadMove(0.1, 0.2, 0.25)))
	if !proxy.touched("HeadYaw") {
		t.Error("head command never reached the daemon")
	}
}

func TestRouter_PreMotionGateBlocksMimicry(t *testing.T) {
	router, proxy, player := newTestRouter()

	router.Handle(mustMsg(protocol.NewPreMotion("wave")))
	if !player.IsPlaying() {
		t.Fatal("pre-motion did not start")
	}

	// The wave never touches the head, so a blocked head command is
	// detectable.
	router.Handle(mustMsg(protocol.NewHeadMove(0.3, 0, 0.2)))
	if proxy.touched("HeadYaw") {
		t.Error("mimicry command passed the pre-motion gate")
	}

	// Emergency stop must pass the gate, halt the base, and cancel
	// the motion.
	router.Handle(mustMsg(protocol.NewEmergencyStop()))
	if proxy.stops() == 0 {
		t.Error("emergency stop never reached the daemon")
	}
	deadline := time.Now().Add(3 * time.Second)
	for player.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatal("pre-motion survived the emergency stop")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRouter_PreMotionStopPassesGate(t *testing.T) {
	router, _, player := newTestRouter()
	router.Handle(mustMsg(protocol.NewPreMotion("dance")))
	router.Handle(mustMsg(protocol.NewPreMotionStop()))

	deadline := time.Now().Add(3 * time.Second)
	for player.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatal("pre_motion_stop did not cancel the motion")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRouter_UnknownTypeIgnored(t *testing.T) {
	router, proxy, _ := newTestRouter()
	router.Handle(&protocol.Message{Type: "backflip"})
	proxy.mu.Lock()
	calls := len(proxy.angleCalls)
	proxy.mu.Unlock()
	if calls != 0 {
		t.Errorf("unknown command produced %d daemon calls", calls)
	}
}

func TestRouter_MalformedPayloadIgnored(t *testing.T) {
	router, proxy, _ := newTestRouter()
	router.Handle(&protocol.Message{
		Type: protocol.TypeArmMove,
		Data: json.RawMessage(`"not an object"`),
	})
	proxy.mu.Lock()
	calls := len(proxy.angleCalls)
	proxy.mu.Unlock()
	if calls != 0 {
		t.Errorf("malformed command produced %d daemon calls", calls)
	}
}

func TestRouter_DisconnectHaltsRobot(t *testing.T) {
	router, proxy, _ := newTestRouter()
	router.OnDisconnect()
	if proxy.stops() != 1 {
		t.Errorf("disconnect: got %d base stops, want 1", proxy.stops())
	}
}
