// Package gateway is the robot-side command server: a websocket
// endpoint receiving the operator's command stream and a router that
// validates, gates, and delegates each command to the execution layer.
package gateway

import (
	"errors"

	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/premotion"
	"github.com/teslashibe/go-pepper/pkg/protocol"
	"github.com/teslashibe/go-pepper/pkg/robot"
)

// Router delegates parsed commands to the subsystem controllers. While
// a pre-motion plays, live mimicry commands are dropped so the
// animation cannot be fought by the operator's stream; only
// pre_motion_stop and emergency_stop pass the gate.
type Router struct {
	pepper *robot.Pepper
	player *premotion.Player
}

// NewRouter creates a router over the given execution layer.
func NewRouter(pepper *robot.Pepper, player *premotion.Player) *Router {
	return &Router{pepper: pepper, player: player}
}

// Handle routes one command. Faults are logged and absorbed: a bad
// command must never take the receive loop down.
func (r *Router) Handle(msg *protocol.Message) {
	if r.player.IsPlaying() &&
		msg.Type != protocol.TypePreMotionStop && msg.Type != protocol.TypeEmergencyStop {
		log.Debug("command dropped during pre-motion", "type", msg.Type)
		return
	}

	switch msg.Type {
	case protocol.TypeArmMove:
		var move protocol.ArmMove
		if err := msg.ParseData(&move); err != nil {
			log.Warn("malformed arm command", "error", err)
			return
		}
		if err := r.pepper.Arm.Move(move.Side, move.Joints, move.Speed); err != nil {
			log.Error("arm move failed", "side", move.Side, "error", err)
		}

	case protocol.TypeHeadMove:
		var move protocol.HeadMove
		if err := msg.ParseData(&move); err != nil {
			log.Warn("malformed head command", "error", err)
			return
		}
		if err := r.pepper.Head.Move(move.Yaw, move.Pitch, move.Speed); err != nil {
			log.Error("head move failed", "error", err)
		}

	case protocol.TypeHandMove:
		var move protocol.HandMove
		if err := msg.ParseData(&move); err != nil {
			log.Warn("malformed hand command", "error", err)
			return
		}
		if err := r.pepper.Hand.Move(move.Side, move.Value); err != nil {
			log.Error("hand move failed", "side", move.Side, "error", err)
		}

	case protocol.TypeBaseMove:
		var move protocol.BaseMove
		if err := msg.ParseData(&move); err != nil {
			log.Warn("malformed base command", "error", err)
			return
		}
		if err := r.pepper.Base.Move(move.Linear, move.Angular); err != nil {
			log.Error("base move failed", "error", err)
		}

	case protocol.TypePreMotion:
		var pre protocol.PreMotion
		if err := msg.ParseData(&pre); err != nil {
			log.Warn("malformed pre-motion command", "error", err)
			return
		}
		if err := r.player.Play(pre.MotionName); err != nil {
			if errors.Is(err, premotion.ErrAlreadyPlaying) {
				log.Debug("pre-motion request ignored, one already playing", "name", pre.MotionName)
			} else {
				log.Warn("pre-motion rejected", "name", pre.MotionName, "error", err)
			}
		}

	case protocol.TypePreMotionStop:
		r.player.Stop()

	case protocol.TypeEmergencyStop:
		r.player.Stop()
		r.pepper.EmergencyStop()

	default:
		log.Warn("unknown command type", "type", msg.Type)
	}
}

// OnDisconnect is invoked when an operator link drops. The robot must
// not keep executing the last velocity or chasing a stale pose.
func (r *Router) OnDisconnect() {
	r.player.Stop()
	r.pepper.EmergencyStop()
}
