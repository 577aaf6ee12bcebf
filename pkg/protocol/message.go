// Package protocol defines the WebSocket message types for the
// operator-to-robot command stream. It is shared between the teleop
// pipeline (sender) and the gateway (receiver).
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the kind of command carried by a Message.
type MessageType string

const (
	// Continuous mimicry stream.
	TypeArmMove  MessageType = "arm_move"  // five arm joints for one side
	TypeHeadMove MessageType = "head_move" // head yaw and pitch
	TypeHandMove MessageType = "hand_move" // hand openness for one side
	TypeBaseMove MessageType = "base_move" // base velocity

	// Immediate path, bypasses smoothing and engagement.
	TypePreMotion     MessageType = "pre_motion"      // named pre-set motion
	TypePreMotionStop MessageType = "pre_motion_stop" // cancel a pre-set motion
	TypeEmergencyStop MessageType = "emergency_stop"  // halt all motion, no payload
)

// Message is the envelope for all commands on the wire.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage wraps a payload in an envelope stamped with the current
// time. A nil payload produces an envelope with no data (emergency
// stop).
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
	}
	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      raw,
	}, nil
}

// ParseData unmarshals the message payload into v.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage decodes an envelope from the wire.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Payloads
// =============================================================================

// Joints carries one arm's five joint targets in radians. Field names
// match the NAOqi-side joint naming.
type Joints struct {
	ShoulderPitch float64 `json:"shoulderPitch"`
	ShoulderRoll  float64 `json:"shoulderRoll"`
	ElbowYaw      float64 `json:"elbowYaw"`
	ElbowRoll     float64 `json:"elbowRoll"`
	WristYaw      float64 `json:"wristYaw"`
}

// ArmMove moves one arm to a joint-space target.
type ArmMove struct {
	Side   string  `json:"side"` // "left" or "right"
	Joints Joints  `json:"joints"`
	Speed  float64 `json:"speed"` // NAOqi fractional speed, (0,1]
}

// HeadMove moves the head to a yaw/pitch target, radians.
type HeadMove struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Speed float64 `json:"speed"`
}

// HandMove sets one hand's openness.
type HandMove struct {
	Side  string  `json:"side"`
	Value float64 `json:"value"` // 0 closed .. 1 open
}

// BaseMove drives the wheeled base.
type BaseMove struct {
	Linear  [2]float64 `json:"linear"`  // vx (forward), vy (strafe), m/s
	Angular float64    `json:"angular"` // rad/s
}

// PreMotion requests a named pre-set motion.
type PreMotion struct {
	MotionName string `json:"motion_name"`
}
