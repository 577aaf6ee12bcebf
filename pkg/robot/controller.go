package robot

import (
	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/protocol"
)

// Safe maximum base speeds for Pepper's wheeled base.
const (
	MaxLinearSpeed  = 0.55 // m/s
	MaxAngularSpeed = 1.5  // rad/s

	// handSpeed is a fixed fractional speed for the simple hand
	// mechanism.
	handSpeed = 0.3
)

// jointPrefix maps a command side to NAOqi's joint-name prefix.
func jointPrefix(side string) string {
	if side == "left" {
		return "L"
	}
	return "R"
}

// ArmController moves one arm through the five-joint parameterization,
// clamping every angle before it leaves the process.
type ArmController struct {
	motion Motion
	limits *Limits
}

// NewArmController creates an arm controller.
func NewArmController(motion Motion, limits *Limits) *ArmController {
	return &ArmController{motion: motion, limits: limits}
}

// Move commands one arm to the given joint targets.
func (a *ArmController) Move(side string, joints protocol.Joints, speed float64) error {
	prefix := jointPrefix(side)
	names := []string{
		prefix + "ShoulderPitch",
		prefix + "ShoulderRoll",
		prefix + "ElbowYaw",
		prefix + "ElbowRoll",
		prefix + "WristYaw",
	}
	angles := []float64{
		a.limits.Clamp(names[0], joints.ShoulderPitch),
		a.limits.Clamp(names[1], joints.ShoulderRoll),
		a.limits.Clamp(names[2], joints.ElbowYaw),
		a.limits.Clamp(names[3], joints.ElbowRoll),
		a.limits.Clamp(names[4], joints.WristYaw),
	}
	return a.motion.SetAngles(names, angles, clampSpeed(speed))
}

// HeadController moves the head yaw and pitch.
type HeadController struct {
	motion Motion
	limits *Limits
}

// NewHeadController creates a head controller.
func NewHeadController(motion Motion, limits *Limits) *HeadController {
	return &HeadController{motion: motion, limits: limits}
}

// Move commands the head to a yaw/pitch target.
func (h *HeadController) Move(yaw, pitch, speed float64) error {
	return h.motion.SetAngles(
		[]string{"HeadYaw", "HeadPitch"},
		[]float64{h.limits.Clamp("HeadYaw", yaw), h.limits.Clamp("HeadPitch", pitch)},
		clampSpeed(speed),
	)
}

// HandController opens and closes the hands.
type HandController struct {
	motion Motion
}

// NewHandController creates a hand controller.
func NewHandController(motion Motion) *HandController {
	return &HandController{motion: motion}
}

// Move sets one hand's openness, 0 closed to 1 open.
func (h *HandController) Move(side string, value float64) error {
	name := jointPrefix(side) + "Hand"
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	return h.motion.SetAngles([]string{name}, []float64{value}, handSpeed)
}

// BaseController drives the wheeled base with clamped velocities.
type BaseController struct {
	motion Motion
}

// NewBaseController creates a base controller.
func NewBaseController(motion Motion) *BaseController {
	return &BaseController{motion: motion}
}

// Move drives the base: linear is [vx forward, vy strafe] m/s, angular
// is rad/s.
func (b *BaseController) Move(linear [2]float64, angular float64) error {
	vx := clampAbs(linear[0], MaxLinearSpeed)
	vy := clampAbs(linear[1], MaxLinearSpeed)
	wz := clampAbs(angular, MaxAngularSpeed)
	return b.motion.MoveToward(vx, vy, wz)
}

// Stop halts all base movement immediately.
func (b *BaseController) Stop() error {
	return b.motion.StopMove()
}

// Pepper bundles the per-subsystem controllers behind one handle for
// the gateway.
type Pepper struct {
	Arm  *ArmController
	Head *HeadController
	Hand *HandController
	Base *BaseController
}

// NewPepper wires all controllers to one motor daemon proxy.
func NewPepper(motion Motion, limits *Limits) *Pepper {
	return &Pepper{
		Arm:  NewArmController(motion, limits),
		Head: NewHeadController(motion, limits),
		Hand: NewHandController(motion),
		Base: NewBaseController(motion),
	}
}

// EmergencyStop halts all motion. Errors are logged, not returned: the
// stop must attempt every subsystem regardless.
func (p *Pepper) EmergencyStop() {
	log.Warn("emergency stop: halting all motion")
	if err := p.Base.Stop(); err != nil {
		log.Error("emergency stop: base halt failed", "error", err)
	}
}

func clampSpeed(speed float64) float64 {
	if speed <= 0 {
		return 0.1
	}
	if speed > 1 {
		return 1
	}
	return speed
}

func clampAbs(v, limit float64) float64 {
	if v < -limit {
		return -limit
	}
	if v > limit {
		return limit
	}
	return v
}
