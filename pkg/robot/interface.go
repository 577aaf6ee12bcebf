// Package robot provides the gateway-side execution layer for Pepper:
// joint-limit clamping and per-subsystem controllers (arms, head,
// hands, wheeled base) that translate validated commands into motor
// daemon calls.
//
// Interfaces are kept small so consumers depend only on what they use:
// the controllers need Motion, the pre-motion player also needs
// Posture.
package robot

// Motion is the joint and velocity surface of the motor daemon.
type Motion interface {
	// SetAngles commands the named joints to the given angles
	// (radians) at a fractional speed in (0, 1].
	SetAngles(names []string, angles []float64, speed float64) error
	// MoveToward drives the base at the given velocities until the
	// next call: vx forward m/s, vy left m/s, wz counterclockwise
	// rad/s.
	MoveToward(vx, vy, wz float64) error
	// StopMove halts the base immediately.
	StopMove() error
}

// Posture moves the whole body to a named predefined posture.
type Posture interface {
	GoToPosture(posture string, speed float64) error
}

// Proxy is the full motor daemon surface.
type Proxy interface {
	Motion
	Posture
}
