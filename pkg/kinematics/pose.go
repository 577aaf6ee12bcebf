// Package kinematics implements the arm solving pipeline for Pepper
// upper-body teleoperation: a FABRIK-based two-bone inverse kinematics
// solver and the decomposition of a solved chain into Pepper's native
// five-joint arm parameterization.
//
// Everything in this package is pure math: no I/O, no logging, bounded
// iteration. Callers own all state between frames.
package kinematics

import "github.com/go-gl/mathgl/mgl64"

// Side identifies which arm a chain or joint set belongs to.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Pose is a tracked position and orientation sampled from the headset
// or a controller. Tracked is false when the device has lost tracking;
// consumers must skip computation for that frame rather than use stale
// or zero values.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Tracked     bool
}

// ShoulderFrame is the orthonormal reference frame of a shoulder,
// expressed in the same space as solver targets.
type ShoulderFrame struct {
	Forward mgl64.Vec3
	Up      mgl64.Vec3
	Right   mgl64.Vec3
}

// DefaultShoulderFrame returns the identity frame: +Z forward, +Y up,
// +X right.
func DefaultShoulderFrame() ShoulderFrame {
	return ShoulderFrame{
		Forward: mgl64.Vec3{0, 0, 1},
		Up:      mgl64.Vec3{0, 1, 0},
		Right:   mgl64.Vec3{1, 0, 0},
	}
}

// Chain is a solved two-bone arm: shoulder, elbow, wrist positions.
// After a successful Solve the segment lengths match the solver's bone
// lengths to within floating point error.
type Chain struct {
	Shoulder mgl64.Vec3
	Elbow    mgl64.Vec3
	Wrist    mgl64.Vec3
}

// UpperLen returns the shoulder-to-elbow segment length.
func (c Chain) UpperLen() float64 {
	return c.Elbow.Sub(c.Shoulder).Len()
}

// ForearmLen returns the elbow-to-wrist segment length.
func (c Chain) ForearmLen() float64 {
	return c.Wrist.Sub(c.Elbow).Len()
}

// JointAngles is one arm's pose in Pepper's native parameterization,
// all radians. See MapJoints for sign conventions.
type JointAngles struct {
	ShoulderPitch float64
	ShoulderRoll  float64
	ElbowYaw      float64
	ElbowRoll     float64
	WristYaw      float64
}

// Lerp returns j moved toward target by fraction t in every joint.
// t=0 returns j, t=1 returns target.
func (j JointAngles) Lerp(target JointAngles, t float64) JointAngles {
	return JointAngles{
		ShoulderPitch: lerp(j.ShoulderPitch, target.ShoulderPitch, t),
		ShoulderRoll:  lerp(j.ShoulderRoll, target.ShoulderRoll, t),
		ElbowYaw:      lerp(j.ElbowYaw, target.ElbowYaw, t),
		ElbowRoll:     lerp(j.ElbowRoll, target.ElbowRoll, t),
		WristYaw:      lerp(j.WristYaw, target.WristYaw, t),
	}
}

// MaxAbsDelta returns the largest absolute per-joint difference
// between j and other. Used for settle detection after release.
func (j JointAngles) MaxAbsDelta(other JointAngles) float64 {
	d := abs(j.ShoulderPitch - other.ShoulderPitch)
	d = maxf(d, abs(j.ShoulderRoll-other.ShoulderRoll))
	d = maxf(d, abs(j.ElbowYaw-other.ElbowYaw))
	d = maxf(d, abs(j.ElbowRoll-other.ElbowRoll))
	d = maxf(d, abs(j.WristYaw-other.WristYaw))
	return d
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
