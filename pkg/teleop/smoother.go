package teleop

import "github.com/teslashibe/go-pepper/pkg/kinematics"

// Default per-channel smoothing factors. Arms carry the most tracking
// jitter and get the heaviest filter; hands follow the trigger almost
// directly so a grab feels immediate.
const (
	DefaultArmAlpha  = 0.25
	DefaultHeadAlpha = 0.3
	DefaultHandAlpha = 0.5
)

// Smoother is a one-pole low-pass filter: each Step moves current
// toward target by the fraction Alpha. It removes sample jitter only;
// it does not model dynamics or limit acceleration.
type Smoother struct {
	Alpha float64
}

// Scalar returns current moved toward target by Alpha.
func (s Smoother) Scalar(current, target float64) float64 {
	return current + s.Alpha*(target-current)
}

// Joints applies the filter independently to each of the five arm
// joints.
func (s Smoother) Joints(current, target kinematics.JointAngles) kinematics.JointAngles {
	return current.Lerp(target, s.Alpha)
}
