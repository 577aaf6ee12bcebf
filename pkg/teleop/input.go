package teleop

import "github.com/teslashibe/go-pepper/pkg/kinematics"

// Hand is one controller's sample for a tick. Stick values are
// deadzone-corrected by the pose source, each axis in [-1, 1].
type Hand struct {
	Pose    kinematics.Pose
	Grip    bool       // momentary engagement signal
	Trigger float64    // 0 released .. 1 fully pulled
	Stick   [2]float64 // x (lateral), y (forward)
}

// Frame is one tick's input snapshot. The pipeline copies the fields
// it needs and never retains the frame.
type Frame struct {
	Head  kinematics.Pose
	Left  Hand
	Right Hand
}

// PoseSource supplies one Frame per tick. ok is false when the source
// has no sample this tick (device not ready, tracking lost entirely);
// the pipeline then skips the tick's output.
type PoseSource interface {
	Sample() (frame Frame, ok bool)
}
