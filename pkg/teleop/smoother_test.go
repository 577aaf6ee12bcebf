package teleop

import (
	"math"
	"testing"

	"github.com/teslashibe/go-pepper/pkg/kinematics"
)

func TestSmoother_ScalarConvergesToFixedPoint(t *testing.T) {
	s := Smoother{Alpha: 0.25}
	current, target := 0.0, 1.3

	for i := 0; i < 100; i++ {
		current = s.Scalar(current, target)
	}
	if math.Abs(current-target) > 1e-6 {
		t.Fatalf("did not converge: current=%v target=%v", current, target)
	}

	// Further ticks must leave a converged value stable.
	settled := current
	for i := 0; i < 10; i++ {
		settled = s.Scalar(settled, target)
	}
	if math.Abs(settled-current) > 1e-9 {
		t.Errorf("fixed point drifted: %v -> %v", current, settled)
	}
}

func TestSmoother_StepIsMonotonic(t *testing.T) {
	s := Smoother{Alpha: 0.3}
	current, target := -0.5, 0.8
	for i := 0; i < 50; i++ {
		next := s.Scalar(current, target)
		if next < current || next > target {
			t.Fatalf("tick %d: %v stepped to %v, outside [%v, %v]", i, current, next, current, target)
		}
		current = next
	}
}

func TestSmoother_JointsFilterIndependently(t *testing.T) {
	s := Smoother{Alpha: 0.5}
	current := kinematics.JointAngles{}
	target := kinematics.JointAngles{
		ShoulderPitch: 1.0,
		ShoulderRoll:  -0.4,
		ElbowYaw:      0.2,
		ElbowRoll:     -1.2,
		WristYaw:      0.7,
	}

	got := s.Joints(current, target)
	want := kinematics.JointAngles{
		ShoulderPitch: 0.5,
		ShoulderRoll:  -0.2,
		ElbowYaw:      0.1,
		ElbowRoll:     -0.6,
		WristYaw:      0.35,
	}
	if got.MaxAbsDelta(want) > 1e-12 {
		t.Errorf("one step: got %+v, want %+v", got, want)
	}
}
