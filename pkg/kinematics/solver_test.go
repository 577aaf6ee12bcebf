package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const boneTolerance = 1e-4

func testSolver() *Solver {
	// Pepper upper arm / forearm lengths (meters).
	return NewSolver(0.105, 0.056)
}

func trackedOrigin(p mgl64.Vec3) Pose {
	return Pose{Position: p, Orientation: mgl64.QuatIdent(), Tracked: true}
}

func checkBoneLengths(t *testing.T, s *Solver, c Chain) {
	t.Helper()
	if d := math.Abs(c.UpperLen() - s.UpperArm); d > boneTolerance {
		t.Errorf("upper arm length off by %v: got %v, want %v", d, c.UpperLen(), s.UpperArm)
	}
	if d := math.Abs(c.ForearmLen() - s.Forearm); d > boneTolerance {
		t.Errorf("forearm length off by %v: got %v, want %v", d, c.ForearmLen(), s.Forearm)
	}
}

func TestSolve_BoneLengthsPreserved(t *testing.T) {
	s := testSolver()
	origin := trackedOrigin(mgl64.Vec3{0, 0, 0})

	targets := []mgl64.Vec3{
		{0.1, -0.05, 0.1},
		{0.05, 0.05, 0.08},
		{-0.06, -0.1, 0.04},
		{0.0, -0.12, 0.06},
		{0.02, 0.01, 0.14},
	}

	for _, target := range targets {
		chain, err := s.Solve(origin, target)
		if err != nil {
			t.Fatalf("Solve(%v) failed: %v", target, err)
		}
		checkBoneLengths(t, s, chain)
		if chain.Shoulder != origin.Position {
			t.Errorf("shoulder moved: got %v, want %v", chain.Shoulder, origin.Position)
		}
	}
}

func TestSolve_ConvergesToReachableTarget(t *testing.T) {
	s := testSolver()
	origin := trackedOrigin(mgl64.Vec3{0, 0, 0})
	target := mgl64.Vec3{0.1, -0.05, 0.1}

	chain, err := s.Solve(origin, target)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if d := chain.Wrist.Sub(target).Len(); d > s.Tolerance {
		t.Errorf("wrist missed target by %v, want < %v", d, s.Tolerance)
	}
}

func TestSolve_ClampsUnreachableToWorkspaceSphere(t *testing.T) {
	s := testSolver()
	origin := trackedOrigin(mgl64.Vec3{0.02, 0.1, -0.03})
	target := mgl64.Vec3{0.5, -0.3, 0.4} // far outside reach

	chain, err := s.Solve(origin, target)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	checkBoneLengths(t, s, chain)

	// End effector sits on the workspace sphere...
	reach := chain.Wrist.Sub(origin.Position).Len()
	if d := math.Abs(reach - s.WorkspaceRadius()); d > boneTolerance {
		t.Errorf("wrist reach %v, want workspace radius %v", reach, s.WorkspaceRadius())
	}

	// ...in the direction of the original target.
	wantDir := target.Sub(origin.Position).Normalize()
	gotDir := chain.Wrist.Sub(origin.Position).Normalize()
	if gotDir.Sub(wantDir).Len() > 1e-6 {
		t.Errorf("wrist direction %v, want %v", gotDir, wantDir)
	}
}

func TestSolve_PushesOutTooCloseTarget(t *testing.T) {
	s := testSolver()
	origin := trackedOrigin(mgl64.Vec3{0, 0, 0})
	target := mgl64.Vec3{0.001, 0.001, 0.001}

	chain, err := s.Solve(origin, target)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	checkBoneLengths(t, s, chain)

	min := minReachFactor * s.UpperArm
	reach := chain.Wrist.Sub(origin.Position).Len()
	if reach < min-boneTolerance {
		t.Errorf("wrist reach %v, want >= proximity floor %v", reach, min)
	}
}

func TestSolve_StraightArmFastPath(t *testing.T) {
	s := testSolver()
	origin := trackedOrigin(mgl64.Vec3{0, 0, 0})

	// Inside the workspace sphere but beyond 99% of total reach is
	// only possible with a high safety factor.
	s.WorkspaceSafety = 1.0
	dir := mgl64.Vec3{0, 0, 1}
	target := dir.Mul(0.995 * s.TotalReach())

	chain, err := s.Solve(origin, target)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	checkBoneLengths(t, s, chain)

	// Fully extended: elbow lies on the shoulder-wrist segment.
	elbowDir := chain.Elbow.Sub(chain.Shoulder).Normalize()
	if elbowDir.Sub(dir).Len() > 1e-9 {
		t.Errorf("elbow direction %v, want %v", elbowDir, dir)
	}
	if d := chain.Wrist.Sub(chain.Shoulder).Len(); math.Abs(d-s.TotalReach()) > 1e-9 {
		t.Errorf("extended reach %v, want %v", d, s.TotalReach())
	}
}

func TestSolve_NoOrigin(t *testing.T) {
	s := testSolver()
	_, err := s.Solve(Pose{}, mgl64.Vec3{0.1, 0, 0.1})
	if !errors.Is(err, ErrNoOrigin) {
		t.Errorf("got error %v, want ErrNoOrigin", err)
	}
}

func TestSolveWithHint_ElbowOnHintPlane(t *testing.T) {
	s := testSolver()
	origin := trackedOrigin(mgl64.Vec3{0, 0, 0})
	target := mgl64.Vec3{0.06, -0.04, 0.1}
	hint := mgl64.Vec3{0.02, -0.2, 0.02} // pull the elbow down

	chain, err := s.SolveWithHint(origin, target, hint)
	if err != nil {
		t.Fatalf("SolveWithHint failed: %v", err)
	}
	checkBoneLengths(t, s, chain)

	if d := chain.Wrist.Sub(target).Len(); d > s.Tolerance {
		t.Errorf("wrist missed target by %v after hint", d)
	}

	// The elbow must lie on the plane through shoulder, wrist, hint.
	normal := chain.Wrist.Sub(origin.Position).Cross(hint.Sub(origin.Position)).Normalize()
	if off := math.Abs(chain.Elbow.Sub(origin.Position).Dot(normal)); off > 1e-9 {
		t.Errorf("elbow off hint plane by %v", off)
	}

	// And on the hint side of the chain axis.
	if chain.Elbow.Y() >= 0 {
		t.Errorf("elbow y = %v, want below shoulder toward hint", chain.Elbow.Y())
	}
}

func TestSolve_NonzeroShoulderOrigin(t *testing.T) {
	s := testSolver()
	origin := trackedOrigin(mgl64.Vec3{0.15, 1.3, 0.05})
	target := origin.Position.Add(mgl64.Vec3{0.08, -0.06, 0.07})

	chain, err := s.Solve(origin, target)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	checkBoneLengths(t, s, chain)
	if d := chain.Wrist.Sub(target).Len(); d > s.Tolerance {
		t.Errorf("wrist missed target by %v", d)
	}
}
