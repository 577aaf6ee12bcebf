package kinematics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrNoOrigin is returned when the shoulder origin pose is untracked.
// The caller should skip this tick for the affected arm.
var ErrNoOrigin = errors.New("kinematics: shoulder origin unavailable")

const (
	// minReachFactor keeps targets away from the shoulder to avoid
	// near-singular chains. Expressed as a fraction of the upper arm.
	minReachFactor = 0.3

	// straightArmFactor is the fraction of total reach beyond which
	// the chain is returned fully extended without iterating. FABRIK
	// oscillates near full extension.
	straightArmFactor = 0.99

	dirEpsilon = 1e-9
)

// Solver solves a fixed-length two-bone chain (shoulder, elbow, wrist)
// for a target wrist position. Zero-value fields are filled with
// defaults by NewSolver; construct through it.
type Solver struct {
	UpperArm float64 // shoulder-to-elbow length, meters
	Forearm  float64 // elbow-to-wrist length, meters

	// WorkspaceSafety scales total reach into the workspace radius
	// used for target clamping. (0,1]; targets are never solved beyond
	// this derated sphere.
	WorkspaceSafety float64

	Iterations int     // FABRIK pass pairs, default 10
	Tolerance  float64 // early-exit wrist distance, default 1mm
}

// NewSolver returns a solver for the given bone lengths with default
// iteration and tolerance settings and a 95% workspace safety margin.
func NewSolver(upperArm, forearm float64) *Solver {
	return &Solver{
		UpperArm:        upperArm,
		Forearm:         forearm,
		WorkspaceSafety: 0.95,
		Iterations:      10,
		Tolerance:       0.001,
	}
}

// TotalReach returns the chain's full extension length.
func (s *Solver) TotalReach() float64 {
	return s.UpperArm + s.Forearm
}

// WorkspaceRadius returns the derated reach used for target clamping.
func (s *Solver) WorkspaceRadius() float64 {
	return s.WorkspaceSafety * s.TotalReach()
}

// Solve computes a chain from the shoulder origin to the target wrist
// position. Targets outside the workspace sphere are clamped onto it;
// targets too close to the shoulder are pushed out. The returned chain
// always satisfies both bone lengths. Fails only with ErrNoOrigin.
func (s *Solver) Solve(origin Pose, target mgl64.Vec3) (Chain, error) {
	if !origin.Tracked {
		return Chain{}, ErrNoOrigin
	}
	return s.solve(origin.Position, target, nil), nil
}

// SolveWithHint is Solve with an elbow hint: after convergence the
// elbow is projected onto the plane through shoulder, target and hint,
// then re-placed to satisfy both bone lengths exactly. The hint
// resolves the rotational ambiguity of the elbow on its solution
// circle (typically a point below the shoulder for an elbow-down arm).
func (s *Solver) SolveWithHint(origin Pose, target, hint mgl64.Vec3) (Chain, error) {
	if !origin.Tracked {
		return Chain{}, ErrNoOrigin
	}
	return s.solve(origin.Position, target, &hint), nil
}

func (s *Solver) solve(shoulder, target mgl64.Vec3, hint *mgl64.Vec3) Chain {
	target = s.clampTarget(shoulder, target)

	toTarget := target.Sub(shoulder)
	dist := toTarget.Len()
	dir := safeNormalize(toTarget, mgl64.Vec3{0, 0, 1})

	// Straight-arm fast path.
	if dist >= straightArmFactor*s.TotalReach() {
		return Chain{
			Shoulder: shoulder,
			Elbow:    shoulder.Add(dir.Mul(s.UpperArm)),
			Wrist:    shoulder.Add(dir.Mul(s.TotalReach())),
		}
	}

	// Seed along the target direction at each bone length. A fully
	// collinear seed cannot bend, so the elbow is nudged off axis,
	// toward the hint side when a hint is given.
	elbow := shoulder.Add(dir.Mul(s.UpperArm))
	wrist := shoulder.Add(dir.Mul(s.TotalReach()))

	bendRef := mgl64.Vec3{0, 1, 0}
	if hint != nil {
		bendRef = hint.Sub(shoulder)
	}
	nudge := safeNormalize(projectOnPlane(bendRef, dir), perpendicular(dir))
	elbow = elbow.Add(nudge.Mul(0.25 * s.UpperArm))

	for i := 0; i < s.Iterations; i++ {
		// Forward pass: pin the wrist to the target, walk back.
		wrist = target
		elbow = wrist.Add(stepToward(elbow, wrist, s.Forearm))

		// Backward pass: pin the shoulder, walk forward.
		elbow = shoulder.Add(stepToward(elbow, shoulder, s.UpperArm))
		wrist = elbow.Add(stepToward(wrist, elbow, s.Forearm))

		if wrist.Sub(target).Len() < s.Tolerance {
			break
		}
	}

	chain := Chain{Shoulder: shoulder, Elbow: elbow, Wrist: wrist}
	if hint != nil {
		chain = s.applyElbowHint(chain, *hint)
	}
	return chain
}

// clampTarget applies the workspace-radius and minimum-proximity
// clamps. UnreachableTarget is handled here, never surfaced.
func (s *Solver) clampTarget(shoulder, target mgl64.Vec3) mgl64.Vec3 {
	toTarget := target.Sub(shoulder)
	dist := toTarget.Len()
	dir := safeNormalize(toTarget, mgl64.Vec3{0, 0, 1})

	if r := s.WorkspaceRadius(); dist > r {
		return shoulder.Add(dir.Mul(r))
	}
	if min := minReachFactor * s.UpperArm; dist < min {
		return shoulder.Add(dir.Mul(min))
	}
	return target
}

// applyElbowHint re-poses the elbow on the plane through shoulder,
// wrist and hint while keeping both bone lengths exact: the elbow is
// placed on the circle of valid positions at the point nearest its
// plane projection.
func (s *Solver) applyElbowHint(c Chain, hint mgl64.Vec3) Chain {
	axisVec := c.Wrist.Sub(c.Shoulder)
	reach := axisVec.Len()
	if reach < dirEpsilon {
		return c
	}
	axis := axisVec.Mul(1 / reach)

	normal := axisVec.Cross(hint.Sub(c.Shoulder))
	if normal.Len() < dirEpsilon {
		// Hint is collinear with the chain axis; nothing to disambiguate.
		return c
	}
	normal = normal.Normalize()

	// Project the converged elbow onto the hint plane.
	offset := c.Elbow.Sub(c.Shoulder)
	projected := c.Shoulder.Add(offset.Sub(normal.Mul(offset.Dot(normal))))

	// Circle of valid elbows: distance x along the axis, radius h.
	a, b := s.UpperArm, s.Forearm
	x := (reach*reach + a*a - b*b) / (2 * reach)
	h := math.Sqrt(math.Max(a*a-x*x, 0))

	center := c.Shoulder.Add(axis.Mul(x))
	radial := projected.Sub(center)
	radial = radial.Sub(axis.Mul(radial.Dot(axis)))
	radialDir := safeNormalize(radial, projectOnPlane(hint.Sub(center), axis))

	c.Elbow = center.Add(radialDir.Mul(h))
	return c
}

// stepToward returns a vector of the given length pointing from anchor
// toward p. Degenerate directions fall back to +Z so the chain never
// collapses to NaN.
func stepToward(p, anchor mgl64.Vec3, length float64) mgl64.Vec3 {
	return safeNormalize(p.Sub(anchor), mgl64.Vec3{0, 0, 1}).Mul(length)
}

// perpendicular returns an arbitrary unit vector orthogonal to d.
func perpendicular(d mgl64.Vec3) mgl64.Vec3 {
	p := d.Cross(mgl64.Vec3{0, 1, 0})
	if p.Len() < dirEpsilon {
		p = d.Cross(mgl64.Vec3{1, 0, 0})
	}
	return safeNormalize(p, mgl64.Vec3{1, 0, 0})
}

// safeNormalize normalizes v, substituting fallback when v is too
// short to carry a direction.
func safeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	if l := v.Len(); l >= dirEpsilon {
		return v.Mul(1 / l)
	}
	if l := fallback.Len(); l >= dirEpsilon {
		return fallback.Mul(1 / l)
	}
	return mgl64.Vec3{0, 0, 1}
}
