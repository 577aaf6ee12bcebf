package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// projEpsilon is the squared-length floor below which a projected
// vector no longer carries a usable direction.
const projEpsilon = 1e-8

// MapJoints decomposes a solved chain plus the hand orientation into
// Pepper's five arm joints, relative to the shoulder frame.
//
// Conventions (radians, right arm):
//   - ShoulderPitch: rotation about the frame's right axis from forward
//     to the upper arm. 0 = arm forward, negative = raised.
//   - ShoulderRoll: rotation about the frame's forward axis from up to
//     the upper arm.
//   - ElbowRoll: arm bend. 0 = straight, increasingly negative as the
//     elbow closes.
//   - WristYaw: twist of the hand's up axis about the forearm relative
//     to the frame's up axis.
//   - ElbowYaw: rotation of the hand's forward axis about the elbow
//     plane normal relative to the forearm.
//
// The left arm's parameterization is the mirror of the right's: left
// inputs are reflected across the sagittal plane into right-arm space,
// decomposed, and ShoulderRoll, ElbowYaw and WristYaw negated.
//
// Degenerate projections (a direction parallel to its measurement
// axis) fall back to the reference direction, yielding angle 0. The
// result is never NaN.
func MapJoints(chain Chain, hand mgl64.Quat, frame ShoulderFrame, side Side) JointAngles {
	upper := safeNormalize(chain.Elbow.Sub(chain.Shoulder), frame.Forward)
	fore := safeNormalize(chain.Wrist.Sub(chain.Elbow), upper)

	handForward := hand.Rotate(frame.Forward)
	handUp := hand.Rotate(frame.Up)

	if side == Left {
		upper = reflect(upper, frame.Right)
		fore = reflect(fore, frame.Right)
		handForward = reflect(handForward, frame.Right)
		handUp = reflect(handUp, frame.Right)
	}

	// Bend between the two segments: collinear segments read 0.
	elbowRoll := -angleBetween(upper, fore)

	shoulderPitch := signedAngle(frame.Forward, upper, frame.Right)
	shoulderRoll := signedAngle(frame.Up, upper, frame.Forward)

	wristYaw := signedAngle(frame.Up, handUp, fore)

	// The elbow plane normal is undefined for a straight arm; fall
	// back to a lateral axis so the angle stays stable.
	elbowNormal := upper.Cross(fore)
	if elbowNormal.Len() < 1e-6 {
		elbowNormal = upper.Cross(frame.Up)
	}
	elbowNormal = safeNormalize(elbowNormal, frame.Right)
	elbowYaw := signedAngle(fore, handForward, elbowNormal)

	if side == Left {
		shoulderRoll = -shoulderRoll
		elbowYaw = -elbowYaw
		wristYaw = -wristYaw
	}

	return JointAngles{
		ShoulderPitch: shoulderPitch,
		ShoulderRoll:  shoulderRoll,
		ElbowYaw:      elbowYaw,
		ElbowRoll:     elbowRoll,
		WristYaw:      wristYaw,
	}
}

// signedAngle measures the rotation about axis taking from to to, both
// projected onto the plane orthogonal to axis. Range (-pi, pi]. When
// either projection degenerates (vector parallel to axis) the result
// is 0: the degenerate input is treated as the reference direction.
func signedAngle(from, to, axis mgl64.Vec3) float64 {
	f := projectOnPlane(from, axis)
	t := projectOnPlane(to, axis)
	if f.Dot(f) < projEpsilon || t.Dot(t) < projEpsilon {
		return 0
	}
	return math.Atan2(f.Cross(t).Dot(axis), f.Dot(t))
}

// angleBetween returns the unsigned angle between two vectors, [0, pi].
func angleBetween(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < dirEpsilon || lb < dirEpsilon {
		return 0
	}
	return math.Acos(clamp(a.Dot(b)/(la*lb), -1, 1))
}

// projectOnPlane removes the component of v along axis. axis must be
// unit length.
func projectOnPlane(v, axis mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(axis.Mul(v.Dot(axis)))
}

// reflect mirrors v across the plane orthogonal to the unit normal n.
func reflect(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// MirrorAcrossSagittal reflects a point across the plane orthogonal to
// the frame's right axis through the origin. Used by tests and by
// callers that derive one arm's workspace from the other's.
func MirrorAcrossSagittal(p mgl64.Vec3, frame ShoulderFrame) mgl64.Vec3 {
	return p.Sub(frame.Right.Mul(2 * p.Dot(frame.Right)))
}
