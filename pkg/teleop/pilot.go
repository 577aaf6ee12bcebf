package teleop

import (
	"context"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/dispatch"
	"github.com/teslashibe/go-pepper/pkg/kinematics"
	"github.com/teslashibe/go-pepper/pkg/protocol"
	"github.com/teslashibe/go-pepper/pkg/transport"
)

const (
	// settleEpsilon is the per-joint threshold below which a released
	// arm is considered settled and stops producing commands.
	settleEpsilon = 1e-3

	// baseEpsilon is the stick magnitude below which the base is
	// considered stopped.
	baseEpsilon = 1e-3
)

// Options configures the pilot. Zero values fall back to defaults.
type Options struct {
	UpperArm float64 // shoulder-to-elbow length, metres
	Forearm  float64 // elbow-to-wrist length, metres
	TickHz   int

	ArmAlpha  float64
	HeadAlpha float64
	HandAlpha float64

	ArmSpeed  float64 // NAOqi fractional speed for arm moves
	HeadSpeed float64

	// ShoulderOffset places the right shoulder relative to the head
	// position; the left shoulder mirrors the lateral component.
	ShoulderOffset mgl64.Vec3

	MaxLinear  float64 // m/s at full stick deflection
	MaxAngular float64 // rad/s at full stick deflection
}

func (o *Options) applyDefaults() {
	if o.UpperArm <= 0 {
		o.UpperArm = 0.105
	}
	if o.Forearm <= 0 {
		o.Forearm = 0.056
	}
	if o.TickHz <= 0 {
		o.TickHz = 30
	}
	if o.ArmAlpha <= 0 {
		o.ArmAlpha = DefaultArmAlpha
	}
	if o.HeadAlpha <= 0 {
		o.HeadAlpha = DefaultHeadAlpha
	}
	if o.HandAlpha <= 0 {
		o.HandAlpha = DefaultHandAlpha
	}
	if o.ArmSpeed <= 0 {
		o.ArmSpeed = 0.2
	}
	if o.HeadSpeed <= 0 {
		o.HeadSpeed = 0.2
	}
	if o.ShoulderOffset == (mgl64.Vec3{}) {
		o.ShoulderOffset = mgl64.Vec3{0.08, -0.12, 0}
	}
	if o.MaxLinear <= 0 {
		o.MaxLinear = 0.35
	}
	if o.MaxAngular <= 0 {
		o.MaxAngular = 1.0
	}
}

// armRig is one arm's pipeline state: solver, engagement gate, and the
// two joint sets carried between ticks. target is frozen on release;
// current keeps interpolating toward it until it settles.
type armRig struct {
	side   kinematics.Side
	solver *kinematics.Solver
	engage Engagement
	frame  kinematics.ShoulderFrame
	offset mgl64.Vec3

	hasTarget bool
	target    kinematics.JointAngles
	current   kinematics.JointAngles
}

// Pilot runs the tick pipeline: sample poses, gate arms through
// engagement, solve and map joint targets, smooth every channel, and
// enqueue commands. All state is owned by the tick goroutine;
// transport events are drained into the tick as explicit transitions
// rather than handled on the transport's goroutine.
type Pilot struct {
	source PoseSource
	queue  *dispatch.Queue
	events <-chan transport.Event
	opts   Options

	arms       [2]*armRig // index 0 right, 1 left
	armFilter  Smoother
	headFilter Smoother
	handFilter Smoother

	headHasTarget           bool
	headYaw, headYawTgt     float64
	headPitch, headPitchTgt float64

	hand          [2]float64 // current openness
	handTgt       [2]float64
	handHasTarget bool

	baseActive bool
}

// NewPilot wires a pose source to the dispatch queue. events may be
// nil when no transport drives the queue (tests own the queue state).
func NewPilot(source PoseSource, queue *dispatch.Queue, events <-chan transport.Event, opts Options) *Pilot {
	opts.applyDefaults()

	leftOffset := opts.ShoulderOffset
	leftOffset[0] = -leftOffset[0]

	p := &Pilot{
		source:     source,
		queue:      queue,
		events:     events,
		opts:       opts,
		armFilter:  Smoother{Alpha: opts.ArmAlpha},
		headFilter: Smoother{Alpha: opts.HeadAlpha},
		handFilter: Smoother{Alpha: opts.HandAlpha},
	}
	p.arms[0] = &armRig{
		side:   kinematics.Right,
		solver: kinematics.NewSolver(opts.UpperArm, opts.Forearm),
		frame:  kinematics.DefaultShoulderFrame(),
		offset: opts.ShoulderOffset,
	}
	p.arms[1] = &armRig{
		side:   kinematics.Left,
		solver: kinematics.NewSolver(opts.UpperArm, opts.Forearm),
		frame:  kinematics.DefaultShoulderFrame(),
		offset: leftOffset,
	}
	return p
}

// Run drives the pipeline at the configured tick rate until ctx is
// cancelled.
func (p *Pilot) Run(ctx context.Context) {
	interval := time.Second / time.Duration(p.opts.TickHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("pilot running", "tick_hz", p.opts.TickHz)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drainEvents()
			if frame, ok := p.source.Sample(); ok {
				p.Tick(frame)
			}
		}
	}
}

// drainEvents folds pending transport notifications into queue state.
// Never blocks.
func (p *Pilot) drainEvents() {
	for {
		select {
		case ev := <-p.events:
			switch ev.Kind {
			case transport.Opened:
				p.queue.SetState(dispatch.Connected)
			case transport.Closed, transport.Failed:
				p.queue.SetState(dispatch.Disconnected)
			case transport.Inbound:
				// Liveness only; no command consumes gateway replies.
			}
		default:
			return
		}
	}
}

// Tick processes one input frame. A fault on any channel skips that
// channel's output for the tick and never stops the loop.
func (p *Pilot) Tick(frame Frame) {
	p.tickArm(p.arms[0], frame.Head, frame.Right)
	p.tickArm(p.arms[1], frame.Head, frame.Left)
	p.tickHead(frame.Head)
	p.tickHands(frame)
	p.tickBase(frame)
}

func (p *Pilot) tickArm(rig *armRig, head kinematics.Pose, hand Hand) {
	state := rig.engage.Update(hand.Grip)

	if state == Mimicking && head.Tracked && hand.Pose.Tracked {
		shoulder := head.Position.Add(rig.offset)
		origin := kinematics.Pose{Position: shoulder, Tracked: true}
		// Elbow-down preference: hint below and slightly behind the
		// shoulder.
		hint := shoulder.Add(mgl64.Vec3{0, -0.2, -0.05})

		chain, err := rig.solver.SolveWithHint(origin, hand.Pose.Position, hint)
		if err != nil {
			log.Debug("arm solve skipped", "side", rig.side, "error", err)
		} else {
			rig.target = kinematics.MapJoints(chain, hand.Pose.Orientation, rig.frame, rig.side)
			rig.hasTarget = true
		}
	}

	if !rig.hasTarget {
		return
	}
	// While Idle the frozen target keeps pulling current until it
	// settles; then the arm goes quiet.
	if state == Idle && rig.current.MaxAbsDelta(rig.target) <= settleEpsilon {
		return
	}
	rig.current = p.armFilter.Joints(rig.current, rig.target)

	msg, err := protocol.NewArmMove(string(rig.side), toWireJoints(rig.side, rig.current), p.opts.ArmSpeed)
	if err != nil {
		log.Error("arm command build failed", "side", rig.side, "error", err)
		return
	}
	p.queue.EnqueueOrSend(msg)
}

func (p *Pilot) tickHead(head kinematics.Pose) {
	if head.Tracked {
		p.headYawTgt, p.headPitchTgt = headYawPitch(head.Orientation)
		p.headHasTarget = true
	}
	if !p.headHasTarget {
		return
	}
	p.headYaw = p.headFilter.Scalar(p.headYaw, p.headYawTgt)
	p.headPitch = p.headFilter.Scalar(p.headPitch, p.headPitchTgt)

	msg, err := protocol.NewHeadMove(p.headYaw, p.headPitch, p.opts.HeadSpeed)
	if err != nil {
		log.Error("head command build failed", "error", err)
		return
	}
	p.queue.EnqueueOrSend(msg)
}

func (p *Pilot) tickHands(frame Frame) {
	p.handTgt[0] = 1 - clamp01(frame.Right.Trigger)
	p.handTgt[1] = 1 - clamp01(frame.Left.Trigger)
	if !p.handHasTarget {
		// Start from the open pose so the first tick does not sweep
		// the hands shut.
		p.hand = p.handTgt
		p.handHasTarget = true
	}

	sides := [2]kinematics.Side{kinematics.Right, kinematics.Left}
	for i, side := range sides {
		p.hand[i] = p.handFilter.Scalar(p.hand[i], p.handTgt[i])
		msg, err := protocol.NewHandMove(string(side), p.hand[i])
		if err != nil {
			log.Error("hand command build failed", "side", side, "error", err)
			continue
		}
		p.queue.EnqueueOrSend(msg)
	}
}

// tickBase maps the left stick to linear velocity and the right stick
// to rotation. It sends continuously while driving and one final zero
// command when the sticks return to centre.
func (p *Pilot) tickBase(frame Frame) {
	vx := frame.Left.Stick[1] * p.opts.MaxLinear
	vy := -frame.Left.Stick[0] * p.opts.MaxLinear
	wz := -frame.Right.Stick[0] * p.opts.MaxAngular

	moving := math.Abs(vx) > baseEpsilon || math.Abs(vy) > baseEpsilon || math.Abs(wz) > baseEpsilon
	if !moving {
		if !p.baseActive {
			return
		}
		vx, vy, wz = 0, 0, 0
	}
	p.baseActive = moving

	msg, err := protocol.NewBaseMove([2]float64{vx, vy}, wz)
	if err != nil {
		log.Error("base command build failed", "error", err)
		return
	}
	p.queue.EnqueueOrSend(msg)
}

// EmergencyStop sends an immediate halt, bypassing engagement and
// smoothing.
func (p *Pilot) EmergencyStop() {
	msg, err := protocol.NewEmergencyStop()
	if err != nil {
		log.Error("emergency stop build failed", "error", err)
		return
	}
	p.queue.EnqueueOrSend(msg)
}

// PlayPreMotion requests a named pre-set motion on the immediate path.
func (p *Pilot) PlayPreMotion(name string) {
	msg, err := protocol.NewPreMotion(name)
	if err != nil {
		log.Error("pre-motion build failed", "name", name, "error", err)
		return
	}
	p.queue.EnqueueOrSend(msg)
}

// StopPreMotion cancels a running pre-set motion on the immediate path.
func (p *Pilot) StopPreMotion() {
	msg, err := protocol.NewPreMotionStop()
	if err != nil {
		log.Error("pre-motion stop build failed", "error", err)
		return
	}
	p.queue.EnqueueOrSend(msg)
}

// ArmState returns the engagement state for one side. Used by the HUD
// and by tests.
func (p *Pilot) ArmState(side kinematics.Side) LimbState {
	for _, rig := range p.arms {
		if rig.side == side {
			return rig.engage.State()
		}
	}
	return Idle
}

// headYawPitch extracts Pepper head angles from the headset
// orientation: yaw positive turning left, pitch positive looking down,
// matching the NAOqi HeadYaw/HeadPitch conventions.
func headYawPitch(q mgl64.Quat) (yaw, pitch float64) {
	forward := q.Rotate(mgl64.Vec3{0, 0, 1})
	yaw = -math.Atan2(forward.X(), forward.Z())
	pitch = -math.Asin(clampUnit(forward.Y()))
	return yaw, pitch
}

// toWireJoints converts mapper output to the NAOqi angle conventions
// the gateway clamps against. The mapper's elbow bend is negative for
// both sides, but NAOqi's RElbowRoll range is positive-only, so the
// right side's bend flips sign here, mirroring the left-side
// negations already applied inside the mapper.
func toWireJoints(side kinematics.Side, j kinematics.JointAngles) protocol.Joints {
	elbowRoll := j.ElbowRoll
	if side == kinematics.Right {
		elbowRoll = -elbowRoll
	}
	return protocol.Joints{
		ShoulderPitch: j.ShoulderPitch,
		ShoulderRoll:  j.ShoulderRoll,
		ElbowYaw:      j.ElbowYaw,
		ElbowRoll:     elbowRoll,
		WristYaw:      j.WristYaw,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
