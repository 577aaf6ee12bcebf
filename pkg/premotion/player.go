// Package premotion plays named, scripted whole-body animations on the
// robot. One motion runs at a time in a background goroutine so the
// command server stays responsive; the gateway blocks live mimicry
// while a motion is playing.
package premotion

import (
	"sync"
	"time"

	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/robot"
)

// neutralPosture is where the robot returns after every motion,
// whether it completed or was stopped.
const neutralPosture = "Stand"

// Player runs one motion at a time against the motor daemon. Scripted
// angles pass through the joint-limit table like every other command.
type Player struct {
	proxy  robot.Proxy
	limits *robot.Limits

	mu      sync.Mutex
	playing bool
	stop    chan struct{}
}

// NewPlayer creates a player. limits may not be nil.
func NewPlayer(proxy robot.Proxy, limits *robot.Limits) *Player {
	return &Player{proxy: proxy, limits: limits}
}

// IsPlaying reports whether a motion is currently active.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Play starts the named motion in the background. It returns
// ErrUnknownMotion for unregistered names and ErrAlreadyPlaying when a
// motion is still running.
func (p *Player) Play(name string) error {
	motion, ok := Lookup(name)
	if !ok {
		return ErrUnknownMotion
	}
	return p.start(motion)
}

// Stop cancels the running motion, if any. The motion goroutine still
// returns the robot to the neutral posture before finishing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
}

func (p *Player) start(motion Motion) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}
	p.playing = true
	p.stop = make(chan struct{})
	stop := p.stop
	p.mu.Unlock()

	go p.run(motion, stop)
	return nil
}

func (p *Player) run(motion Motion, stop chan struct{}) {
	log.Info("pre-motion started", "name", motion.Name)
	defer func() {
		if err := p.proxy.GoToPosture(neutralPosture, 0.5); err != nil {
			log.Error("pre-motion: posture reset failed", "error", err)
		}
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
		log.Info("pre-motion finished", "name", motion.Name)
	}()

	for _, s := range p.clampedSteps(motion) {
		if err := p.proxy.SetAngles(s.Joints, s.Angles, s.Speed); err != nil {
			log.Error("pre-motion step failed", "name", motion.Name, "error", err)
			return
		}
		if !sleepOrStop(s.Hold, stop) {
			log.Info("pre-motion cancelled", "name", motion.Name)
			return
		}
	}
}

// clampedSteps returns the motion's steps with every angle clamped to
// the joint table.
func (p *Player) clampedSteps(motion Motion) []Step {
	steps := make([]Step, len(motion.Steps))
	for i, s := range motion.Steps {
		angles := make([]float64, len(s.Angles))
		for j, joint := range s.Joints {
			angles[j] = p.limits.Clamp(joint, s.Angles[j])
		}
		steps[i] = Step{Joints: s.Joints, Angles: angles, Speed: s.Speed, Hold: s.Hold}
	}
	return steps
}

// sleepOrStop waits for d, returning false if stop closes first.
func sleepOrStop(d time.Duration, stop <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	}
}
