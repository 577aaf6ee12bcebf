package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/kinematics"
	"github.com/teslashibe/go-pepper/pkg/teleop"
)

// wirePose is the host's JSON pose encoding: position xyz, orientation
// wxyz quaternion.
type wirePose struct {
	Position    [3]float64 `json:"pos"`
	Orientation [4]float64 `json:"quat"`
	Tracked     bool       `json:"tracked"`
}

type wireHand struct {
	Pose    wirePose   `json:"pose"`
	Grip    bool       `json:"grip"`
	Trigger float64    `json:"trigger"`
	Stick   [2]float64 `json:"stick"`
}

// wireFrame is one input sample from the VR host process, one JSON
// object per line on stdin.
type wireFrame struct {
	Head  wirePose `json:"head"`
	Left  wireHand `json:"left"`
	Right wireHand `json:"right"`
}

// stdinSource adapts the host's frame feed to the pilot. The reader
// goroutine keeps only the latest frame: the pilot samples at its own
// rate and stale frames are worthless.
type stdinSource struct {
	r io.Reader

	mu    sync.Mutex
	frame teleop.Frame
	valid bool
}

func newStdinSource(r io.Reader) *stdinSource {
	return &stdinSource{r: r}
}

// Sample returns the most recent frame, if any has arrived yet.
func (s *stdinSource) Sample() (teleop.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.valid
}

// run reads frames until EOF or cancellation.
func (s *stdinSource) run(ctx context.Context) {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		var wf wireFrame
		if err := json.Unmarshal(scanner.Bytes(), &wf); err != nil {
			log.Warn("bad input frame", "error", err)
			continue
		}
		frame := teleop.Frame{
			Head:  toPose(wf.Head),
			Left:  toHand(wf.Left),
			Right: toHand(wf.Right),
		}
		s.mu.Lock()
		s.frame = frame
		s.valid = true
		s.mu.Unlock()
	}
	if err := scanner.Err(); err != nil {
		log.Error("input feed failed", "error", err)
	} else {
		log.Info("input feed closed")
	}
}

func toPose(p wirePose) kinematics.Pose {
	return kinematics.Pose{
		Position:    mgl64.Vec3{p.Position[0], p.Position[1], p.Position[2]},
		Orientation: mgl64.Quat{W: p.Orientation[0], V: mgl64.Vec3{p.Orientation[1], p.Orientation[2], p.Orientation[3]}},
		Tracked:     p.Tracked,
	}
}

func toHand(h wireHand) teleop.Hand {
	return teleop.Hand{
		Pose:    toPose(h.Pose),
		Grip:    h.Grip,
		Trigger: h.Trigger,
		Stick:   h.Stick,
	}
}
