package premotion

import "time"

// Step is one scripted command: move the named joints to the given
// angles at a fractional speed, then hold before the next step.
type Step struct {
	Joints []string
	Angles []float64
	Speed  float64
	Hold   time.Duration
}

// Motion is a named step sequence.
type Motion struct {
	Name  string
	Steps []Step
}

// step is a shorthand constructor for the scripted sequences below.
func step(hold time.Duration, speed float64, joints []string, angles []float64) Step {
	return Step{Joints: joints, Angles: angles, Speed: speed, Hold: hold}
}

func one(hold time.Duration, speed float64, joint string, angle float64) Step {
	return step(hold, speed, []string{joint}, []float64{angle})
}

// waveMotion raises the right arm and waves the wrist three times.
func waveMotion() Motion {
	steps := []Step{
		one(500*time.Millisecond, 0.2, "RShoulderPitch", -0.5),
		one(500*time.Millisecond, 0.2, "RShoulderRoll", -1.2),
		one(500*time.Millisecond, 0.2, "RElbowRoll", 1.5),
	}
	for i := 0; i < 3; i++ {
		steps = append(steps,
			one(500*time.Millisecond, 0.4, "RWristYaw", -1.0),
			one(500*time.Millisecond, 0.4, "RWristYaw", 1.0),
		)
	}
	return Motion{Name: "wave", Steps: steps}
}

// danceMotion is a whole-body routine: crouch, hip oscillation, arm
// pumps, and a finale pose.
func danceMotion() Motion {
	steps := []Step{
		one(300*time.Millisecond, 0.3, "KneePitch", 0.5),
	}
	for i := 0; i < 6; i++ {
		steps = append(steps,
			step(150*time.Millisecond, 0.8,
				[]string{"HipPitch", "HeadPitch"}, []float64{0.15, -0.2}),
			step(150*time.Millisecond, 0.8,
				[]string{"HipPitch", "HeadPitch"}, []float64{-0.15, 0.2}),
		)
	}
	for i := 0; i < 4; i++ {
		steps = append(steps,
			step(150*time.Millisecond, 0.6,
				[]string{"LShoulderPitch", "RShoulderPitch", "HipPitch"},
				[]float64{-1.0, -1.0, 0.15}),
			step(150*time.Millisecond, 0.6,
				[]string{"LShoulderPitch", "RShoulderPitch", "HipPitch"},
				[]float64{0.5, 0.5, -0.15}),
		)
	}
	steps = append(steps,
		step(500*time.Millisecond, 0.4,
			[]string{"LShoulderPitch", "RShoulderPitch", "KneePitch"},
			[]float64{-1.5, -1.5, 0.8}),
		one(300*time.Millisecond, 0.5, "KneePitch", 0.0),
		step(500*time.Millisecond, 0.3,
			[]string{"LShoulderPitch", "RShoulderPitch", "LElbowRoll", "RElbowRoll"},
			[]float64{-0.5, -0.5, -1.5, 1.5}),
	)
	return Motion{Name: "dance", Steps: steps}
}

var registry = func() map[string]Motion {
	motions := map[string]Motion{}
	for _, m := range []Motion{waveMotion(), danceMotion()} {
		motions[m.Name] = m
	}
	// Historic alias kept for older operator builds.
	motions["special_dance"] = motions["dance"]
	return motions
}()

// Lookup returns the motion registered under name.
func Lookup(name string) (Motion, bool) {
	m, ok := registry[name]
	return m, ok
}

// Names lists the registered motion names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
