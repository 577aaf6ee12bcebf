package robot

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed pepper_joint_limits.json
var defaultLimitsJSON []byte

// Range is one joint's permitted interval, radians.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Limits clamps joint targets to Pepper's mechanical ranges so no
// unsafe angle ever reaches the motor daemon, keeping the physical
// safety envelope separate from the control logic.
type Limits struct {
	ranges map[string]Range
}

// DefaultLimits returns the embedded Pepper joint table.
func DefaultLimits() *Limits {
	l, err := ParseLimits(defaultLimitsJSON)
	if err != nil {
		// The embedded table is validated by tests; this cannot
		// happen at runtime.
		panic(fmt.Sprintf("robot: embedded joint limits invalid: %v", err))
	}
	return l
}

// LoadLimits reads a joint table from a JSON file, for robots with
// non-stock ranges.
func LoadLimits(path string) (*Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read joint limits: %w", err)
	}
	return ParseLimits(data)
}

// ParseLimits decodes a joint table from JSON.
func ParseLimits(data []byte) (*Limits, error) {
	ranges := make(map[string]Range)
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("parse joint limits: %w", err)
	}
	for name, r := range ranges {
		if r.Min > r.Max {
			return nil, fmt.Errorf("joint %s: min %v > max %v", name, r.Min, r.Max)
		}
	}
	return &Limits{ranges: ranges}, nil
}

// Clamp restricts value to the named joint's range. Joints missing
// from the table pass through unchanged.
func (l *Limits) Clamp(joint string, value float64) float64 {
	r, ok := l.ranges[joint]
	if !ok {
		return value
	}
	if value < r.Min {
		return r.Min
	}
	if value > r.Max {
		return r.Max
	}
	return value
}

// Has reports whether the table defines a range for the joint.
func (l *Limits) Has(joint string) bool {
	_, ok := l.ranges[joint]
	return ok
}
