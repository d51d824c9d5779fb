package robot

import (
	"encoding/json"
	"fmt"
	"os"
)

// JointLimit holds the allowed angle range for a single joint, in radians.
type JointLimit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Limits holds joint limits for the arm, keyed by joint name.
// Joints without an entry are unconstrained.
type Limits map[JointName]JointLimit

// DefaultLimits returns the mechanical range of the youBot arm joints,
// measured from the home configuration.
func DefaultLimits() Limits {
	return Limits{
		Joint1: {Min: -2.932, Max: 2.932},
		Joint2: {Min: -1.117, Max: 1.553},
		Joint3: {Min: -2.620, Max: 2.530},
		Joint4: {Min: -1.780, Max: 1.780},
		Joint5: {Min: -2.890, Max: 2.890},
	}
}

// LoadLimits loads joint limits from a JSON file.
func LoadLimits(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits file: %w", err)
	}

	// Parse into a map with string keys first
	var raw map[string]JointLimit
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse limits JSON: %w", err)
	}

	limits := make(Limits, len(raw))
	for name, jl := range raw {
		if JointName(name).Index() < 0 {
			return nil, fmt.Errorf("unknown joint %q in limits", name)
		}
		limits[JointName(name)] = jl
	}

	return limits, nil
}

// Contains reports whether angle lies within the limit.
func (l JointLimit) Contains(angle float64) bool {
	return angle >= l.Min && angle <= l.Max
}

// Normalize maps an angle to [-100, 100] across the joint's range.
func (l JointLimit) Normalize(angle float64) float64 {
	rangeSize := l.Max - l.Min
	if rangeSize == 0 {
		return 0
	}
	return ((angle-l.Min)/rangeSize)*200 - 100
}

// Positions returns each arm joint of cfg as a percentage of its range in
// [-100, 100], in joint order. Joints without a limit report 0.
func (l Limits) Positions(cfg Config) [5]float64 {
	var out [5]float64
	for i, name := range AllJoints() {
		if jl, ok := l[name]; ok {
			out[i] = jl.Normalize(cfg.Arm[i])
		}
	}
	return out
}

// Violations returns the joints of cfg that lie outside their limits, in
// joint order.
func (l Limits) Violations(cfg Config) []JointName {
	var out []JointName
	for i, name := range AllJoints() {
		jl, ok := l[name]
		if !ok {
			continue
		}
		if !jl.Contains(cfg.Arm[i]) {
			out = append(out, name)
		}
	}
	return out
}

// Worsened returns the joints that are outside their limits in next and
// further from the allowed range than in cur. Moving back toward the range is
// always allowed.
func (l Limits) Worsened(cur, next Config) []JointName {
	var out []JointName
	for i, name := range AllJoints() {
		jl, ok := l[name]
		if !ok {
			continue
		}
		if jl.excess(next.Arm[i]) > jl.excess(cur.Arm[i]) {
			out = append(out, name)
		}
	}
	return out
}

// excess is the distance from angle to the allowed range, zero inside it.
func (l JointLimit) excess(angle float64) float64 {
	switch {
	case angle < l.Min:
		return l.Min - angle
	case angle > l.Max:
		return angle - l.Max
	default:
		return 0
	}
}
