package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"go.uber.org/multierr"
)

const DefaultConfigFile = "youbot.json"

// Trajectory interpolation methods.
const (
	MethodScrew     = "screw"
	MethodCartesian = "cartesian"
)

// CubePose is a cube resting on the floor.
type CubePose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// Settings holds the task and controller configuration.
type Settings struct {
	Scenario string `json:"scenario"`

	// Initial is the actual starting configuration of the robot. The
	// reference trajectory always starts from the home pose, so any offset
	// here shows up as initial tracking error.
	Initial Config `json:"initial"`

	CubeInitial CubePose `json:"cube_initial"`
	CubeFinal   CubePose `json:"cube_final"`

	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`

	K              int     `json:"k"`
	MaxSpeed       float64 `json:"max_speed"`
	StandoffHeight float64 `json:"standoff_height"`
	Method         string  `json:"method"`
	TimeScaling    int     `json:"time_scaling"`
	Damping        float64 `json:"damping"`
	PinvTolerance  float64 `json:"pinv_tolerance"`

	JointLimits bool   `json:"joint_limits"`
	Limits      Limits `json:"limits,omitempty"`
}

// DefaultConfig returns the "best" scenario.
func DefaultConfig() *Settings {
	s, _ := Scenario("best")
	return s
}

var scenarios = map[string]func(*Settings){
	// Well-tuned feedforward plus proportional control.
	"best": func(s *Settings) {
		s.Kp, s.Ki = 1.5, 0
	},
	// Large integral gain: visible overshoot before settling.
	"overshoot": func(s *Settings) {
		s.Kp, s.Ki = 3, 6
	},
	// Different cube placement with light integral action.
	"newTask": func(s *Settings) {
		s.Kp, s.Ki = 2, 0.02
		s.CubeInitial = CubePose{X: 1, Y: -0.3, Theta: 0}
		s.CubeFinal = CubePose{X: 0, Y: -1.1, Theta: -math.Pi / 2}
	},
}

// ScenarioNames returns the built-in scenario names, sorted.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scenario returns the settings of a built-in scenario.
func Scenario(name string) (*Settings, error) {
	apply, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	s := &Settings{
		Scenario: name,
		Initial: Config{
			Chassis: Chassis{Phi: 0.3, X: -0.2, Y: 0.1},
			Arm:     [5]float64{0, -0.2, -0.4, -0.6, 0},
		},
		CubeInitial:    CubePose{X: 1, Y: 0, Theta: 0},
		CubeFinal:      CubePose{X: 0, Y: -1, Theta: -math.Pi / 2},
		K:              1,
		MaxSpeed:       15,
		StandoffHeight: 0.25,
		Method:         MethodScrew,
		TimeScaling:    3,
		Damping:        0.01,
		PinvTolerance:  1e-6,
		Limits:         DefaultLimits(),
	}
	apply(s)
	return s, nil
}

// Validate reports every invalid field.
func (s *Settings) Validate() error {
	var err error
	if s.K < 1 {
		err = multierr.Append(err, fmt.Errorf("k must be at least 1, got %d", s.K))
	}
	if !nonNegative(s.Kp) || !nonNegative(s.Ki) {
		err = multierr.Append(err, errors.New("gains must be finite and non-negative"))
	}
	if math.IsNaN(s.MaxSpeed) || math.IsInf(s.MaxSpeed, 0) {
		err = multierr.Append(err, fmt.Errorf("max speed must be finite, got %g", s.MaxSpeed))
	}
	if !(s.StandoffHeight > 0) || math.IsInf(s.StandoffHeight, 0) {
		err = multierr.Append(err, fmt.Errorf("standoff height must be positive, got %g", s.StandoffHeight))
	}
	if s.Method != MethodScrew && s.Method != MethodCartesian {
		err = multierr.Append(err, fmt.Errorf("unknown trajectory method %q", s.Method))
	}
	if s.TimeScaling != 3 && s.TimeScaling != 5 {
		err = multierr.Append(err, fmt.Errorf("time scaling must be 3 (cubic) or 5 (quintic), got %d", s.TimeScaling))
	}
	if !nonNegative(s.Damping) {
		err = multierr.Append(err, errors.New("damping must be finite and non-negative"))
	}
	if !nonNegative(s.PinvTolerance) {
		err = multierr.Append(err, errors.New("pseudo-inverse tolerance must be finite and non-negative"))
	}
	for name, jl := range s.Limits {
		if name.Index() < 0 {
			err = multierr.Append(err, fmt.Errorf("unknown joint %q in limits", name))
		}
		if jl.Min > jl.Max {
			err = multierr.Append(err, fmt.Errorf("%s: min %g above max %g", name, jl.Min, jl.Max))
		}
	}
	return err
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// ActiveLimits returns the limits to enforce, or nil when disabled.
func (s *Settings) ActiveLimits() Limits {
	if !s.JointLimits {
		return nil
	}
	if s.Limits == nil {
		return DefaultLimits()
	}
	return s.Limits
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Settings, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file. Fields missing
// from the file keep the defaults of the "best" scenario.
func LoadConfigFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (s *Settings) Save() error {
	return s.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (s *Settings) SaveTo(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
