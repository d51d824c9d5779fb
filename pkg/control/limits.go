package control

import (
	"github.com/gwillem/youbot/pkg/robot"
)

// Step describes the commanded motion for one timestep.
type Step struct {
	Speeds robot.Speeds
	Next   robot.Config
	// Locked lists joints whose Jacobian columns were zeroed to respect
	// joint limits.
	Locked []robot.JointName
}

// Planner turns commanded twists into the next robot configuration.
type Planner struct {
	Dt            float64
	MaxSpeed      float64
	Damping       float64
	PinvTolerance float64
	// Limits is enforced when non-nil.
	Limits robot.Limits
}

// Plan computes speeds for twist v at cfg and steps the robot. When the step
// would push a joint further outside its limits, that joint's Jacobian column
// is zeroed and the speeds are recomputed.
func (p Planner) Plan(cfg robot.Config, v Output) (Step, error) {
	je, err := robot.Jacobian(cfg)
	if err != nil {
		return Step{}, err
	}

	var locked []robot.JointName
	for {
		speeds, err := Speeds(je, v.V, p.Damping, p.PinvTolerance)
		if err != nil {
			return Step{}, err
		}
		for _, name := range locked {
			speeds.Arm[name.Index()] = 0
		}
		next := robot.NextState(cfg, speeds, p.Dt, p.MaxSpeed)

		worse := p.Limits.Worsened(cfg, next)
		if len(worse) == 0 {
			return Step{Speeds: speeds, Next: next, Locked: locked}, nil
		}
		for _, name := range worse {
			col := 4 + name.Index()
			for row := 0; row < 6; row++ {
				je.Set(row, col, 0)
			}
			locked = append(locked, name)
		}
	}
}
