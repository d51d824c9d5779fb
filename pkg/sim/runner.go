// Package sim runs the closed-loop pick-and-place simulation: it tracks the
// reference trajectory with the feedback controller and steps the robot
// kinematics, recording configurations for playback.
package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gwillem/youbot/pkg/control"
	"github.com/gwillem/youbot/pkg/robot"
	"github.com/gwillem/youbot/pkg/se3"
	"github.com/gwillem/youbot/pkg/trajectory"
)

// State represents the simulation state after a step.
type State struct {
	Step      int
	Total     int
	Time      float64
	Config    robot.Config
	Xerr      se3.Twist
	Gripper   int
	Locked    []robot.JointName
	Timestamp time.Time
	Error     error
}

// ConfigFrame is a recorded configuration with the commanded gripper state.
type ConfigFrame struct {
	Config  robot.Config
	Gripper int
}

// Row flattens the frame as the 12 configuration values followed by the
// gripper state.
func (f ConfigFrame) Row() []float64 {
	return append(f.Config.Vector(), float64(f.Gripper))
}

// ErrorSample is the configuration error at one control step.
type ErrorSample struct {
	Time float64
	Xerr se3.Twist
}

// Row flattens the sample as time followed by the six error components.
func (s ErrorSample) Row() []float64 {
	return append([]float64{s.Time}, s.Xerr[:]...)
}

// Result holds everything recorded during a run.
type Result struct {
	// Configs holds one frame per 0.01 s, starting with the initial
	// configuration.
	Configs []ConfigFrame
	// Errors holds one sample per control step.
	Errors []ErrorSample
	// LockedSteps counts steps where joint limits zeroed a Jacobian column.
	LockedSteps int
}

// FinalError returns the magnitude of the last recorded error twist.
func (r *Result) FinalError() float64 {
	if len(r.Errors) == 0 {
		return 0
	}
	return norm(r.Errors[len(r.Errors)-1].Xerr)
}

// Runner manages the simulation loop.
type Runner struct {
	settings  *robot.Settings
	reference []trajectory.Frame
	ctrl      *control.Controller
	planner   control.Planner
	dt        float64
	hz        int
	logger    *zap.SugaredLogger

	mu      sync.RWMutex
	running bool
	stateCh chan State
	logCh   chan string
}

// MaxHz is the fastest pace a live run accepts.
const MaxHz = 10000

// Options holds configuration for the runner.
type Options struct {
	Settings *robot.Settings
	// Hz paces the loop in steps per second for live display, up to MaxHz;
	// 0 runs as fast as possible.
	Hz     int
	Logger *zap.SugaredLogger
}

// NewRunner validates the settings and generates the reference trajectory.
func NewRunner(opts Options) (*Runner, error) {
	s := opts.Settings
	if s == nil {
		s = robot.DefaultConfig()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if opts.Hz < 0 || opts.Hz > MaxHz {
		return nil, fmt.Errorf("hz must be between 0 and %d, got %d", MaxHz, opts.Hz)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	params, err := trajectory.ParamsFromSettings(s)
	if err != nil {
		return nil, fmt.Errorf("trajectory parameters: %w", err)
	}
	ref, err := trajectory.Generate(params)
	if err != nil {
		return nil, fmt.Errorf("generate reference: %w", err)
	}

	dt := trajectory.Timestep / float64(s.K)
	logger.Infow("reference generated",
		"scenario", s.Scenario,
		"frames", len(ref),
		"dt", dt,
		"method", s.Method,
	)

	return &Runner{
		settings:  s,
		reference: ref,
		ctrl:      control.NewController(s.Kp, s.Ki),
		planner: control.Planner{
			Dt:            dt,
			MaxSpeed:      s.MaxSpeed,
			Damping:       s.Damping,
			PinvTolerance: s.PinvTolerance,
			Limits:        s.ActiveLimits(),
		},
		dt:      dt,
		hz:      opts.Hz,
		logger:  logger,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}, nil
}

// Reference returns the generated reference trajectory.
func (r *Runner) Reference() []trajectory.Frame {
	return r.reference
}

// Settings returns the settings the runner was built with.
func (r *Runner) Settings() *robot.Settings {
	return r.settings
}

// States returns a channel that receives state updates.
func (r *Runner) States() <-chan State {
	return r.stateCh
}

// Logs returns a channel that receives log messages.
func (r *Runner) Logs() <-chan string {
	return r.logCh
}

// Hz returns the pacing frequency, 0 when unpaced.
func (r *Runner) Hz() int {
	return r.hz
}

func (r *Runner) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case r.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Run executes the simulation from the configured initial configuration.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, fmt.Errorf("already running")
	}
	r.running = true
	r.mu.Unlock()
	defer r.shutdown()

	r.ctrl.Reset()
	cfg := r.settings.Initial
	total := len(r.reference) - 1

	res := &Result{
		Configs: make([]ConfigFrame, 0, total/r.settings.K+1),
		Errors:  make([]ErrorSample, 0, total),
	}
	res.Configs = append(res.Configs, ConfigFrame{Config: cfg, Gripper: r.reference[0].Gripper})

	r.log("Simulation started: %d steps", total)
	r.logger.Infow("simulation started", "steps", total, "kp", r.settings.Kp, "ki", r.settings.Ki)

	var tick <-chan time.Time
	if r.hz > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(r.hz))
		defer ticker.Stop()
		tick = ticker.C
	}

	progress := total / 10
	for i := 0; i < total; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return res, err
		}

		next, err := r.step(i, cfg, res)
		if err != nil {
			r.log("Step %d failed: %v", i, err)
			r.sendState(State{Step: i, Total: total, Error: err, Timestamp: time.Now()})
			return res, fmt.Errorf("step %d: %w", i, err)
		}
		cfg = next

		if (i+1)%r.settings.K == 0 {
			res.Configs = append(res.Configs, ConfigFrame{Config: cfg, Gripper: r.reference[i+1].Gripper})
		}
		if progress > 0 && (i+1)%progress == 0 {
			r.logger.Debugw("progress", "step", i+1, "xerr", norm(res.Errors[i].Xerr))
		}
	}

	r.log("Simulation complete, final error %.4f", res.FinalError())
	r.logger.Infow("simulation complete",
		"configs", len(res.Configs),
		"final_error", res.FinalError(),
		"locked_steps", res.LockedSteps,
	)
	return res, nil
}

func (r *Runner) step(i int, cfg robot.Config, res *Result) (robot.Config, error) {
	x, err := robot.EndEffector(cfg)
	if err != nil {
		return cfg, err
	}
	xd, xdNext := r.reference[i], r.reference[i+1]

	out, err := r.ctrl.Step(x, xd.T, xdNext.T, r.dt)
	if err != nil {
		return cfg, err
	}
	step, err := r.planner.Plan(cfg, out)
	if err != nil {
		return cfg, err
	}

	res.Errors = append(res.Errors, ErrorSample{Time: float64(i) * r.dt, Xerr: out.Xerr})
	if len(step.Locked) > 0 {
		res.LockedSteps++
		r.logger.Debugw("joint limits active", "step", i, "joints", step.Locked)
	}

	r.sendState(State{
		Step:      i + 1,
		Total:     len(r.reference) - 1,
		Time:      float64(i+1) * r.dt,
		Config:    step.Next,
		Xerr:      out.Xerr,
		Gripper:   xd.Gripper,
		Locked:    step.Locked,
		Timestamp: time.Now(),
	})
	return step.Next, nil
}

func (r *Runner) sendState(s State) {
	select {
	case r.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-r.stateCh:
		default:
		}
		select {
		case r.stateCh <- s:
		default:
		}
	}
}

func (r *Runner) shutdown() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	r.log("Simulation stopped")
}

func norm(t se3.Twist) float64 {
	var sum float64
	for _, v := range t {
		sum += v * v
	}
	return math.Sqrt(sum)
}
