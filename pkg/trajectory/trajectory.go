// Package trajectory generates the end-effector reference for the
// pick-and-place task: eight segments that approach the cube, grasp it, carry
// it to the goal and release it.
package trajectory

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/gwillem/youbot/pkg/robot"
	"github.com/gwillem/youbot/pkg/se3"
)

// Timestep is the reference sample period when k = 1, in seconds.
const Timestep = 0.01

// Gripper states.
const (
	Open   = 0
	Closed = 1
)

// Segment durations, in seconds.
const (
	StandoffDuration = 4.0
	GraspDuration    = 2.0
	CarryDuration    = 2.0

	// GripperDuration is how long the gripper takes to fully open or close.
	GripperDuration = 0.625
)

// Frame is one reference sample: the desired end-effector pose and gripper
// state.
type Frame struct {
	T       *mat.Dense
	Gripper int
}

// Row flattens the frame as r11, r12, r13, r21, r22, r23, r31, r32, r33, px,
// py, pz, gripper.
func (f Frame) Row() []float64 {
	row := make([]float64, 0, 13)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			row = append(row, f.T.At(i, j))
		}
	}
	row = append(row, f.T.At(0, 3), f.T.At(1, 3), f.T.At(2, 3), float64(f.Gripper))
	return row
}

// FrameFromRow is the inverse of Frame.Row.
func FrameFromRow(row []float64) (Frame, error) {
	if len(row) != 13 {
		return Frame{}, fmt.Errorf("trajectory row has %d values, want 13", len(row))
	}
	r := mat.NewDense(3, 3, append([]float64(nil), row[:9]...))
	p := r3.Vector{X: row[9], Y: row[10], Z: row[11]}
	return Frame{T: se3.RpToTrans(r, p), Gripper: int(row[12])}, nil
}

// Params describes the task.
type Params struct {
	// Initial end-effector pose Tse.
	Initial mat.Matrix
	// Cube poses Tsc before and after the move.
	CubeInitial mat.Matrix
	CubeFinal   mat.Matrix
	// End-effector poses relative to the cube while grasping and at standoff.
	Grasp    mat.Matrix
	Standoff mat.Matrix
	// K is the number of reference samples per 0.01 s.
	K int
	// Method is robot.MethodScrew or robot.MethodCartesian.
	Method string
	// TimeScaling is 3 (cubic) or 5 (quintic).
	TimeScaling int
}

// GraspTransform returns Tce for grasping: the end-effector frame is the cube
// frame turned a quarter turn about its y-axis, centered on the cube.
func GraspTransform() *mat.Dense {
	return StandoffTransform(0)
}

// StandoffTransform returns Tce for hovering height meters above the grasp
// pose.
func StandoffTransform(height float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		0, 0, 1, 0,
		0, 1, 0, 0,
		-1, 0, 0, height,
		0, 0, 0, 1,
	})
}

// ParamsFromSettings builds generator parameters from task settings. The
// reference starts from the home pose of the robot.
func ParamsFromSettings(s *robot.Settings) (Params, error) {
	home, err := robot.EndEffector(robot.Config{})
	if err != nil {
		return Params{}, err
	}
	return Params{
		Initial:     home,
		CubeInitial: robot.CubeTransform(s.CubeInitial.X, s.CubeInitial.Y, s.CubeInitial.Theta),
		CubeFinal:   robot.CubeTransform(s.CubeFinal.X, s.CubeFinal.Y, s.CubeFinal.Theta),
		Grasp:       GraspTransform(),
		Standoff:    StandoffTransform(s.StandoffHeight),
		K:           s.K,
		Method:      s.Method,
		TimeScaling: s.TimeScaling,
	}, nil
}

type segment struct {
	name     string
	from, to mat.Matrix
	duration float64
	gripper  int
	hold     bool
}

// Generate returns the full reference trajectory.
func Generate(p Params) ([]Frame, error) {
	if p.K < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", p.K)
	}
	dt := Timestep / float64(p.K)

	scale, err := timeScaling(p.TimeScaling)
	if err != nil {
		return nil, err
	}
	interp, err := interpolator(p.Method)
	if err != nil {
		return nil, err
	}

	standoffInitial := se3.Mul(p.CubeInitial, p.Standoff)
	grasp := se3.Mul(p.CubeInitial, p.Grasp)
	standoffFinal := se3.Mul(p.CubeFinal, p.Standoff)
	release := se3.Mul(p.CubeFinal, p.Grasp)

	segments := []segment{
		{"approach standoff", p.Initial, standoffInitial, StandoffDuration, Open, false},
		{"descend to grasp", standoffInitial, grasp, GraspDuration, Open, false},
		{"close gripper", grasp, grasp, GripperDuration, Closed, true},
		{"lift", grasp, standoffInitial, StandoffDuration, Closed, false},
		{"carry", standoffInitial, standoffFinal, CarryDuration, Closed, false},
		{"descend to release", standoffFinal, release, GraspDuration, Closed, false},
		{"open gripper", release, release, GripperDuration, Open, true},
		{"retreat", release, standoffFinal, StandoffDuration, Open, false},
	}

	var frames []Frame
	for i, seg := range segments {
		n := Points(seg.duration, dt)
		if n < 2 {
			return nil, fmt.Errorf("segment %d (%s): %d points: %w", i+1, seg.name, n, se3.ErrTooFewPoints)
		}

		if seg.hold {
			for j := 0; j < n; j++ {
				frames = append(frames, Frame{T: mat.DenseCopyOf(seg.from), Gripper: seg.gripper})
			}
			continue
		}

		poses, err := interp(seg.from, seg.to, seg.duration, n, scale)
		if err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", i+1, seg.name, err)
		}
		for _, t := range poses {
			frames = append(frames, Frame{T: t, Gripper: seg.gripper})
		}
	}
	return frames, nil
}

// Points returns the number of samples for a segment of the given duration,
// truncating duration/dt.
func Points(duration, dt float64) int {
	return int(math.Floor(duration/dt + 1e-9))
}

func timeScaling(order int) (se3.TimeScaling, error) {
	switch order {
	case 3:
		return se3.CubicTimeScaling, nil
	case 5:
		return se3.QuinticTimeScaling, nil
	default:
		return nil, fmt.Errorf("time scaling must be 3 or 5, got %d", order)
	}
}

type interpolatorFunc func(start, end mat.Matrix, tf float64, n int, scale se3.TimeScaling) ([]*mat.Dense, error)

func interpolator(method string) (interpolatorFunc, error) {
	switch method {
	case robot.MethodScrew, "":
		return se3.ScrewTrajectory, nil
	case robot.MethodCartesian:
		return se3.CartesianTrajectory, nil
	default:
		return nil, fmt.Errorf("unknown trajectory method %q", method)
	}
}
