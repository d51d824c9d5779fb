package se3

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrTooFewPoints is returned when a trajectory is asked for fewer than two
// points.
var ErrTooFewPoints = errors.New("se3: trajectory needs at least 2 points")

// TimeScaling maps elapsed time t in [0, tf] to path parameter s in [0, 1].
type TimeScaling func(tf, t float64) float64

// CubicTimeScaling is the third-order polynomial s(t) with zero start and end
// velocity.
func CubicTimeScaling(tf, t float64) float64 {
	r := ratio(tf, t)
	return 3*r*r - 2*r*r*r
}

// QuinticTimeScaling is the fifth-order polynomial s(t) with zero start and
// end velocity and acceleration.
func QuinticTimeScaling(tf, t float64) float64 {
	r := ratio(tf, t)
	return 10*math.Pow(r, 3) - 15*math.Pow(r, 4) + 6*math.Pow(r, 5)
}

// ScrewTrajectory returns n transforms moving from start to end along a
// constant screw axis in time tf.
func ScrewTrajectory(start, end mat.Matrix, tf float64, n int, scale TimeScaling) ([]*mat.Dense, error) {
	if n < 2 {
		return nil, fmt.Errorf("screw trajectory with %d points: %w", n, ErrTooFewPoints)
	}
	screw := MatrixLog6(Mul(TransInv(start), end))
	gap := tf / float64(n-1)

	traj := make([]*mat.Dense, n)
	for i := range traj {
		var step mat.Dense
		step.Scale(scale(tf, gap*float64(i)), screw)
		traj[i] = Mul(start, MatrixExp6(&step))
	}
	return traj, nil
}

// CartesianTrajectory returns n transforms whose origin moves in a straight
// line while the rotation follows a constant angular velocity.
func CartesianTrajectory(start, end mat.Matrix, tf float64, n int, scale TimeScaling) ([]*mat.Dense, error) {
	if n < 2 {
		return nil, fmt.Errorf("cartesian trajectory with %d points: %w", n, ErrTooFewPoints)
	}
	rs, ps := TransToRp(start)
	re, pe := TransToRp(end)
	var rel mat.Dense
	rel.Mul(rs.T(), re)
	rot := MatrixLog3(&rel)
	gap := tf / float64(n-1)

	traj := make([]*mat.Dense, n)
	for i := range traj {
		s := scale(tf, gap*float64(i))
		var step mat.Dense
		step.Scale(s, rot)
		var r mat.Dense
		r.Mul(rs, MatrixExp3(&step))
		traj[i] = RpToTrans(&r, pe.Mul(s).Add(ps.Mul(1-s)))
	}
	return traj, nil
}

// ratio returns t/tf clamped to [0, 1]; a zero-length motion is complete.
func ratio(tf, t float64) float64 {
	if tf <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, t/tf))
}
