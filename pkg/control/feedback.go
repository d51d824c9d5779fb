// Package control implements task-space feedforward plus PI feedback control
// of the end-effector and maps the commanded twist to wheel and joint speeds.
package control

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gwillem/youbot/pkg/robot"
	"github.com/gwillem/youbot/pkg/se3"
)

// Defaults for inverting the mobile manipulator Jacobian.
const (
	// DefaultDamping is the damped least-squares factor λ. It keeps speeds
	// bounded when the arm passes near its stretched-out singularity.
	DefaultDamping = 0.01
	// DefaultPinvTolerance is the singular value cutoff.
	DefaultPinvTolerance = 1e-6
)

// Output is the result of one control step.
type Output struct {
	// V is the commanded end-effector twist in the end-effector frame.
	V se3.Twist
	// Vd is the feedforward reference twist in the reference frame.
	Vd se3.Twist
	// Xerr is the configuration error twist log(X⁻¹·Xd).
	Xerr se3.Twist
	// Integral is the running integral of Xerr.
	Integral se3.Twist
}

// FeedbackControl computes V = [Ad(X⁻¹·Xd)]·Vd + Kp·Xerr + Ki·∫Xerr for the
// current pose x, the reference xd and the next reference xdNext, dt apart.
// kp and ki are 6x6 gain matrices.
func FeedbackControl(x, xd, xdNext, kp, ki mat.Matrix, dt float64, integral se3.Twist) (Output, error) {
	if dt <= 0 {
		return Output{}, fmt.Errorf("timestep must be positive, got %g", dt)
	}

	xerr := se3.ErrorTwist(x, xd)
	integral = integral.Add(xerr.Scale(dt))
	vd := se3.ErrorTwist(xd, xdNext).Scale(1 / dt)

	ad := se3.Adjoint(se3.Mul(se3.TransInv(x), xd))
	v := se3.MulTwist(ad, vd).
		Add(se3.MulTwist(kp, xerr)).
		Add(se3.MulTwist(ki, integral))

	return Output{V: v, Vd: vd, Xerr: xerr, Integral: integral}, nil
}

// Gain returns the 6x6 diagonal gain matrix g·I.
func Gain(g float64) *mat.DiagDense {
	d := make([]float64, 6)
	for i := range d {
		d[i] = g
	}
	return mat.NewDiagDense(6, d)
}

// Controller holds gains and the error integral between steps.
type Controller struct {
	Kp, Ki   mat.Matrix
	integral se3.Twist
}

// NewController creates a controller with scalar gains.
func NewController(kp, ki float64) *Controller {
	return &Controller{Kp: Gain(kp), Ki: Gain(ki)}
}

// Step runs one control step and accumulates the error integral.
func (c *Controller) Step(x, xd, xdNext mat.Matrix, dt float64) (Output, error) {
	out, err := FeedbackControl(x, xd, xdNext, c.Kp, c.Ki, dt, c.integral)
	if err != nil {
		return Output{}, err
	}
	c.integral = out.Integral
	return out, nil
}

// Integral returns the accumulated error integral.
func (c *Controller) Integral() se3.Twist {
	return c.integral
}

// Reset clears the error integral.
func (c *Controller) Reset() {
	c.integral = se3.Twist{}
}

// ErrNoSolution is returned when the Jacobian pseudo-inverse cannot be
// computed.
var ErrNoSolution = errors.New("control: no speed solution")

// Speeds maps the twist v to wheel and arm joint speeds through the damped
// pseudo-inverse of je (6x9, wheel columns first). Zero damping gives the
// plain Moore-Penrose solution.
func Speeds(je mat.Matrix, v se3.Twist, damping, tol float64) (robot.Speeds, error) {
	if r, c := je.Dims(); r != 6 || c != 9 {
		return robot.Speeds{}, fmt.Errorf("jacobian is %dx%d, want 6x9: %w", r, c, se3.ErrBadShape)
	}
	pinv, err := se3.DampedPseudoInverse(je, damping, tol)
	if err != nil {
		return robot.Speeds{}, fmt.Errorf("%w: %v", ErrNoSolution, err)
	}
	var u mat.VecDense
	u.MulVec(pinv, v.Vec())

	var s robot.Speeds
	for i := range s.Wheels {
		s.Wheels[i] = u.AtVec(i)
	}
	for i := range s.Arm {
		s.Arm[i] = u.AtVec(4 + i)
	}
	return s, nil
}
