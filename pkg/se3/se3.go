// Package se3 implements the rigid-body motion primitives used by the
// simulator: rotation and transform exponentials and logarithms, adjoints,
// product-of-exponentials kinematics and point-to-point trajectories.
//
// Transforms are 4x4 homogeneous matrices and screw-axis lists are 6xn
// matrices with one axis per column, all backed by gonum dense matrices.
package se3

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// ErrBadShape is returned when a matrix argument has the wrong dimensions.
var ErrBadShape = errors.New("se3: bad matrix shape")

// Twist is a spatial velocity: angular part first, then linear part.
type Twist [6]float64

// NewTwist builds a twist from its angular and linear parts.
func NewTwist(w, v r3.Vector) Twist {
	return Twist{w.X, w.Y, w.Z, v.X, v.Y, v.Z}
}

// Angular returns the rotational part.
func (t Twist) Angular() r3.Vector { return r3.Vector{X: t[0], Y: t[1], Z: t[2]} }

// Linear returns the translational part.
func (t Twist) Linear() r3.Vector { return r3.Vector{X: t[3], Y: t[4], Z: t[5]} }

// Add returns t + o.
func (t Twist) Add(o Twist) Twist {
	for i := range t {
		t[i] += o[i]
	}
	return t
}

// Scale returns s*t.
func (t Twist) Scale(s float64) Twist {
	for i := range t {
		t[i] *= s
	}
	return t
}

// Vec returns the twist as a gonum column vector.
func (t Twist) Vec() *mat.VecDense {
	return mat.NewVecDense(6, t[:])
}

// TwistFromVec copies a 6-vector into a Twist.
func TwistFromVec(v mat.Vector) Twist {
	var t Twist
	for i := range t {
		t[i] = v.AtVec(i)
	}
	return t
}

// MulTwist returns m·t for a 6x6 matrix m.
func MulTwist(m mat.Matrix, t Twist) Twist {
	var out mat.VecDense
	out.MulVec(m, t.Vec())
	return TwistFromVec(&out)
}

// NearZero reports whether |z| is small enough to be treated as zero.
func NearZero(z float64) bool {
	return math.Abs(z) < 1e-6
}

// Identity returns a new n x n identity matrix.
func Identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// VecToSO3 returns the skew-symmetric matrix [w].
func VecToSO3(w r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -w.Z, w.Y,
		w.Z, 0, -w.X,
		-w.Y, w.X, 0,
	})
}

// SO3ToVec extracts w from a skew-symmetric matrix [w].
func SO3ToVec(so3 mat.Matrix) r3.Vector {
	return r3.Vector{X: so3.At(2, 1), Y: so3.At(0, 2), Z: so3.At(1, 0)}
}

// MatrixExp3 computes the rotation matrix exp([w]θ) from so3 = [w]θ.
func MatrixExp3(so3 mat.Matrix) *mat.Dense {
	theta := SO3ToVec(so3).Norm()
	if NearZero(theta) {
		return Identity(3)
	}
	var omg mat.Dense
	omg.Scale(1/theta, so3)

	var omg2 mat.Dense
	omg2.Mul(&omg, &omg)

	r := Identity(3)
	var term mat.Dense
	term.Scale(math.Sin(theta), &omg)
	r.Add(r, &term)
	term.Scale(1-math.Cos(theta), &omg2)
	r.Add(r, &term)
	return r
}

// MatrixLog3 computes [w]θ from a rotation matrix.
func MatrixLog3(r mat.Matrix) *mat.Dense {
	c := clampUnit((mat.Trace(r) - 1) / 2)
	switch {
	case c >= 1:
		return mat.NewDense(3, 3, nil)
	case c <= -1:
		var w r3.Vector
		switch {
		case !NearZero(1 + r.At(2, 2)):
			w = r3.Vector{X: r.At(0, 2), Y: r.At(1, 2), Z: 1 + r.At(2, 2)}.
				Mul(1 / math.Sqrt(2*(1+r.At(2, 2))))
		case !NearZero(1 + r.At(1, 1)):
			w = r3.Vector{X: r.At(0, 1), Y: 1 + r.At(1, 1), Z: r.At(2, 1)}.
				Mul(1 / math.Sqrt(2*(1+r.At(1, 1))))
		default:
			w = r3.Vector{X: 1 + r.At(0, 0), Y: r.At(1, 0), Z: r.At(2, 0)}.
				Mul(1 / math.Sqrt(2*(1+r.At(0, 0))))
		}
		return VecToSO3(w.Mul(math.Pi))
	default:
		theta := math.Acos(c)
		var out mat.Dense
		out.Sub(r, r.T())
		out.Scale(theta/(2*math.Sin(theta)), &out)
		return &out
	}
}

// RpToTrans builds a homogeneous transform from a rotation and a position.
func RpToTrans(r mat.Matrix, p r3.Vector) *mat.Dense {
	t := Identity(4)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t.Set(i, j, r.At(i, j))
		}
	}
	t.Set(0, 3, p.X)
	t.Set(1, 3, p.Y)
	t.Set(2, 3, p.Z)
	return t
}

// TransToRp splits a homogeneous transform into rotation and position.
func TransToRp(t mat.Matrix) (*mat.Dense, r3.Vector) {
	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, t.At(i, j))
		}
	}
	return r, r3.Vector{X: t.At(0, 3), Y: t.At(1, 3), Z: t.At(2, 3)}
}

// TransInv inverts a homogeneous transform using its structure.
func TransInv(t mat.Matrix) *mat.Dense {
	r, p := TransToRp(t)
	rt := mat.DenseCopyOf(r.T())
	return RpToTrans(rt, mulVec3(rt, p).Mul(-1))
}

// VecToSE3 returns the 4x4 matrix form [V] of a twist.
func VecToSE3(v Twist) *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	m.Slice(0, 3, 0, 3).(*mat.Dense).Copy(VecToSO3(v.Angular()))
	lin := v.Linear()
	m.Set(0, 3, lin.X)
	m.Set(1, 3, lin.Y)
	m.Set(2, 3, lin.Z)
	return m
}

// SE3ToVec extracts the twist from its 4x4 matrix form.
func SE3ToVec(m mat.Matrix) Twist {
	return Twist{m.At(2, 1), m.At(0, 2), m.At(1, 0), m.At(0, 3), m.At(1, 3), m.At(2, 3)}
}

// Adjoint returns the 6x6 adjoint representation of a transform.
func Adjoint(t mat.Matrix) *mat.Dense {
	r, p := TransToRp(t)
	var pr mat.Dense
	pr.Mul(VecToSO3(p), r)

	ad := mat.NewDense(6, 6, nil)
	ad.Slice(0, 3, 0, 3).(*mat.Dense).Copy(r)
	ad.Slice(3, 6, 0, 3).(*mat.Dense).Copy(&pr)
	ad.Slice(3, 6, 3, 6).(*mat.Dense).Copy(r)
	return ad
}

// MatrixExp6 computes the transform exp([S]θ) from se3 = [S]θ.
func MatrixExp6(se3 mat.Matrix) *mat.Dense {
	so3, v := TransToRp(se3)
	theta := SO3ToVec(so3).Norm()
	if NearZero(theta) {
		return RpToTrans(Identity(3), v)
	}

	var omg mat.Dense
	omg.Scale(1/theta, so3)
	var omg2 mat.Dense
	omg2.Mul(&omg, &omg)

	g := Identity(3)
	g.Scale(theta, g)
	var term mat.Dense
	term.Scale(1-math.Cos(theta), &omg)
	g.Add(g, &term)
	term.Scale(theta-math.Sin(theta), &omg2)
	g.Add(g, &term)

	p := mulVec3(g, v).Mul(1 / theta)
	return RpToTrans(MatrixExp3(so3), p)
}

// MatrixLog6 computes [S]θ from a homogeneous transform.
func MatrixLog6(t mat.Matrix) *mat.Dense {
	r, p := TransToRp(t)
	omg := MatrixLog3(r)

	out := mat.NewDense(4, 4, nil)
	if mat.Equal(omg, mat.NewDense(3, 3, nil)) {
		out.Set(0, 3, p.X)
		out.Set(1, 3, p.Y)
		out.Set(2, 3, p.Z)
		return out
	}

	theta := math.Acos(clampUnit((mat.Trace(r) - 1) / 2))
	var omg2 mat.Dense
	omg2.Mul(omg, omg)

	g := Identity(3)
	var term mat.Dense
	term.Scale(0.5, omg)
	g.Sub(g, &term)
	term.Scale((1/theta-1/math.Tan(theta/2)/2)/theta, &omg2)
	g.Add(g, &term)

	out.Slice(0, 3, 0, 3).(*mat.Dense).Copy(omg)
	v := mulVec3(g, p)
	out.Set(0, 3, v.X)
	out.Set(1, 3, v.Y)
	out.Set(2, 3, v.Z)
	return out
}

// Mul returns the product of the given matrices, left to right.
func Mul(ms ...mat.Matrix) *mat.Dense {
	if len(ms) == 0 {
		return nil
	}
	out := mat.DenseCopyOf(ms[0])
	for _, m := range ms[1:] {
		var next mat.Dense
		next.Mul(out, m)
		out = &next
	}
	return out
}

// ErrorTwist returns log(X⁻¹·Xd) as a twist: the body twist that takes X to
// Xd in unit time.
func ErrorTwist(x, xd mat.Matrix) Twist {
	return SE3ToVec(MatrixLog6(Mul(TransInv(x), xd)))
}

func mulVec3(m mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
