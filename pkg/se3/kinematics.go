package se3

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when a decomposition fails.
var ErrSingular = errors.New("se3: matrix decomposition failed")

// FKinBody computes the end-effector transform M·exp([B1]θ1)···exp([Bn]θn)
// for body-frame screw axes blist (6xn).
func FKinBody(m mat.Matrix, blist mat.Matrix, thetas []float64) (*mat.Dense, error) {
	rows, cols := blist.Dims()
	if rows != 6 || cols != len(thetas) {
		return nil, fmt.Errorf("blist is %dx%d for %d joints: %w", rows, cols, len(thetas), ErrBadShape)
	}
	t := mat.DenseCopyOf(m)
	for i, theta := range thetas {
		t = Mul(t, MatrixExp6(VecToSE3(column(blist, i).Scale(theta))))
	}
	return t, nil
}

// JacobianBody computes the 6xn body Jacobian for screw axes blist at thetas.
func JacobianBody(blist mat.Matrix, thetas []float64) (*mat.Dense, error) {
	rows, cols := blist.Dims()
	if rows != 6 || cols != len(thetas) {
		return nil, fmt.Errorf("blist is %dx%d for %d joints: %w", rows, cols, len(thetas), ErrBadShape)
	}
	jb := mat.DenseCopyOf(blist)
	t := Identity(4)
	for i := cols - 2; i >= 0; i-- {
		t = Mul(t, MatrixExp6(VecToSE3(column(blist, i+1).Scale(-thetas[i+1]))))
		jb.SetCol(i, twistSlice(MulTwist(Adjoint(t), column(blist, i))))
	}
	return jb, nil
}

// PseudoInverse returns the Moore-Penrose pseudo-inverse of m. Singular
// values at or below tol are treated as zero.
func PseudoInverse(m mat.Matrix, tol float64) (*mat.Dense, error) {
	return DampedPseudoInverse(m, 0, tol)
}

// DampedPseudoInverse returns the damped least-squares inverse
// mᵀ(m·mᵀ + λ²I)⁻¹, computed from the SVD as V·diag(σ/(σ²+λ²))·Uᵀ. Near a
// singularity the gain of the weak direction falls smoothly to zero instead
// of growing without bound. Singular values at or below tol are dropped.
func DampedPseudoInverse(m mat.Matrix, damping, tol float64) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, ErrSingular
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	vals := svd.Values(nil)

	l2 := damping * damping
	inv := make([]float64, len(vals))
	for i, s := range vals {
		if s > tol && s > 0 {
			inv[i] = s / (s*s + l2)
		}
	}

	// V·Σ⁺·Uᵀ
	var vs mat.Dense
	vs.Mul(&v, mat.NewDiagDense(len(inv), inv))
	var out mat.Dense
	out.Mul(&vs, u.T())
	return &out, nil
}

func column(m mat.Matrix, j int) Twist {
	var t Twist
	for i := range t {
		t[i] = m.At(i, j)
	}
	return t
}

func twistSlice(t Twist) []float64 {
	return t[:]
}
