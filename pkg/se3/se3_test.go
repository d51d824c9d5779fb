package se3

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-6

func assertMatrix(t *testing.T, name string, got, want mat.Matrix, eps float64) {
	t.Helper()
	if !mat.EqualApprox(got, want, eps) {
		t.Errorf("%s =\n%v\nwant\n%v", name, mat.Formatted(got), mat.Formatted(want))
	}
}

func TestVecToSO3_RoundTrip(t *testing.T) {
	w := r3.Vector{X: 1, Y: 2, Z: 3}
	m := VecToSO3(w)
	want := mat.NewDense(3, 3, []float64{0, -3, 2, 3, 0, -1, -2, 1, 0})
	assertMatrix(t, "VecToSO3", m, want, 0)
	if got := SO3ToVec(m); got != w {
		t.Errorf("SO3ToVec = %v, want %v", got, w)
	}
}

func TestMatrixLog3(t *testing.T) {
	tests := []struct {
		name string
		r    *mat.Dense
		want *mat.Dense
	}{
		{
			name: "identity",
			r:    Identity(3),
			want: mat.NewDense(3, 3, nil),
		},
		{
			name: "generic",
			r:    mat.NewDense(3, 3, []float64{0, 0, 1, 1, 0, 0, 0, 1, 0}),
			want: mat.NewDense(3, 3, []float64{
				0, -1.20919958, 1.20919958,
				1.20919958, 0, -1.20919958,
				-1.20919958, 1.20919958, 0,
			}),
		},
		{
			name: "half turn about x",
			r:    mat.NewDense(3, 3, []float64{1, 0, 0, 0, -1, 0, 0, 0, -1}),
			want: VecToSO3(r3.Vector{X: math.Pi}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatrixLog3(tt.r)
			assertMatrix(t, "MatrixLog3", got, tt.want, 1e-7)
			assertMatrix(t, "MatrixExp3(MatrixLog3)", MatrixExp3(got), tt.r, 1e-9)
		})
	}
}

func TestTransInv(t *testing.T) {
	tf := mat.NewDense(4, 4, []float64{1, 0, 0, 0, 0, 0, -1, 0, 0, 1, 0, 3, 0, 0, 0, 1})
	want := mat.NewDense(4, 4, []float64{1, 0, 0, 0, 0, 0, 1, -3, 0, -1, 0, 0, 0, 0, 0, 1})
	assertMatrix(t, "TransInv", TransInv(tf), want, tol)
	assertMatrix(t, "TransInv·T", Mul(TransInv(tf), tf), Identity(4), tol)
}

func TestAdjoint(t *testing.T) {
	tf := mat.NewDense(4, 4, []float64{1, 0, 0, 0, 0, 0, -1, 0, 0, 1, 0, 3, 0, 0, 0, 1})
	want := mat.NewDense(6, 6, []float64{
		1, 0, 0, 0, 0, 0,
		0, 0, -1, 0, 0, 0,
		0, 1, 0, 0, 0, 0,
		0, 0, 3, 1, 0, 0,
		3, 0, 0, 0, 0, -1,
		0, 0, 0, 0, 1, 0,
	})
	assertMatrix(t, "Adjoint", Adjoint(tf), want, tol)
}

func TestMatrixLog6_Exp6(t *testing.T) {
	tf := mat.NewDense(4, 4, []float64{1, 0, 0, 0, 0, 0, -1, 0, 0, 1, 0, 3, 0, 0, 0, 1})
	want := mat.NewDense(4, 4, []float64{
		0, 0, 0, 0,
		0, 0, -1.57079633, 2.35619449,
		0, 1.57079633, 0, 2.35619449,
		0, 0, 0, 0,
	})
	got := MatrixLog6(tf)
	assertMatrix(t, "MatrixLog6", got, want, 1e-7)
	assertMatrix(t, "MatrixExp6", MatrixExp6(got), tf, 1e-9)
}

func TestMatrixLog6_PureTranslation(t *testing.T) {
	tf := RpToTrans(Identity(3), r3.Vector{X: 0.1, Y: -0.2, Z: 0.3})
	got := SE3ToVec(MatrixLog6(tf))
	want := Twist{0, 0, 0, 0.1, -0.2, 0.3}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("MatrixLog6 twist = %v, want %v", got, want)
		}
	}
}

func TestErrorTwist_Identity(t *testing.T) {
	x := mat.NewDense(4, 4, []float64{0, 0, 1, 0.5, 0, 1, 0, 0, -1, 0, 0, 0.5, 0, 0, 0, 1})
	got := ErrorTwist(x, x)
	for _, v := range got {
		if !NearZero(v) {
			t.Fatalf("ErrorTwist(x, x) = %v, want zero", got)
		}
	}
}

func TestFKinBody(t *testing.T) {
	m := mat.NewDense(4, 4, []float64{-1, 0, 0, 0, 0, 1, 0, 6, 0, 0, -1, 2, 0, 0, 0, 1})
	blist := mat.NewDense(6, 3, []float64{
		0, 0, 0,
		0, 0, 0,
		-1, 0, 1,
		2, 0, 0,
		0, 1, 0,
		0, 0, 0.1,
	})
	got, err := FKinBody(m, blist, []float64{math.Pi / 2, 3, math.Pi})
	if err != nil {
		t.Fatalf("FKinBody: %v", err)
	}
	want := mat.NewDense(4, 4, []float64{
		0, 1, 0, -5,
		1, 0, 0, 4,
		0, 0, -1, 1.68584073,
		0, 0, 0, 1,
	})
	assertMatrix(t, "FKinBody", got, want, 1e-7)
}

func TestFKinBody_BadShape(t *testing.T) {
	_, err := FKinBody(Identity(4), mat.NewDense(6, 2, nil), []float64{1, 2, 3})
	if !errors.Is(err, ErrBadShape) {
		t.Errorf("FKinBody error = %v, want ErrBadShape", err)
	}
}

func TestJacobianBody(t *testing.T) {
	blist := mat.NewDense(6, 4, []float64{
		0, 1, 0, 1,
		0, 0, 1, 0,
		1, 0, 0, 0,
		0, 2, 0, 0.2,
		0.2, 0, 2, 0.3,
		0.2, 3, 1, 0.4,
	})
	got, err := JacobianBody(blist, []float64{0.2, 1.1, 0.1, 1.2})
	if err != nil {
		t.Fatalf("JacobianBody: %v", err)
	}
	want := mat.NewDense(6, 4, []float64{
		-0.04528405, 0.99500417, 0, 1,
		0.74359313, 0.09304865, 0.36235775, 0,
		-0.66709716, 0.03617541, -0.93203909, 0,
		2.32586047, 1.66809, 0.56410831, 0.2,
		-1.44321167, 2.94561275, 1.43306521, 0.3,
		-2.06639565, 1.82881722, -1.58868628, 0.4,
	})
	assertMatrix(t, "JacobianBody", got, want, 1e-6)
}

func TestPseudoInverse(t *testing.T) {
	t.Run("full rank", func(t *testing.T) {
		m := mat.NewDense(2, 2, []float64{4, 7, 2, 6})
		inv, err := PseudoInverse(m, 1e-9)
		if err != nil {
			t.Fatal(err)
		}
		assertMatrix(t, "pinv·m", Mul(inv, m), Identity(2), 1e-9)
	})

	t.Run("rank deficient", func(t *testing.T) {
		m := mat.NewDense(2, 2, []float64{2, 0, 0, 1e-6})
		inv, err := PseudoInverse(m, 1e-3)
		if err != nil {
			t.Fatal(err)
		}
		assertMatrix(t, "pinv", inv, mat.NewDense(2, 2, []float64{0.5, 0, 0, 0}), 1e-9)
	})

	t.Run("wide", func(t *testing.T) {
		m := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 0})
		inv, err := PseudoInverse(m, 1e-9)
		if err != nil {
			t.Fatal(err)
		}
		r, c := inv.Dims()
		if r != 3 || c != 2 {
			t.Fatalf("pinv dims = %dx%d, want 3x2", r, c)
		}
		assertMatrix(t, "m·pinv", Mul(m, inv), Identity(2), 1e-9)
	})
}

func TestDampedPseudoInverse(t *testing.T) {
	t.Run("diagonal", func(t *testing.T) {
		m := mat.NewDense(2, 2, []float64{2, 0, 0, 0.01})
		inv, err := DampedPseudoInverse(m, 0.01, 0)
		if err != nil {
			t.Fatal(err)
		}
		want := mat.NewDense(2, 2, []float64{2 / (4 + 1e-4), 0, 0, 50})
		assertMatrix(t, "damped pinv", inv, want, 1e-9)
	})

	t.Run("matches normal equations", func(t *testing.T) {
		m := mat.NewDense(2, 3, []float64{1, 2, 0, 0.5, 1.001, 0.3})
		const lambda = 0.1

		var mmt mat.Dense
		mmt.Mul(m, m.T())
		for i := 0; i < 2; i++ {
			mmt.Set(i, i, mmt.At(i, i)+lambda*lambda)
		}
		var inner mat.Dense
		if err := inner.Inverse(&mmt); err != nil {
			t.Fatal(err)
		}
		var want mat.Dense
		want.Mul(m.T(), &inner)

		got, err := DampedPseudoInverse(m, lambda, 0)
		if err != nil {
			t.Fatal(err)
		}
		assertMatrix(t, "damped pinv", got, &want, 1e-9)
	})

	t.Run("zero damping", func(t *testing.T) {
		m := mat.NewDense(2, 2, []float64{4, 7, 2, 6})
		damped, err := DampedPseudoInverse(m, 0, 1e-9)
		if err != nil {
			t.Fatal(err)
		}
		plain, err := PseudoInverse(m, 1e-9)
		if err != nil {
			t.Fatal(err)
		}
		assertMatrix(t, "pinv", damped, plain, 0)
	})
}
