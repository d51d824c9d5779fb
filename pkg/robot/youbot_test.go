package robot

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/gwillem/youbot/pkg/se3"
)

func TestEndEffector_Home(t *testing.T) {
	tse, err := EndEffector(Config{})
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0.1992,
		0, 1, 0, 0,
		0, 0, 1, 0.7535,
		0, 0, 0, 1,
	})
	if !mat.EqualApprox(tse, want, 1e-9) {
		t.Errorf("Tse =\n%v\nwant\n%v", mat.Formatted(tse), mat.Formatted(want))
	}
}

func TestEndEffector_TestPose(t *testing.T) {
	cfg := Config{Arm: [5]float64{0, 0, 0.2, -1.6, 0}}
	tse, err := EndEffector(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(4, 4, []float64{
		0.170, 0, 0.985, 0.387,
		0, 1, 0, 0,
		-0.985, 0, 0.170, 0.570,
		0, 0, 0, 1,
	})
	if !mat.EqualApprox(tse, want, 1e-3) {
		t.Errorf("Tse =\n%v\nwant\n%v", mat.Formatted(tse), mat.Formatted(want))
	}
}

// Each Jacobian column is the body twist produced by a unit speed of that
// wheel or joint; check against finite differences of the kinematics.
func TestJacobian_FiniteDifference(t *testing.T) {
	cfg := Config{
		Chassis: Chassis{Phi: 0.4, X: 0.3, Y: -0.2},
		Arm:     [5]float64{0.3, -0.4, -0.8, -1.1, 0.5},
	}
	je, err := Jacobian(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r, c := je.Dims(); r != 6 || c != 9 {
		t.Fatalf("Je is %dx%d, want 6x9", r, c)
	}

	tse, err := EndEffector(cfg)
	if err != nil {
		t.Fatal(err)
	}

	const delta = 1e-6
	for col := 0; col < 9; col++ {
		moved := cfg
		if col < 4 {
			var dw [4]float64
			dw[col] = delta
			moved.Chassis = Odometry(cfg.Chassis, dw)
		} else {
			moved.Arm[col-4] += delta
		}
		tMoved, err := EndEffector(moved)
		if err != nil {
			t.Fatal(err)
		}
		twist := se3.ErrorTwist(tse, tMoved).Scale(1 / delta)
		for row := 0; row < 6; row++ {
			if math.Abs(twist[row]-je.At(row, col)) > 1e-4 {
				t.Errorf("Je[%d][%d] = %f, finite difference %f", row, col, je.At(row, col), twist[row])
			}
		}
	}
}

func TestCubeTransform(t *testing.T) {
	got := CubeTransform(0, -1, -math.Pi/2)
	want := mat.NewDense(4, 4, []float64{
		0, 1, 0, 0,
		-1, 0, 0, -1,
		0, 0, 1, 0.025,
		0, 0, 0, 1,
	})
	if !mat.EqualApprox(got, want, 1e-12) {
		t.Errorf("Tsc =\n%v\nwant\n%v", mat.Formatted(got), mat.Formatted(want))
	}
}
