package se3

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestTimeScaling(t *testing.T) {
	tests := []struct {
		name  string
		scale TimeScaling
		tf, t float64
		want  float64
	}{
		{"cubic", CubicTimeScaling, 2, 0.6, 0.216},
		{"quintic", QuinticTimeScaling, 2, 0.6, 0.16308},
		{"cubic start", CubicTimeScaling, 2, 0, 0},
		{"cubic end", CubicTimeScaling, 2, 2, 1},
		{"quintic past end", QuinticTimeScaling, 2, 3, 1},
		{"zero duration", CubicTimeScaling, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scale(tt.tf, tt.t); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("s(%v, %v) = %v, want %v", tt.tf, tt.t, got, tt.want)
			}
		})
	}
}

var (
	trajStart = mat.NewDense(4, 4, []float64{1, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 1, 0, 0, 0, 1})
	trajEnd   = mat.NewDense(4, 4, []float64{0, 0, 1, 0.1, 1, 0, 0, 0, 0, 1, 0, 4.1, 0, 0, 0, 1})
)

func TestScrewTrajectory(t *testing.T) {
	traj, err := ScrewTrajectory(trajStart, trajEnd, 5, 4, CubicTimeScaling)
	if err != nil {
		t.Fatal(err)
	}
	if len(traj) != 4 {
		t.Fatalf("len = %d, want 4", len(traj))
	}
	assertMatrix(t, "first", traj[0], trajStart, 1e-9)
	assertMatrix(t, "last", traj[3], trajEnd, 1e-9)

	want1 := mat.NewDense(4, 4, []float64{
		0.904, -0.25, 0.346, 0.441,
		0.346, 0.904, -0.25, 0.529,
		-0.25, 0.346, 0.904, 1.601,
		0, 0, 0, 1,
	})
	assertMatrix(t, "second", traj[1], want1, 1e-3)
}

func TestCartesianTrajectory(t *testing.T) {
	traj, err := CartesianTrajectory(trajStart, trajEnd, 5, 4, QuinticTimeScaling)
	if err != nil {
		t.Fatal(err)
	}
	assertMatrix(t, "first", traj[0], trajStart, 1e-9)
	assertMatrix(t, "last", traj[3], trajEnd, 1e-9)

	// Origin moves on the straight line between the endpoints.
	s := QuinticTimeScaling(5, 5.0/3)
	_, p := TransToRp(traj[1])
	if want := 1 + s*(0.1-1); math.Abs(p.X-want) > 1e-9 {
		t.Errorf("x = %v, want %v", p.X, want)
	}
	if want := 1 + s*(4.1-1); math.Abs(p.Z-want) > 1e-9 {
		t.Errorf("z = %v, want %v", p.Z, want)
	}
}

func TestTrajectory_TooFewPoints(t *testing.T) {
	if _, err := ScrewTrajectory(trajStart, trajEnd, 5, 1, CubicTimeScaling); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("ScrewTrajectory error = %v, want ErrTooFewPoints", err)
	}
	if _, err := CartesianTrajectory(trajStart, trajEnd, 5, 0, CubicTimeScaling); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("CartesianTrajectory error = %v, want ErrTooFewPoints", err)
	}
}
