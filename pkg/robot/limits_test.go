package robot

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestJointLimit_Normalize(t *testing.T) {
	jl := JointLimit{
		Min: -1,
		Max: 3,
	}

	tests := []struct {
		angle    float64
		expected float64
	}{
		{-1, -100.0}, // min -> -100
		{3, 100.0},   // max -> 100
		{1, 0.0},     // mid -> 0
		{0, -50.0},   // quarter -> -50
		{2, 50.0},    // three-quarter -> 50
	}

	for _, tt := range tests {
		got := jl.Normalize(tt.angle)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("Normalize(%f) = %f, want %f", tt.angle, got, tt.expected)
		}
	}
}

func TestLimits_Positions(t *testing.T) {
	limits := Limits{
		Joint2: {Min: -1, Max: 3},
		Joint4: {Min: -2, Max: 2},
	}
	cfg := Config{Arm: [5]float64{0.7, 3, 0, -1, 9}}

	got := limits.Positions(cfg)
	want := [5]float64{0, 100, 0, -50, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("joint %d = %f, want %f", i+1, got[i], want[i])
		}
	}
}

func TestJointLimit_ZeroRange(t *testing.T) {
	jl := JointLimit{Min: 1, Max: 1}
	if got := jl.Normalize(5); got != 0 {
		t.Errorf("Normalize on zero range = %f, want 0", got)
	}
	if !jl.Contains(1) {
		t.Error("Contains(1) = false on [1, 1]")
	}
}

func TestLimits_Violations(t *testing.T) {
	limits := DefaultLimits()

	var cfg Config
	cfg.Arm = [5]float64{0, 0, -0.5, -0.5, 0}
	if got := limits.Violations(cfg); len(got) != 0 {
		t.Errorf("Violations = %v, want none", got)
	}

	cfg.Arm = [5]float64{0, -1.5, 0.2, -1.6, 0}
	got := limits.Violations(cfg)
	if len(got) != 1 || got[0] != Joint2 {
		t.Errorf("Violations = %v, want [joint2]", got)
	}
}

func TestLimits_Worsened(t *testing.T) {
	limits := Limits{Joint3: {Min: -2, Max: -0.2}}

	var cur, next Config
	cur.Arm[2] = 0.1
	next.Arm[2] = 0.05
	if got := limits.Worsened(cur, next); len(got) != 0 {
		t.Errorf("moving back toward range: Worsened = %v, want none", got)
	}

	next.Arm[2] = 0.15
	if got := limits.Worsened(cur, next); len(got) != 1 || got[0] != Joint3 {
		t.Errorf("moving away from range: Worsened = %v, want [joint3]", got)
	}

	cur.Arm[2] = -0.3
	next.Arm[2] = -0.1
	if got := limits.Worsened(cur, next); len(got) != 1 {
		t.Errorf("leaving range: Worsened = %v, want [joint3]", got)
	}
}

func TestLoadLimits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "limits.json")
	data := `{"joint3": {"min": -2.5, "max": -0.3}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	limits, err := LoadLimits(path)
	if err != nil {
		t.Fatalf("LoadLimits: %v", err)
	}
	if got := limits[Joint3]; got.Min != -2.5 || got.Max != -0.3 {
		t.Errorf("joint3 = %+v", got)
	}

	if err := os.WriteFile(path, []byte(`{"elbow": {"min": 0, "max": 1}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLimits(path); err == nil {
		t.Error("LoadLimits accepted unknown joint")
	}
}

func TestJointName_Index(t *testing.T) {
	for i, name := range AllJoints() {
		if got := name.Index(); got != i {
			t.Errorf("%s.Index() = %d, want %d", name, got, i)
		}
	}
	if got := JointName("gripper").Index(); got != -1 {
		t.Errorf("unknown joint Index() = %d, want -1", got)
	}
}
