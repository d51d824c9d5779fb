package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gwillem/youbot/pkg/robot"
	"github.com/gwillem/youbot/pkg/sim"
	"github.com/gwillem/youbot/pkg/trajectory"
)

func TestWriteRows(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]float64{{1, 0.5, -2}, {0.1, 1e-7, 3}}
	if err := WriteRows(&buf, rows); err != nil {
		t.Fatal(err)
	}
	want := "1,0.5,-2\n0.1,1e-07,3\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	back, err := ReadRows(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[1][1] != 1e-7 || back[0][2] != -2 {
		t.Errorf("ReadRows = %v", back)
	}
}

func TestReadRows_Invalid(t *testing.T) {
	_, err := ReadRows(strings.NewReader("1,2\n3,x\n"))
	if err == nil || !strings.Contains(err.Error(), "row 2 column 2") {
		t.Errorf("err = %v, want position of bad field", err)
	}
}

func TestWriteConfigs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "configs.csv")
	frames := []sim.ConfigFrame{
		{Config: robot.Config{Chassis: robot.Chassis{Phi: 0.3, X: -0.2, Y: 0.1}}},
		{Config: robot.Config{Arm: [5]float64{0, 1, 2, 3, 4}}, Gripper: trajectory.Closed},
	}
	if err := WriteConfigs(path, frames); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("%d rows, want 2", len(rows))
	}
	for i, row := range rows {
		if len(row) != 13 {
			t.Errorf("row %d has %d columns, want 13", i, len(row))
		}
	}
	if rows[0][0] != 0.3 || rows[1][7] != 4 || rows[1][12] != 1 {
		t.Errorf("rows = %v", rows)
	}
}

func TestWriteTrajectory(t *testing.T) {
	p, err := trajectory.ParamsFromSettings(robot.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	frames, err := trajectory.Generate(p)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "traj.csv")
	if err := WriteTrajectory(path, frames); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(frames) {
		t.Fatalf("%d rows, want %d", len(rows), len(frames))
	}
	back, err := trajectory.FrameFromRow(rows[600])
	if err != nil {
		t.Fatal(err)
	}
	if back.Gripper != frames[600].Gripper {
		t.Errorf("gripper = %d, want %d", back.Gripper, frames[600].Gripper)
	}
}

func TestWriteErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xerr.csv")
	samples := []sim.ErrorSample{
		{Time: 0, Xerr: [6]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}},
		{Time: 0.01, Xerr: [6]float64{}},
	}
	if err := WriteErrors(path, samples); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || len(rows[0]) != 7 || rows[0][6] != 0.6 || rows[1][0] != 0.01 {
		t.Errorf("rows = %v", rows)
	}
}

func TestPlotErrors(t *testing.T) {
	samples := make([]sim.ErrorSample, 100)
	for i := range samples {
		v := 1 / float64(i+1)
		samples[i] = sim.ErrorSample{
			Time: float64(i) * trajectory.Timestep,
			Xerr: [6]float64{v, -v, 0, v / 2, 0, -v / 2},
		}
	}

	path := filepath.Join(t.TempDir(), "plots", "xerr.png")
	if err := PlotErrors(path, samples); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestPlotErrors_Empty(t *testing.T) {
	err := PlotErrors(filepath.Join(t.TempDir(), "x.png"), nil)
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("err = %v, want ErrNoSamples", err)
	}
}
