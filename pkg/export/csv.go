// Package export writes simulation output: CSV files that CoppeliaSim scenes
// play back, and error plots.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/multierr"

	"github.com/gwillem/youbot/pkg/sim"
	"github.com/gwillem/youbot/pkg/trajectory"
)

// WriteRows writes numeric rows as CSV without a header, which is the format
// the CoppeliaSim scenes read.
func WriteRows(w io.Writer, rows [][]float64) error {
	cw := csv.NewWriter(w)
	record := make([]string, 0, 13)
	for i, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRows parses a headerless numeric CSV.
func ReadRows(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	rows := make([][]float64, len(records))
	for i, rec := range records {
		rows[i] = make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
			rows[i][j] = v
		}
	}
	return rows, nil
}

// WriteFile writes rows to path, creating parent directories.
func WriteFile(path string, rows [][]float64) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return WriteRows(f, rows)
}

// ReadFile reads rows from a CSV file.
func ReadFile(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

// WriteConfigs writes the robot configurations (scene 6 format).
func WriteConfigs(path string, frames []sim.ConfigFrame) error {
	rows := make([][]float64, len(frames))
	for i, f := range frames {
		rows[i] = f.Row()
	}
	return WriteFile(path, rows)
}

// WriteTrajectory writes the end-effector reference (scene 8 format).
func WriteTrajectory(path string, frames []trajectory.Frame) error {
	rows := make([][]float64, len(frames))
	for i, f := range frames {
		rows[i] = f.Row()
	}
	return WriteFile(path, rows)
}

// WriteErrors writes the error twist log: time then six components.
func WriteErrors(path string, samples []sim.ErrorSample) error {
	rows := make([][]float64, len(samples))
	for i, s := range samples {
		rows[i] = s.Row()
	}
	return WriteFile(path, rows)
}
