package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/gwillem/youbot/pkg/sim"
)

// ErrNoSamples is returned when plotting an empty error log.
var ErrNoSamples = errors.New("no error samples")

// ErrorLabels names the six error twist components in plot order.
var ErrorLabels = [6]string{"ωx", "ωy", "ωz", "vx", "vy", "vz"}

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
	plotDPI    = 150
)

// ErrorPlot builds a plot of the six error twist components over time.
func ErrorPlot(samples []sim.ErrorSample) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	p := plot.New()
	p.Title.Text = "End-effector error twist"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "Xerr (rad, m)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = color.Gray{Y: 160}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(zero)

	for c := range ErrorLabels {
		pts := make(plotter.XYs, len(samples))
		for i, s := range samples {
			pts[i].X = s.Time
			pts[i].Y = s.Xerr[c]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrorLabels[c], err)
		}
		line.Color = plotutil.Color(c)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(ErrorLabels[c], line)
	}
	return p, nil
}

// WritePlot renders p as PNG.
func WritePlot(w io.Writer, p *plot.Plot) error {
	c := vgimg.NewWith(
		vgimg.UseWH(plotWidth, plotHeight),
		vgimg.UseDPI(plotDPI),
	)
	p.Draw(draw.New(c))

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// PlotErrors renders the error twist log to a PNG file.
func PlotErrors(path string, samples []sim.ErrorSample) (err error) {
	p, err := ErrorPlot(samples)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return WritePlot(f, p)
}
