package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	rawColor     = color.RGBA{R: 0x44, G: 0x88, B: 0xff, A: 0xff}
	initialColor = color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
	fittedColor  = color.RGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}
)

// WritePNG renders the comparison plot (raw points, initial curve,
// fitted curve) with the error values in the title.
func WritePNG(path string, c Curves) error {
	p := plot.New()
	p.Title.Text = c.title()
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "frequency shift (Hz)"

	raw := make(plotter.XYs, len(c.Data))
	for i, s := range c.Data {
		raw[i] = plotter.XY{X: s.Time, Y: s.Shift}
	}
	scatter, err := plotter.NewScatter(raw)
	if err != nil {
		return fmt.Errorf("plot %s: %w", path, err)
	}
	scatter.Color = rawColor
	scatter.Radius = vg.Points(1.2)
	p.Add(scatter)
	p.Legend.Add("raw", scatter)

	curves := []struct {
		name  string
		v     []float64
		color color.RGBA
	}{
		{"initial", c.Initial, initialColor},
		{"fitted", c.Fitted, fittedColor},
	}
	for _, cv := range curves {
		ts, ys := c.curveSamples(cv.v, 4*len(c.Data))
		pts := make(plotter.XYs, len(ts))
		for i := range ts {
			pts[i] = plotter.XY{X: ts[i], Y: ys[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot %s: %w", path, err)
		}
		line.Color = cv.color
		p.Add(line)
		p.Legend.Add(cv.name, line)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("plot %s: %w", path, err)
	}
	return nil
}
