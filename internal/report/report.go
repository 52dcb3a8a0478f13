// Package report renders and persists fit results: a raw/initial/fitted
// comparison plot (PNG and SVG), terminal previews, and the loss-trace
// CSV.
package report

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/qsense/kinfit/internal/dataset"
	"github.com/qsense/kinfit/internal/kinetics"
	"github.com/qsense/kinfit/internal/params"
)

// Curves bundles everything the renderers need: the observed window, the
// model, and the parameter vectors before and after fitting.
type Curves struct {
	Data        dataset.Series
	Model       kinetics.Model
	Initial     params.Vector
	Fitted      params.Vector
	InitialLoss float64
	FinalLoss   float64
	BestEffort  bool // fit hit its iteration budget
}

// curveSamples evaluates the model at n points spanning the data window,
// finer than the raw sampling so fitted curves render smoothly.
func (c Curves) curveSamples(v params.Vector, n int) (ts, ys []float64) {
	lo, hi := c.Data.Span()
	ts = floats.Span(make([]float64, n), lo, hi)
	ys = make([]float64, n)
	for i, t := range ts {
		ys[i] = c.Model.Eval(t, v)
	}
	return ts, ys
}

func (c Curves) title() string {
	s := fmt.Sprintf("%s fit: loss %.4g -> %.4g", c.Model.Name(), c.InitialLoss, c.FinalLoss)
	if c.BestEffort {
		s += " (best effort, not converged)"
	}
	return s
}
