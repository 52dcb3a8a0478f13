package fitting

import (
	"math"

	"github.com/qsense/kinfit/internal/dataset"
	"github.com/qsense/kinfit/internal/kinetics"
	"github.com/qsense/kinfit/internal/params"
)

// Residual written when the model returns NaN or Inf for a probed
// vector. Large enough to repel the search, finite so it never aborts
// the fit.
const overflowResidual = 1e100

// ResidualFunc fills dst with predicted-minus-observed residuals for the
// given parameter vector. len(dst) is the sample count.
type ResidualFunc func(dst []float64, v params.Vector)

// Loss evaluates a kinetic model against an observed series.
type Loss struct {
	model kinetics.Model
	data  dataset.Series
}

func NewLoss(model kinetics.Model, data dataset.Series) *Loss {
	return &Loss{model: model, data: data}
}

// Size returns the residual count, one per sample.
func (l *Loss) Size() int { return len(l.data) }

// Residuals computes predicted − observed for every sample. Non-finite
// model output maps to a large finite penalty instead of propagating.
func (l *Loss) Residuals(dst []float64, v params.Vector) {
	for i, s := range l.data {
		pred := l.model.Eval(s.Time, v)
		r := pred - s.Shift
		if math.IsNaN(r) || math.IsInf(r, 0) {
			r = overflowResidual
		}
		dst[i] = r
	}
}

// SSR returns the sum of squared residuals.
func (l *Loss) SSR(v params.Vector) float64 {
	dst := make([]float64, len(l.data))
	l.Residuals(dst, v)
	sum := 0.0
	for _, r := range dst {
		sum += r * r
	}
	return sum
}
