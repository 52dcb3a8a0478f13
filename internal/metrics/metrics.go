// Package metrics computes goodness-of-fit summaries for a fitted curve
// against the observed series.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/qsense/kinfit/internal/dataset"
	"github.com/qsense/kinfit/internal/kinetics"
	"github.com/qsense/kinfit/internal/params"
)

// Summary is the per-fit quality report stored with a run and annotated
// on plots.
type Summary struct {
	SSR     float64 `json:"ssr"`
	RMSE    float64 `json:"rmse"`
	RSq     float64 `json:"r_squared"`
	Samples int     `json:"samples"`
}

// Evaluate compares the model at v against the observed series.
func Evaluate(model kinetics.Model, v params.Vector, data dataset.Series) Summary {
	n := len(data)
	if n == 0 {
		return Summary{}
	}

	observed := data.Shifts()
	mean := stat.Mean(observed, nil)

	var ssr, tss float64
	for _, s := range data {
		r := model.Eval(s.Time, v) - s.Shift
		if math.IsNaN(r) || math.IsInf(r, 0) {
			r = 1e100
		}
		ssr += r * r
		d := s.Shift - mean
		tss += d * d
	}

	sum := Summary{
		SSR:     ssr,
		RMSE:    math.Sqrt(ssr / float64(n)),
		Samples: n,
	}
	if tss > 0 {
		sum.RSq = 1 - ssr/tss
	}
	return sum
}

// Map flattens the summary for storage alongside run metadata.
func (s Summary) Map() map[string]float64 {
	return map[string]float64{
		"ssr":       s.SSR,
		"rmse":      s.RMSE,
		"r_squared": s.RSq,
	}
}
