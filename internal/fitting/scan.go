package fitting

import (
	"context"
	"fmt"

	"github.com/qsense/kinfit/internal/dataset"
	"github.com/qsense/kinfit/internal/kinetics"
	"github.com/qsense/kinfit/internal/params"
)

// Candidate is one probed onset: the onset time, the observed shift
// there (used as the model baseline), and the best loss of the inner fit.
type Candidate struct {
	Onset    float64
	Baseline float64
	Loss     float64
}

// ScanResult is the outcome of an onset scan: the winning inner fit, the
// winning onset, and the loss of every candidate tried.
type ScanResult struct {
	Best       *FitResult
	Onset      float64
	Baseline   float64
	Candidates []Candidate
}

// Trace returns the candidate losses as a loss trace, one step per
// candidate in scan order.
func (r *ScanResult) Trace() Trace {
	tr := make(Trace, len(r.Candidates))
	for i, c := range r.Candidates {
		tr[i] = TracePoint{Step: i, Loss: c.Loss}
	}
	return tr
}

// OnsetScan sweeps a model's adsorption onset across candidate times
// drawn from the data, running a full bounded fit at each and keeping
// the lowest loss. Candidate onsets are the sample times inside the scan
// span, subsampled evenly when the span holds more than MaxCandidates.
type OnsetScan struct {
	MaxCandidates int
}

func NewOnsetScan() *OnsetScan {
	return &OnsetScan{MaxCandidates: 200}
}

// Search runs the scan. span is the slice of data whose timestamps are
// eligible onsets; data is the fit window. The model is left configured
// at the winning onset.
func (g *OnsetScan) Search(
	ctx context.Context,
	model kinetics.OnsetModel,
	data dataset.Series,
	span dataset.Series,
	opt Optimizer,
	initial params.Vector,
	b Bounds,
) (*ScanResult, error) {
	if len(span) == 0 {
		return nil, fmt.Errorf("onset span holds no samples")
	}

	candidates := span
	if g.MaxCandidates > 0 && len(span) > g.MaxCandidates {
		candidates = make(dataset.Series, 0, g.MaxCandidates)
		stride := (len(span) - 1) / g.MaxCandidates
		for i := 0; i < g.MaxCandidates; i++ {
			candidates = append(candidates, span[i*stride])
		}
	}

	loss := NewLoss(model, data)
	result := &ScanResult{Candidates: make([]Candidate, 0, len(candidates))}

	for _, c := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		model.SetOnset(c.Time, c.Shift)
		fit, err := opt.Fit(ctx, initial.Clone(), b, loss.Size(), loss.Residuals)
		if err != nil {
			return nil, fmt.Errorf("onset %g: %w", c.Time, err)
		}

		result.Candidates = append(result.Candidates, Candidate{
			Onset:    c.Time,
			Baseline: c.Shift,
			Loss:     fit.FinalLoss,
		})

		if result.Best == nil || fit.FinalLoss < result.Best.FinalLoss {
			result.Best = fit
			result.Onset = c.Time
			result.Baseline = c.Shift
		}
	}

	model.SetOnset(result.Onset, result.Baseline)
	return result, nil
}
