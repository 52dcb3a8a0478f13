package fitting

import (
	"fmt"

	"github.com/qsense/kinfit/internal/params"
)

// TracePoint is one recorded objective evaluation.
type TracePoint struct {
	Step int
	Loss float64
}

// Trace is the loss-vs-step history of an optimization, append-only.
type Trace []TracePoint

// Final returns the last recorded loss, or 0 for an empty trace.
func (tr Trace) Final() float64 {
	if len(tr) == 0 {
		return 0
	}
	return tr[len(tr)-1].Loss
}

// ConvergenceWarning marks a fit that exhausted its iteration budget
// before meeting the tolerance. The attached result is still the best
// found and remains usable.
type ConvergenceWarning struct {
	Iterations int
	BestLoss   float64
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("did not converge within %d iterations (best loss %g)", w.Iterations, w.BestLoss)
}

// FitResult is the immutable outcome of one optimization run.
type FitResult struct {
	Params      params.Vector
	InitialLoss float64
	FinalLoss   float64
	Trace       Trace
	Warning     *ConvergenceWarning
}

// Converged reports whether the fit finished inside its budget.
func (r *FitResult) Converged() bool { return r.Warning == nil }
