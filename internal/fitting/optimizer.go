package fitting

import (
	"context"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"github.com/qsense/kinfit/internal/params"
)

// Bounds are per-parameter box constraints, positional with the vector.
type Bounds struct {
	Lower params.Vector
	Upper params.Vector
}

// Optimizer searches the parameter box for the vector minimizing the sum
// of squared residuals. The concrete algorithm is substitutable; size is
// the residual count fn produces.
type Optimizer interface {
	Fit(ctx context.Context, initial params.Vector, b Bounds, size int, fn ResidualFunc) (*FitResult, error)
}

// Marquardt drives a Levenberg-Marquardt least-squares core within box
// bounds. The unbounded core sees a sine reparameterisation of each free
// parameter, so every probed vector decodes into [lower, upper] and the
// model is never evaluated outside the declared bounds. Parameters with
// lower == upper are held fixed.
type Marquardt struct {
	MaxIterations int
	Tolerance     float64 // relative objective tolerance
	Tau           float64 // initial damping scale
	GradientTol   float64 // Eps1: gradient norm stop
	StepTol       float64 // Eps2: step size stop
}

func NewMarquardt() *Marquardt {
	return &Marquardt{
		MaxIterations: 5000,
		Tolerance:     1e-12,
		Tau:           1e-6,
		GradientTol:   1e-8,
		StepTol:       1e-8,
	}
}

type boundTransform struct {
	free  []int // indices of non-fixed parameters
	fixed params.Vector
	lower params.Vector
	upper params.Vector
}

func newBoundTransform(initial params.Vector, b Bounds) *boundTransform {
	tr := &boundTransform{fixed: initial.Clone(), lower: b.Lower, upper: b.Upper}
	for i := range initial {
		if b.Lower[i] < b.Upper[i] {
			tr.free = append(tr.free, i)
		}
	}
	return tr
}

// boundNudge keeps encoded fractions inside the open interval: a value
// sitting exactly on a bound would map to asin(±1), where the sine
// transform is flat and the numerical jacobian sees a dead direction.
const boundNudge = 1e-6

// encode maps a bounded vector to the unconstrained search space.
func (tr *boundTransform) encode(x params.Vector) []float64 {
	u := make([]float64, len(tr.free))
	for j, i := range tr.free {
		frac := (x[i] - tr.lower[i]) / (tr.upper[i] - tr.lower[i])
		frac = math.Min(1-boundNudge, math.Max(boundNudge, frac))
		u[j] = math.Asin(2*frac - 1)
	}
	return u
}

// decode maps a search-space point back into the box. The result is
// clamped so it lies in [lower, upper] exactly.
func (tr *boundTransform) decode(u []float64) params.Vector {
	x := tr.fixed.Clone()
	for j, i := range tr.free {
		v := tr.lower[i] + (tr.upper[i]-tr.lower[i])*(math.Sin(u[j])+1)/2
		x[i] = math.Min(tr.upper[i], math.Max(tr.lower[i], v))
	}
	return x
}

// Fit runs the bounded search. The returned result always carries the
// best vector seen; exhausting the iteration budget sets Warning instead
// of failing.
func (o *Marquardt) Fit(ctx context.Context, initial params.Vector, b Bounds, size int, fn ResidualFunc) (*FitResult, error) {
	if len(initial) != len(b.Lower) || len(initial) != len(b.Upper) {
		return nil, fmt.Errorf("bounds dimension %d/%d does not match vector %d", len(b.Lower), len(b.Upper), len(initial))
	}
	for i := range initial {
		if b.Lower[i] > b.Upper[i] {
			return nil, fmt.Errorf("component %d: inverted bounds [%g, %g]", i, b.Lower[i], b.Upper[i])
		}
		if initial[i] < b.Lower[i] || initial[i] > b.Upper[i] {
			return nil, fmt.Errorf("component %d: initial %g outside [%g, %g]", i, initial[i], b.Lower[i], b.Upper[i])
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ssr := func(dst []float64) float64 {
		sum := 0.0
		for _, r := range dst {
			sum += r * r
		}
		return sum
	}

	initLoss := func() float64 {
		dst := make([]float64, size)
		fn(dst, initial)
		return ssr(dst)
	}()

	tr := newBoundTransform(initial, b)
	if len(tr.free) == 0 {
		return &FitResult{
			Params:      initial.Clone(),
			InitialLoss: initLoss,
			FinalLoss:   initLoss,
			Trace:       Trace{{Step: 0, Loss: initLoss}},
		}, nil
	}

	// Raw objective in search space, used for jacobian probes.
	raw := func(dst, u []float64) {
		fn(dst, tr.decode(u))
	}

	// Recorded objective: tracks the trace and the best vector seen, so a
	// best-effort result survives any core failure. tolMet follows the
	// most recent accepted improvement, so after the run it tells whether
	// the objective had settled below the relative tolerance.
	var trace Trace
	bestLoss := math.Inf(1)
	bestU := tr.encode(initial)
	tolMet := false
	recorded := func(dst, u []float64) {
		raw(dst, u)
		loss := ssr(dst)
		trace = append(trace, TracePoint{Step: len(trace), Loss: loss})
		if loss < bestLoss {
			tolMet = bestLoss-loss <= o.Tolerance*math.Max(loss, 1)
			bestLoss = loss
			bestU = append([]float64(nil), u...)
		}
	}

	jac := lm.NumJac{Func: raw}
	prob := lm.LMProblem{
		Dim:        len(tr.free),
		Size:       size,
		Func:       recorded,
		Jac:        jac.Jac,
		InitParams: tr.encode(initial),
		Tau:        o.Tau,
		Eps1:       o.GradientTol,
		Eps2:       o.StepTol,
	}

	_, lmErr := lm.LM(prob, &lm.Settings{
		Iterations:   o.MaxIterations,
		ObjectiveTol: o.Tolerance,
	})

	fitted := tr.decode(bestU)
	result := &FitResult{
		Params:      fitted,
		InitialLoss: initLoss,
		FinalLoss:   bestLoss,
		Trace:       trace,
	}
	// The core evaluates the objective once at the start and once per
	// trial step, so steps is the evaluation count less one. A run that
	// stopped inside its budget converged on one of the stop criteria;
	// a run that used the whole budget is only exhausted when the
	// objective never settled below the tolerance.
	steps := len(trace) - 1
	if lmErr != nil || (steps >= o.MaxIterations && !tolMet) {
		result.Warning = &ConvergenceWarning{Iterations: o.MaxIterations, BestLoss: bestLoss}
	}
	return result, nil
}
