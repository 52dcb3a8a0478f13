package kinetics

import (
	"math"

	"github.com/qsense/kinfit/internal/params"
)

// Saturation models the frequency response of a film that loads like a
// modified Maxwell element once adsorption begins, with a logistic
// switch-on around the onset time and a linear drift toward saturation.
//
// Fitted parameters, in order: k1 (elastic rate), n0 (onset viscosity),
// n1 (loading viscosity), n2 (drift viscosity). OnsetTime, Baseline,
// SwitchScale and SwitchRate are experiment constants, set from config
// or by the onset scan.
type Saturation struct {
	OnsetTime   float64 // adsorption onset (dt)
	Baseline    float64 // vertical offset at onset (cvert)
	SwitchScale float64 // logistic switch amplitude (c3)
	SwitchRate  float64 // logistic switch steepness (r)
}

func NewSaturation() *Saturation {
	return &Saturation{
		Baseline:    0,
		SwitchScale: 1.0,
		SwitchRate:  1.0,
	}
}

func (m *Saturation) Name() string { return "saturation" }

func (m *Saturation) ParamNames() []string {
	return []string{"k1", "n0", "n1", "n2"}
}

func (m *Saturation) SetOnset(onset, baseline float64) {
	m.OnsetTime = onset
	m.Baseline = baseline
}

func (m *Saturation) Onset() float64 { return m.OnsetTime }

func (m *Saturation) Eval(t float64, p params.Vector) float64 {
	k1, n0, n1, n2 := p[0], p[1], p[2], p[3]
	at := t - m.OnsetTime

	// Maxwell relaxation time; large for small k1.
	tau := n0 / k1
	maxwell := -((1/k1)*(1-math.Exp(-at/tau)) + at/n1)
	sCurve := 1 / (1 + m.SwitchScale*math.Exp(-at*m.SwitchRate))
	steady := at/n2 + m.Baseline

	return maxwell*sCurve + steady
}

// Plateau estimates the saturated frequency shift by stepping multiples
// of the onset time until the curve's second difference flattens to 1%
// of its value at onset. The second return is false when no plateau is
// found within 100 onset intervals.
func (m *Saturation) Plateau(p params.Vector) (float64, bool) {
	dt := m.OnsetTime
	if dt == 0 {
		return 0, false
	}

	curv := func(t float64) (first, second float64) {
		left := m.Eval(t, p) - m.Eval(t-1, p)
		right := m.Eval(t+1, p) - m.Eval(t, p)
		return right, left - right
	}

	_, refCurv := curv(dt)
	for i := 1; i < 100; i++ {
		t := dt * float64(i)
		slope, c := curv(t)
		if math.Abs(refCurv)*0.01 <= math.Abs(c) {
			continue
		}
		if slope < 0 {
			return m.Eval(t, p), true
		}
		// Still rising: remove the residual linear drift.
		return m.Eval(t, p) - t*slope, true
	}
	return 0, false
}

// BaselineShift returns the shift between the plateau and the model value
// at the fit-window start (bt in the lab's bookkeeping).
func (m *Saturation) BaselineShift(p params.Vector, windowStart float64) (float64, bool) {
	plateau, ok := m.Plateau(p)
	if !ok {
		return 0, false
	}
	return plateau - m.Eval(windowStart, p), true
}
