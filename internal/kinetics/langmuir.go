package kinetics

import (
	"math"

	"github.com/qsense/kinfit/internal/params"
)

// Langmuir is single-site association kinetics: the shift decays
// exponentially toward -amplitude at the observed rate.
//
// Fitted parameters, in order: amplitude, kobs, offset.
type Langmuir struct{}

func NewLangmuir() *Langmuir { return &Langmuir{} }

func (m *Langmuir) Name() string { return "langmuir" }

func (m *Langmuir) ParamNames() []string {
	return []string{"amplitude", "kobs", "offset"}
}

func (m *Langmuir) Eval(t float64, p params.Vector) float64 {
	amplitude, kobs, offset := p[0], p[1], p[2]
	return -amplitude*(1-math.Exp(-kobs*t)) + offset
}

// BiExponential is two-site association kinetics, the sum of two
// independent Langmuir terms with a shared offset.
//
// Fitted parameters, in order: a1, k1, a2, k2, offset.
type BiExponential struct{}

func NewBiExponential() *BiExponential { return &BiExponential{} }

func (m *BiExponential) Name() string { return "biexp" }

func (m *BiExponential) ParamNames() []string {
	return []string{"a1", "k1", "a2", "k2", "offset"}
}

func (m *BiExponential) Eval(t float64, p params.Vector) float64 {
	a1, k1, a2, k2, offset := p[0], p[1], p[2], p[3], p[4]
	return -a1*(1-math.Exp(-k1*t)) - a2*(1-math.Exp(-k2*t)) + offset
}
