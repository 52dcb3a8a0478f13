// Package kinetics provides the binding-kinetics models fitted against
// QCM-D frequency-shift data.
//
// Each model is a pure function of (time, parameter vector) and is
// registered under a name, so the equation form in use is configuration,
// not code:
//
//   - [Saturation]: modified-Maxwell film response gated by a logistic
//     switch plus linear drift
//   - [Langmuir]: single-exponential association
//   - [BiExponential]: two-site association
//
// Models carrying experiment-level constants (onset time, drift offsets)
// expose them as struct fields, adjustable after construction.
package kinetics

import (
	"fmt"
	"sort"

	"github.com/qsense/kinfit/internal/params"
)

// Model maps (time, parameter vector) to a predicted frequency shift.
// Implementations are stateless and deterministic, and must accept any
// time value, not just sampled ones.
type Model interface {
	Name() string
	ParamNames() []string
	Eval(t float64, p params.Vector) float64
}

// OnsetModel is implemented by models with an adsorption-onset time that
// an outer scan can sweep across candidate values.
type OnsetModel interface {
	Model
	SetOnset(onset, baseline float64)
	Onset() float64
}

var registry = map[string]func() Model{
	"saturation": func() Model { return NewSaturation() },
	"langmuir":   func() Model { return NewLangmuir() },
	"biexp":      func() Model { return NewBiExponential() },
}

// New returns the named model variant.
func New(name string) (Model, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

// Names lists the registered variants in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
