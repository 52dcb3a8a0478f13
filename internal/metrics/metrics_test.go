package metrics

import (
	"math"
	"testing"

	"github.com/qsense/kinfit/internal/dataset"
	"github.com/qsense/kinfit/internal/kinetics"
	"github.com/qsense/kinfit/internal/params"
)

func TestEvaluatePerfectFit(t *testing.T) {
	m := kinetics.NewLangmuir()
	p := params.Vector{25.0, 0.05, -1.0}

	data := make(dataset.Series, 50)
	for i := range data {
		tm := float64(i) * 2
		data[i] = dataset.Sample{Time: tm, Shift: m.Eval(tm, p)}
	}

	s := Evaluate(m, p, data)
	if s.SSR != 0 {
		t.Errorf("SSR = %g, want 0", s.SSR)
	}
	if s.RMSE != 0 {
		t.Errorf("RMSE = %g, want 0", s.RMSE)
	}
	if math.Abs(s.RSq-1) > 1e-12 {
		t.Errorf("R2 = %g, want 1", s.RSq)
	}
	if s.Samples != 50 {
		t.Errorf("samples = %d", s.Samples)
	}
}

func TestEvaluateImperfectFit(t *testing.T) {
	m := kinetics.NewLangmuir()
	truth := params.Vector{25.0, 0.05, -1.0}
	probe := params.Vector{20.0, 0.08, 0.0}

	data := make(dataset.Series, 50)
	for i := range data {
		tm := float64(i) * 2
		data[i] = dataset.Sample{Time: tm, Shift: m.Eval(tm, truth)}
	}

	s := Evaluate(m, probe, data)
	if s.SSR <= 0 {
		t.Errorf("SSR = %g, want > 0", s.SSR)
	}
	if s.RSq >= 1 {
		t.Errorf("R2 = %g, want < 1", s.RSq)
	}
	if want := math.Sqrt(s.SSR / 50); math.Abs(s.RMSE-want) > 1e-12 {
		t.Errorf("RMSE = %g, want %g", s.RMSE, want)
	}
}

func TestEvaluateEmptySeries(t *testing.T) {
	s := Evaluate(kinetics.NewLangmuir(), params.Vector{1, 1, 0}, nil)
	if s.Samples != 0 || s.SSR != 0 {
		t.Errorf("empty series summary = %+v", s)
	}
}

func TestMap(t *testing.T) {
	s := Summary{SSR: 2, RMSE: 0.5, RSq: 0.9}
	m := s.Map()
	if m["ssr"] != 2 || m["rmse"] != 0.5 || m["r_squared"] != 0.9 {
		t.Errorf("map = %v", m)
	}
}
