package storage

import (
	"testing"

	"github.com/qsense/kinfit/internal/dataset"
	"github.com/qsense/kinfit/internal/fitting"
	"github.com/qsense/kinfit/internal/kinetics"
	"github.com/qsense/kinfit/internal/params"
	"github.com/qsense/kinfit/internal/report"
)

func testRun(t *testing.T) (RunMetadata, report.Curves, fitting.Trace) {
	t.Helper()
	m := kinetics.NewLangmuir()
	truth := params.Vector{25.0, 0.05, -1.0}

	data := make(dataset.Series, 20)
	for i := range data {
		tm := float64(i) * 10
		data[i] = dataset.Sample{Time: tm, Shift: m.Eval(tm, truth)}
	}

	meta := RunMetadata{
		Model:       "langmuir",
		DataFile:    "data.csv",
		ParamNames:  m.ParamNames(),
		Initial:     []float64{20, 0.08, 0},
		Fitted:      []float64(truth),
		InitialLoss: 100,
		FinalLoss:   0.5,
		Converged:   true,
		Metrics:     map[string]float64{"rmse": 0.1},
	}
	curves := report.Curves{
		Data:    data,
		Model:   m,
		Initial: params.Vector{20, 0.08, 0},
		Fitted:  truth,
	}
	trace := fitting.Trace{{Step: 0, Loss: 100}, {Step: 1, Loss: 0.5}}
	return meta, curves, trace
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	meta, curves, trace := testRun(t)
	runID, err := st.Save(meta, curves, trace)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Model != "langmuir" || !loaded.Converged {
		t.Errorf("metadata drifted: %+v", loaded)
	}
	if len(loaded.Fitted) != 3 || loaded.Fitted[0] != 25 {
		t.Errorf("fitted params drifted: %v", loaded.Fitted)
	}
	if loaded.Metrics["rmse"] != 0.1 {
		t.Errorf("metrics drifted: %v", loaded.Metrics)
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty store, got %d runs", len(runs))
	}

	meta, curves, trace := testRun(t)
	if _, err := st.Save(meta, curves, trace); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New("/nonexistent/kinfit-test")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("missing dir should list empty: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs", len(runs))
	}
}

func TestLoadTrace(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	meta, curves, trace := testRun(t)
	runID, err := st.Save(meta, curves, trace)
	if err != nil {
		t.Fatal(err)
	}

	got, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Loss != 0.5 {
		t.Errorf("trace = %v", got)
	}
}

func TestLoadCurves(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	meta, curves, trace := testRun(t)
	runID, err := st.Save(meta, curves, trace)
	if err != nil {
		t.Fatal(err)
	}

	times, observed, initial, fitted, err := st.LoadCurves(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 20 || len(observed) != 20 || len(initial) != 20 || len(fitted) != 20 {
		t.Fatalf("column lengths %d/%d/%d/%d", len(times), len(observed), len(initial), len(fitted))
	}
	// Fitted column was written from the generating vector, so it matches
	// the observed data up to serialization precision.
	for i := range observed {
		if diff := observed[i] - fitted[i]; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("row %d: observed %g vs fitted %g", i, observed[i], fitted[i])
		}
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadTrace("nope"); err == nil {
		t.Error("expected error for missing trace")
	}
}
