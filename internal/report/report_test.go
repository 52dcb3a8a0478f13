package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qsense/kinfit/internal/dataset"
	"github.com/qsense/kinfit/internal/fitting"
	"github.com/qsense/kinfit/internal/kinetics"
	"github.com/qsense/kinfit/internal/params"
)

func testCurves() Curves {
	m := kinetics.NewLangmuir()
	truth := params.Vector{25.0, 0.05, -1.0}
	data := make(dataset.Series, 40)
	for i := range data {
		t := float64(i) * 5
		data[i] = dataset.Sample{Time: t, Shift: m.Eval(t, truth)}
	}
	return Curves{
		Data:        data,
		Model:       m,
		Initial:     params.Vector{20.0, 0.08, 0.0},
		Fitted:      truth,
		InitialLoss: 123.4,
		FinalLoss:   0.56,
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.png")
	if err := WritePNG(path, testCurves()); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty PNG written")
	}
}

func TestWriteSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.svg")
	if err := WriteSVG(path, testCurves(), 800, 500); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(content)
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Error("not an SVG document")
	}
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected 2 curve paths, got %d", strings.Count(svg, "<path"))
	}
	if !strings.Contains(svg, "<circle") {
		t.Error("raw samples missing")
	}
}

func TestTitleMarksBestEffort(t *testing.T) {
	c := testCurves()
	if strings.Contains(c.title(), "best effort") {
		t.Error("converged fit marked as best effort")
	}
	c.BestEffort = true
	if !strings.Contains(c.title(), "best effort") {
		t.Error("best-effort fit not marked")
	}
}

func TestWriteTrace(t *testing.T) {
	tr := fitting.Trace{
		{Step: 0, Loss: 10.5},
		{Step: 1, Loss: 3.25},
		{Step: 2, Loss: 1.0},
	}
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := WriteTrace(path, tr); err != nil {
		t.Fatalf("WriteTrace: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "step" || rows[0][1] != "loss" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][0] != "1" || rows[2][1] != "3.25" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestWriteTraceBadPath(t *testing.T) {
	err := WriteTrace(filepath.Join(t.TempDir(), "missing", "trace.csv"), fitting.Trace{})
	if err == nil {
		t.Error("expected error for unwritable path")
	}
	if !strings.Contains(err.Error(), "trace.csv") {
		t.Errorf("error does not carry the path: %v", err)
	}
}

func TestAsciiRenders(t *testing.T) {
	c := testCurves()
	if out := AsciiCurves(c); !strings.Contains(out, "observed frequency shift") {
		t.Error("ascii curves missing caption")
	}
	tr := fitting.Trace{{Step: 0, Loss: 2}, {Step: 1, Loss: 1}}
	if out := AsciiTrace(tr); !strings.Contains(out, "loss vs step") {
		t.Error("ascii trace missing caption")
	}
	if out := AsciiTrace(nil); out != "no trace recorded" {
		t.Errorf("empty trace output = %q", out)
	}
}
