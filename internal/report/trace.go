package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/guptarohit/asciigraph"

	"github.com/qsense/kinfit/internal/fitting"
)

// WriteTrace persists the loss trace as CSV, one row per recorded step.
func WriteTrace(path string, tr fitting.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "loss"}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, pt := range tr {
		row := []string{
			strconv.Itoa(pt.Step),
			strconv.FormatFloat(pt.Loss, 'g', 17, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// AsciiTrace renders the loss trace for the terminal.
func AsciiTrace(tr fitting.Trace) string {
	if len(tr) == 0 {
		return "no trace recorded"
	}
	losses := make([]float64, len(tr))
	for i, pt := range tr {
		losses[i] = pt.Loss
	}
	return asciigraph.Plot(losses,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("loss vs step"),
	)
}

// AsciiCurves renders the observed data and the fitted curve for the
// terminal, one graph per series.
func AsciiCurves(c Curves) string {
	if len(c.Data) == 0 {
		return "no data"
	}
	_, fitted := c.curveSamples(c.Fitted, len(c.Data))

	raw := asciigraph.Plot(c.Data.Shifts(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("observed frequency shift"),
	)
	fit := asciigraph.Plot(fitted,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("fitted model"),
	)
	return raw + "\n\n" + fit
}
