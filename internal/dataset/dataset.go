package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Sample is one measured point: time and the frequency shift of the
// selected overtone at that time.
type Sample struct {
	Time  float64
	Shift float64
}

// Series is an ordered run of samples with strictly increasing time.
// Read-only after load.
type Series []Sample

// FormatError describes a malformed data file. Row is the 1-based row
// number in the file, counting the header.
type FormatError struct {
	Path string
	Row  int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s: row %d: %s", e.Path, e.Row, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// Load reads a delimited data file with a header row. Column 0 is time;
// valueCol selects the frequency-shift column (1 for the first overtone).
func Load(path string, valueCol int) (Series, error) {
	if valueCol < 1 {
		return nil, fmt.Errorf("value column must be >= 1, got %d", valueCol)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &FormatError{Path: path, Msg: err.Error()}
	}
	if len(rows) < 3 {
		return nil, &FormatError{Path: path, Msg: "need a header and at least 2 data rows"}
	}

	series := make(Series, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) <= valueCol {
			return nil, &FormatError{Path: path, Row: rowNum,
				Msg: fmt.Sprintf("expected at least %d columns, got %d", valueCol+1, len(row))}
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, &FormatError{Path: path, Row: rowNum,
				Msg: fmt.Sprintf("bad time value %q", row[0])}
		}
		v, err := strconv.ParseFloat(row[valueCol], 64)
		if err != nil {
			return nil, &FormatError{Path: path, Row: rowNum,
				Msg: fmt.Sprintf("bad frequency value %q", row[valueCol])}
		}
		if n := len(series); n > 0 && t <= series[n-1].Time {
			return nil, &FormatError{Path: path, Row: rowNum,
				Msg: fmt.Sprintf("time %g does not increase past %g", t, series[n-1].Time)}
		}
		series = append(series, Sample{Time: t, Shift: v})
	}

	return series, nil
}

// Trim returns the samples with lo <= time <= hi. The result shares no
// storage with the receiver.
func (s Series) Trim(lo, hi float64) Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if p.Time >= lo && p.Time <= hi {
			out = append(out, p)
		}
	}
	return out
}

// Times returns the time column.
func (s Series) Times() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Time
	}
	return out
}

// Shifts returns the frequency-shift column.
func (s Series) Shifts() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Shift
	}
	return out
}

// Span returns the first and last timestamps.
func (s Series) Span() (lo, hi float64) {
	if len(s) == 0 {
		return 0, 0
	}
	return s[0].Time, s[len(s)-1].Time
}
