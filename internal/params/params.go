package params

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Parameter is one fit parameter: its initial guess and the box bounds
// the optimizer must respect. Lower == Upper pins the value.
type Parameter struct {
	Name    string
	Initial float64
	Lower   float64
	Upper   float64
}

// Fixed reports whether the parameter is pinned to a single value.
func (p Parameter) Fixed() bool { return p.Lower == p.Upper }

// Vector is an ordered snapshot of parameter values, positional with
// respect to the Set that produced it.
type Vector []float64

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// FormatError describes a malformed parameter file.
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

// Set holds the ordered parameter table and the current working values.
type Set struct {
	defs   []Parameter
	values Vector
}

// New builds a Set from an explicit parameter list, validating bounds.
func New(defs []Parameter) (*Set, error) {
	s := &Set{defs: make([]Parameter, len(defs)), values: make(Vector, len(defs))}
	for i, p := range defs {
		if p.Lower > p.Upper {
			return nil, fmt.Errorf("parameter %s: inverted bounds [%g, %g]", p.Name, p.Lower, p.Upper)
		}
		if p.Initial < p.Lower || p.Initial > p.Upper {
			return nil, fmt.Errorf("parameter %s: initial %g outside [%g, %g]", p.Name, p.Initial, p.Lower, p.Upper)
		}
		s.defs[i] = p
		s.values[i] = p.Initial
	}
	return s, nil
}

// Load reads a parameter table: header row, then
// name, initial_value, lower_bound, upper_bound.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = 4

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &FormatError{Path: path, Msg: err.Error()}
	}
	if len(rows) < 2 {
		return nil, &FormatError{Path: path, Msg: "no parameter rows"}
	}

	defs := make([]Parameter, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		init, err1 := strconv.ParseFloat(row[1], 64)
		lo, err2 := strconv.ParseFloat(row[2], 64)
		hi, err3 := strconv.ParseFloat(row[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, &FormatError{Path: path, Row: rowNum, Msg: "non-numeric field"}
		}
		if lo > hi {
			return nil, &FormatError{Path: path, Row: rowNum,
				Msg: fmt.Sprintf("%s: lower bound %g above upper %g", row[0], lo, hi)}
		}
		if init < lo || init > hi {
			return nil, &FormatError{Path: path, Row: rowNum,
				Msg: fmt.Sprintf("%s: initial %g outside [%g, %g]", row[0], init, lo, hi)}
		}
		defs = append(defs, Parameter{Name: row[0], Initial: init, Lower: lo, Upper: hi})
	}

	set, err := New(defs)
	if err != nil {
		return nil, &FormatError{Path: path, Msg: err.Error()}
	}
	return set, nil
}

// Len returns the number of parameters.
func (s *Set) Len() int { return len(s.defs) }

// Defs returns the parameter definitions in load order.
func (s *Set) Defs() []Parameter { return s.defs }

// Names returns the parameter names in load order.
func (s *Set) Names() []string {
	out := make([]string, len(s.defs))
	for i, p := range s.defs {
		out[i] = p.Name
	}
	return out
}

// Bounds returns the lower and upper bound vectors.
func (s *Set) Bounds() (lower, upper Vector) {
	lower = make(Vector, len(s.defs))
	upper = make(Vector, len(s.defs))
	for i, p := range s.defs {
		lower[i] = p.Lower
		upper[i] = p.Upper
	}
	return lower, upper
}

// Snapshot returns an immutable copy of the current values.
func (s *Set) Snapshot() Vector { return s.values.Clone() }

// Update replaces the working values. Values must stay inside bounds.
func (s *Set) Update(v Vector) error {
	if len(v) != len(s.defs) {
		return fmt.Errorf("expected %d values, got %d", len(s.defs), len(v))
	}
	for i, val := range v {
		p := s.defs[i]
		if val < p.Lower || val > p.Upper {
			return fmt.Errorf("parameter %s: value %g outside [%g, %g]", p.Name, val, p.Lower, p.Upper)
		}
	}
	copy(s.values, v)
	return nil
}

// Export writes the table back in the load schema with initial_value
// replaced by v, so the output can be re-used as a future input.
func (s *Set) Export(path string, v Vector) error {
	if len(v) != len(s.defs) {
		return fmt.Errorf("expected %d values, got %d", len(s.defs), len(v))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "initial_value", "lower_bound", "upper_bound"}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i, p := range s.defs {
		row := []string{
			p.Name,
			strconv.FormatFloat(v[i], 'g', 17, 64),
			strconv.FormatFloat(p.Lower, 'g', 17, 64),
			strconv.FormatFloat(p.Upper, 'g', 17, 64),
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
