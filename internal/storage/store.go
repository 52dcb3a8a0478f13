package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/qsense/kinfit/internal/fitting"
	"github.com/qsense/kinfit/internal/report"
)

// Store keeps fit runs on disk, one directory per run holding
// metadata.json, curves.csv (time, observed, initial, fitted) and
// trace.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Timestamp   time.Time          `json:"timestamp"`
	DataFile    string             `json:"data_file"`
	ParamNames  []string           `json:"param_names"`
	Initial     []float64          `json:"initial"`
	Fitted      []float64          `json:"fitted"`
	InitialLoss float64            `json:"initial_loss"`
	FinalLoss   float64            `json:"final_loss"`
	Converged   bool               `json:"converged"`
	Onset       float64            `json:"onset,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save persists a completed fit and returns its run id.
func (s *Store) Save(meta RunMetadata, curves report.Curves, trace fitting.Trace) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", metaPath, err)
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("write %s: %w", metaPath, err)
	}

	if err := s.saveCurves(runDir, curves); err != nil {
		return "", err
	}

	tracePath := filepath.Join(runDir, "trace.csv")
	if err := report.WriteTrace(tracePath, trace); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) saveCurves(runDir string, curves report.Curves) error {
	csvPath := filepath.Join(runDir, "curves.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "observed", "initial", "fitted"}); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	for _, sample := range curves.Data {
		row := []string{
			strconv.FormatFloat(sample.Time, 'f', 6, 64),
			strconv.FormatFloat(sample.Shift, 'f', 6, 64),
			strconv.FormatFloat(curves.Model.Eval(sample.Time, curves.Initial), 'f', 6, 64),
			strconv.FormatFloat(curves.Model.Eval(sample.Time, curves.Fitted), 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", csvPath, err)
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrace reads a saved run's loss trace.
func (s *Store) LoadTrace(runID string) (fitting.Trace, error) {
	csvPath := filepath.Join(s.baseDir, runID, "trace.csv")
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	trace := make(fitting.Trace, 0, len(records))
	for i := 1; i < len(records); i++ {
		step, err1 := strconv.Atoi(records[i][0])
		loss, err2 := strconv.ParseFloat(records[i][1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		trace = append(trace, fitting.TracePoint{Step: step, Loss: loss})
	}
	return trace, nil
}

// LoadCurves reads a saved run's curves: time, observed, initial, fitted.
func (s *Store) LoadCurves(runID string) (times, observed, initial, fitted []float64, err error) {
	csvPath := filepath.Join(s.baseDir, runID, "curves.csv")
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	for i := 1; i < len(records); i++ {
		vals := make([]float64, 4)
		ok := true
		for j := range vals {
			v, perr := strconv.ParseFloat(records[i][j], 64)
			if perr != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		times = append(times, vals[0])
		observed = append(observed, vals[1])
		initial = append(initial, vals[2])
		fitted = append(fitted, vals[3])
	}
	return times, observed, initial, fitted, nil
}
