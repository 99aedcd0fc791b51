package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/evsim/internal/config"
	"github.com/san-kum/evsim/internal/integrators"
	"github.com/san-kum/evsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	scenarioFile = "scenario.yaml"
	statesFile   = "states.csv"
	eventsFile   = "events.csv"
)

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
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Timestamp time.Time          `json:"timestamp"`
	DtMin     float64            `json:"dt_min"`
	DtMax     float64            `json:"dt_max"`
	Duration  float64            `json:"duration"`
	MaxSteps  int                `json:"max_steps,omitempty"`
	Steps     int                `json:"steps"`
	Truncated bool               `json:"truncated,omitempty"`
	Events    int                `json:"events"`
	Stats     integrators.Stats  `json:"stats"`
	Metrics   map[string]float64 `json:"metrics"`
}

// EventRecord is one row of events.csv.
type EventRecord struct {
	Label  string    `json:"label"`
	Time   float64   `json:"time"`
	Step   int       `json:"step"`
	Before []float64 `json:"before"`
	After  []float64 `json:"after"`
}

// Trajectory is the content of states.csv.
type Trajectory struct {
	Times  []float64   `json:"times"`
	Dts    []float64   `json:"dts"`
	States [][]float64 `json:"states"`
}

// Save writes a run directory and returns its id.
func (s *Store) Save(sc *config.Scenario, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s-%s", sc.Model, uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     sc.Model,
		Timestamp: time.Now(),
		DtMin:     sc.DtMin,
		DtMax:     sc.DtMax,
		Duration:  sc.Duration,
		MaxSteps:  sc.MaxSteps,
		Steps:     result.Steps,
		Truncated: result.Truncated,
		Events:    len(result.Events),
		Stats:     result.Stats,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, scenarioFile), sc); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result); err != nil {
		return "", err
	}
	if err := writeEvents(filepath.Join(runDir, eventsFile), result.Events); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

func writeStates(path string, result *sim.Result) error {
	if len(result.States) == 0 {
		return writeCSV(path, nil)
	}

	header := []string{"time", "dt"}
	for i := range result.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}

	rows := [][]string{header}
	for i, x := range result.States {
		row := []string{formatFloat(result.Times[i]), formatFloat(result.Dts[i])}
		for _, val := range x {
			row = append(row, formatFloat(val))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

func writeEvents(path string, events []sim.Firing) error {
	rows := [][]string{{"label", "time", "step", "before", "after"}}
	for _, ev := range events {
		rows = append(rows, []string{
			ev.Label,
			formatFloat(ev.Time),
			strconv.Itoa(ev.Step),
			joinFloats(ev.Before),
			joinFloats(ev.After),
		})
	}
	return writeCSV(path, rows)
}

// List returns all runs, newest first.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadScenario(runID string) (*config.Scenario, error) {
	return config.Load(filepath.Join(s.baseDir, runID, scenarioFile))
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadStates(runID string) (*Trajectory, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{}
	for i := 1; i < len(records); i++ {
		vals, err := parseFloats(records[i])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statesFile, i+1, err)
		}
		if len(vals) < 2 {
			continue
		}
		traj.Times = append(traj.Times, vals[0])
		traj.Dts = append(traj.Dts, vals[1])
		traj.States = append(traj.States, vals[2:])
	}

	return traj, nil
}

func (s *Store) LoadEvents(runID string) ([]EventRecord, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}

	events := make([]EventRecord, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != 5 {
			return nil, fmt.Errorf("%s line %d: want 5 fields, got %d", eventsFile, i+1, len(rec))
		}
		t, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", eventsFile, i+1, err)
		}
		step, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", eventsFile, i+1, err)
		}
		before, err := splitFloats(rec[3])
		if err != nil {
			return nil, err
		}
		after, err := splitFloats(rec[4])
		if err != nil {
			return nil, err
		}
		events = append(events, EventRecord{Label: rec[0], Time: t, Step: step, Before: before, After: after})
	}

	return events, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	runDir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, metadataFile)); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	return os.RemoveAll(runDir)
}
