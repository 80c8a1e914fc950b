package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pursuitsim/internal/experiment"
	"github.com/san-kum/pursuitsim/internal/pursuit"
)

var ErrRunNotFound = errors.New("run not found")

const (
	metaFile  = "metadata.json"
	stepsFile = "steps.csv"
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
	ID        string              `json:"id"`
	Policy    string              `json:"policy"`
	Timestamp time.Time           `json:"timestamp"`
	Seed      int64               `json:"seed"`
	World     pursuit.WorldConfig `json:"world"`
	Episodes  int                 `json:"episodes"`
	StepCount int                 `json:"step_count"`
	Summary   experiment.Summary  `json:"summary"`
	Metrics   map[string]float64  `json:"metrics"`
}

// Run is what gets persisted for one rollout.
type Run struct {
	Policy   string
	Seed     int64
	World    pursuit.WorldConfig
	Summary  experiment.Summary
	Metrics  map[string]float64
	Episodes []experiment.Episode
}

var stepsHeader = []string{
	"episode", "tick",
	"x_rel", "y_rel", "vx_rel", "vy_rel", "v",
	"steer", "accel",
	"reward", "dist",
}

// Save writes a run directory and returns its id. Steps are only written for
// episodes that were recorded.
func (s *Store) Save(run Run) (string, error) {
	runID, runDir, err := s.newRunDir(run.Policy)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Policy:    run.Policy,
		Timestamp: time.Now(),
		Seed:      run.Seed,
		World:     run.World,
		Episodes:  len(run.Episodes),
		Summary:   run.Summary,
		Metrics:   run.Metrics,
	}
	for _, ep := range run.Episodes {
		meta.StepCount += len(ep.Steps)
	}

	if err := writeJSON(filepath.Join(runDir, metaFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, stepsFile))
	if err != nil {
		return "", err
	}
	if err := writeSteps(csvFile, run.Episodes); err != nil {
		csvFile.Close()
		return "", err
	}
	if err := csvFile.Close(); err != nil {
		return "", err
	}

	return runID, nil
}

func writeSteps(out io.Writer, episodes []experiment.Episode) error {
	w := csv.NewWriter(out)
	if err := w.Write(stepsHeader); err != nil {
		return err
	}
	for i, ep := range episodes {
		for _, st := range ep.Steps {
			if err := w.Write(stepRow(i, st)); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) newRunDir(policy string) (string, string, error) {
	base := fmt.Sprintf("%s_%d", policy, time.Now().Unix())
	runID := base
	for n := 2; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func stepRow(episode int, st experiment.Step) []string {
	row := make([]string, 0, len(stepsHeader))
	row = append(row, strconv.Itoa(episode), strconv.Itoa(st.Tick))
	for _, v := range st.Observation {
		row = append(row, formatFloat32(v))
	}
	for _, v := range st.Action {
		row = append(row, formatFloat32(v))
	}
	row = append(row, formatFloat32(st.Reward), strconv.FormatFloat(st.Dist, 'g', -1, 64))
	return row
}

// formatFloat32 writes the shortest text that parses back to exactly v.
func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", metaFile, err)
	}
	return &meta, nil
}

// StepRecord is one row of steps.csv.
type StepRecord struct {
	Episode int
	experiment.Step
}

func (s *Store) LoadSteps(runID string) ([]StepRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(stepsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []StepRecord{}, nil
	}

	out := make([]StepRecord, 0, len(records)-1)
	for i, record := range records[1:] {
		rec, err := parseStep(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", stepsFile, i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseStep(record []string) (StepRecord, error) {
	var rec StepRecord
	var err error
	if rec.Episode, err = strconv.Atoi(record[0]); err != nil {
		return rec, err
	}
	if rec.Tick, err = strconv.Atoi(record[1]); err != nil {
		return rec, err
	}

	// obs, action and reward are float32 on the wire; dist is float64.
	vals := make([]float32, len(record)-3)
	for i, field := range record[2 : len(record)-1] {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return rec, err
		}
		vals[i] = float32(v)
	}
	copy(rec.Observation[:], vals[:pursuit.ObsSize])
	rec.Action = pursuit.Action{vals[5], vals[6]}
	rec.Reward = vals[7]
	if rec.Dist, err = strconv.ParseFloat(record[len(record)-1], 64); err != nil {
		return rec, err
	}
	return rec, nil
}
