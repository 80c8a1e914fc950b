package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Rewards   []float64    `json:"rewards"`
	Distances []float64    `json:"distances"`
	Steps     []ExportStep `json:"steps"`
}

type ExportStep struct {
	Episode     int        `json:"episode"`
	Tick        int        `json:"tick"`
	Observation [5]float32 `json:"obs"`
	Action      [2]float32 `json:"action"`
	Reward      float32    `json:"reward"`
	Dist        float64    `json:"dist"`
}

// Export gathers a saved run into one document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	steps, err := s.LoadSteps(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		RunMetadata: *meta,
		Rewards:     make([]float64, len(steps)),
		Distances:   make([]float64, len(steps)),
		Steps:       make([]ExportStep, len(steps)),
	}
	for i, st := range steps {
		data.Rewards[i] = float64(st.Reward)
		data.Distances[i] = st.Dist
		data.Steps[i] = ExportStep{
			Episode:     st.Episode,
			Tick:        st.Tick,
			Observation: st.Observation,
			Action:      st.Action,
			Reward:      st.Reward,
			Dist:        st.Dist,
		}
	}
	return data, nil
}

func (s *Store) ExportJSON(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.WriteJSON(runID, file)
}

func (s *Store) WriteJSON(runID string, w io.Writer) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
