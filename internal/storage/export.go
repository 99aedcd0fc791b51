package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Metadata RunMetadata   `json:"metadata"`
	Events   []EventRecord `json:"events"`
	Trajectory
}

// Export writes a stored run as one JSON document.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Metadata:   *meta,
		Events:     events,
		Trajectory: *traj,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
