package store

import (
	"encoding/json"
	"os"
	"time"

	"SectorPulse/internal/analyzer"
)

// State is the most recent analysis plus bookkeeping about the last cycle.
type State struct {
	CycleID       string           `json:"cycle_id,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Result        *analyzer.Result `json:"result,omitempty"`
	LastError     string           `json:"last_error,omitempty"`
	LastFailureAt time.Time        `json:"last_failure_at,omitempty"`
}

// LoadState reads the state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the state to a JSON file.
func SaveState(filePath string, state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
