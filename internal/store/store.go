// Package store keeps the latest analysis result in memory for readers and
// mirrors it to a JSON file so it survives restarts.
package store

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"SectorPulse/internal/analyzer"

	"github.com/rs/zerolog/log"
)

// Store holds the latest State with concurrency safety.
type Store struct {
	mu       sync.RWMutex
	state    *State
	filePath string
	now      func() time.Time
}

// New creates a Store, loading any previous state from filePath. An empty
// path keeps the state in memory only.
func New(filePath string) (*Store, error) {
	state := &State{}
	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			return nil, err
		}
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, err
		}
		state = loaded
		if state.Result != nil {
			log.Info().Str("cycle_id", state.CycleID).Time("updated_at", state.UpdatedAt).Msg("restored previous analysis")
		}
	}
	return &Store{state: state, filePath: filePath, now: time.Now}, nil
}

// Latest returns the most recent result and its cycle ID, or false before the
// first successful cycle. The result must be treated as read-only.
func (s *Store) Latest() (*analyzer.Result, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Result == nil {
		return nil, "", false
	}
	return s.state.Result, s.state.CycleID, true
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.state
}

// Update replaces the latest result.
func (s *Store) Update(cycleID string, res *analyzer.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CycleID = cycleID
	s.state.Result = res
	s.state.UpdatedAt = s.now()
	s.state.LastError = ""
	s.save()
}

// MarkFailure records a failed cycle. The previous result stays served.
func (s *Store) MarkFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LastError = err.Error()
	s.state.LastFailureAt = s.now()
	s.save()
}

// save must be called with mu held.
func (s *Store) save() {
	if s.filePath == "" {
		return
	}
	if err := SaveState(s.filePath, s.state); err != nil {
		log.Error().Err(err).Str("path", s.filePath).Msg("failed to save state")
	}
}
