// Package memory provides an in-memory Store used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

// Store keeps the last saved state in memory. Error fields let tests inject
// failures on either path.
type Store struct {
	mu      sync.Mutex
	state   models.FarmState
	saves   int
	LoadErr error
	SaveErr error
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Load returns the last saved state, or an empty one.
func (s *Store) Load(_ context.Context) (models.FarmState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return models.FarmState{}, s.LoadErr
	}
	state := s.state.Clone()
	state.Normalize()
	return state, nil
}

// Save keeps a copy of the provided state.
func (s *Store) Save(_ context.Context, state models.FarmState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.state = state.Clone()
	s.saves++
	return nil
}

// Saves reports how many successful saves happened.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Seed replaces the stored state directly.
func (s *Store) Seed(state models.FarmState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
}
