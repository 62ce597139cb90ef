// Package localfile persists the farm state as a JSON document on disk. This
// is the "local mode" backend and the cache behind the remote fallback.
package localfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

const stateFileName = "farm_state.json"

// Repository stores the farm state in a single JSON file under a data dir.
type Repository struct {
	path   string
	logger *zap.Logger
}

// New prepares the data directory and returns a file-backed repository.
func New(dataDir string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dataDir, err)
	}

	return &Repository{
		path:   filepath.Join(dataDir, stateFileName),
		logger: logger,
	}, nil
}

// Load reads the stored state. A missing or corrupted file yields an empty
// state rather than an error; the ledger must always be able to start.
func (r *Repository) Load(_ context.Context) (models.FarmState, error) {
	var state models.FarmState

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("failed reading state file, starting empty", zap.String("path", r.path), zap.Error(err))
		}
		state.Normalize()
		return state, nil
	}

	if err := json.Unmarshal(raw, &state); err != nil {
		r.logger.Warn("state file is malformed, starting empty", zap.String("path", r.path), zap.Error(err))
		state = models.FarmState{}
	}

	state.Normalize()
	return state, nil
}

// Save writes the state atomically via a temp file rename.
func (r *Repository) Save(_ context.Context, state models.FarmState) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode farm state: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	r.logger.Debug("farm state written", zap.String("path", r.path), zap.Int("bytes", len(raw)))
	return nil
}
