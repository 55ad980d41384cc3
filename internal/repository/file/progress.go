// Package file implements the on-device progress backend: one JSON document
// per user in a local directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kalyxon/progress-server/internal/keymutex"
	"github.com/kalyxon/progress-server/internal/model"
)

var _ model.ProgressBackend = (*ProgressRepository)(nil)

// ProgressRepository stores each user's whole ProgressMap as <dir>/<userID>.json.
// Writes are load-modify-save cycles serialized per user.
type ProgressRepository struct {
	dir   string
	locks *keymutex.KeyMutex
}

// NewProgressRepository creates the directory if needed.
func NewProgressRepository(dir string) (*ProgressRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create progress directory: %w", err)
	}

	return &ProgressRepository{
		dir:   dir,
		locks: keymutex.New(),
	}, nil
}

// Read returns the stored map for userID, or an empty map if none exists.
func (r *ProgressRepository) Read(ctx context.Context, userID string) (model.ProgressMap, error) {
	if !model.ValidID(userID) {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, model.ErrRejected)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(userID)
	defer unlock()

	return r.load(userID)
}

// Write sets tutorialID to record in the user's document.
func (r *ProgressRepository) Write(ctx context.Context, userID, tutorialID string, record model.CompletionRecord) error {
	if !model.ValidID(userID) {
		return fmt.Errorf("invalid user id %q: %w", userID, model.ErrRejected)
	}
	if !model.ValidID(tutorialID) {
		return fmt.Errorf("invalid tutorial id %q: %w", tutorialID, model.ErrRejected)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := r.locks.Lock(userID)
	defer unlock()

	progress, err := r.load(userID)
	if err != nil {
		return err
	}

	progress[tutorialID] = record

	return r.save(userID, progress)
}

func (r *ProgressRepository) path(userID string) string {
	return filepath.Join(r.dir, userID+".json")
}

func (r *ProgressRepository) load(userID string) (model.ProgressMap, error) {
	data, err := os.ReadFile(r.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return model.ProgressMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress file: %w", err)
	}

	progress := model.ProgressMap{}
	if len(data) == 0 {
		return progress, nil
	}
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("failed to decode progress file: %w", err)
	}

	return progress, nil
}

func (r *ProgressRepository) save(userID string, progress model.ProgressMap) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, userID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close progress file: %w", err)
	}

	if err := os.Rename(tmpName, r.path(userID)); err != nil {
		return fmt.Errorf("failed to replace progress file: %w", err)
	}

	return nil
}
