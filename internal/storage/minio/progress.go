package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kalyxon/progress-server/internal/keymutex"
	"github.com/kalyxon/progress-server/internal/model"
)

const progressPrefix = "progress/"

var _ model.ProgressBackend = (*ProgressRepository)(nil)

// ProgressRepository keeps one JSON document per user in object storage.
// Writes rewrite the whole document and are serialized per user within the
// process.
type ProgressRepository struct {
	storage model.ObjectStorage
	locks   *keymutex.KeyMutex
}

func NewProgressRepository(storage model.ObjectStorage) *ProgressRepository {
	return &ProgressRepository{
		storage: storage,
		locks:   keymutex.New(),
	}
}

func (r *ProgressRepository) Read(ctx context.Context, userID string) (model.ProgressMap, error) {
	if !model.ValidID(userID) {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, model.ErrRejected)
	}

	return r.load(ctx, userID)
}

func (r *ProgressRepository) Write(ctx context.Context, userID, tutorialID string, record model.CompletionRecord) error {
	if !model.ValidID(userID) {
		return fmt.Errorf("invalid user id %q: %w", userID, model.ErrRejected)
	}
	if !model.ValidID(tutorialID) {
		return fmt.Errorf("invalid tutorial id %q: %w", tutorialID, model.ErrRejected)
	}

	unlock := r.locks.Lock(userID)
	defer unlock()

	progress, err := r.load(ctx, userID)
	if err != nil {
		return err
	}

	progress[tutorialID] = record

	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	if err := r.storage.Upload(ctx, objectKey(userID), bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("failed to store progress document: %w", err)
	}

	return nil
}

func (r *ProgressRepository) load(ctx context.Context, userID string) (model.ProgressMap, error) {
	rc, err := r.storage.Download(ctx, objectKey(userID))
	if errors.Is(err, model.ErrNotFound) {
		return model.ProgressMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress document: %w", err)
	}
	defer rc.Close()

	progress := model.ProgressMap{}
	if err := json.NewDecoder(rc).Decode(&progress); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ProgressMap{}, nil
		}
		return nil, fmt.Errorf("failed to decode progress document: %w", err)
	}

	return progress, nil
}

func objectKey(userID string) string {
	return progressPrefix + userID + ".json"
}
