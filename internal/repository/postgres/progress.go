package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kalyxon/progress-server/internal/model"
)

var _ model.ProgressBackend = (*ProgressRepository)(nil)

type ProgressRepository struct {
	db *Connection
}

func NewProgressRepository(db *Connection) *ProgressRepository {
	return &ProgressRepository{
		db: db,
	}
}

func (r *ProgressRepository) Read(ctx context.Context, userID string) (model.ProgressMap, error) {
	if !model.ValidID(userID) {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, model.ErrRejected)
	}

	const query = `SELECT tutorial_id, completed, completed_at, time_spent
			  FROM progress WHERE user_id = $1`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, classify("failed to read progress", err)
	}
	defer rows.Close()

	progress := model.ProgressMap{}
	for rows.Next() {
		var (
			tutorialID  string
			record      model.CompletionRecord
			completedAt *time.Time
		)
		if err := rows.Scan(&tutorialID, &record.Completed, &completedAt, &record.TimeSpent); err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		if completedAt != nil {
			record.CompletedAt = completedAt.UTC()
		}
		progress[tutorialID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate progress rows", err)
	}

	return progress, nil
}

// Write stores a completion. A tutorial already recorded for the user keeps
// its first record.
func (r *ProgressRepository) Write(ctx context.Context, userID, tutorialID string, record model.CompletionRecord) error {
	if !model.ValidID(userID) {
		return fmt.Errorf("invalid user id %q: %w", userID, model.ErrRejected)
	}
	if !model.ValidID(tutorialID) {
		return fmt.Errorf("invalid tutorial id %q: %w", tutorialID, model.ErrRejected)
	}

	const query = `INSERT INTO progress (user_id, tutorial_id, completed, completed_at, time_spent)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_id, tutorial_id) DO NOTHING`

	var completedAt *time.Time
	if !record.CompletedAt.IsZero() {
		completedAt = &record.CompletedAt
	}

	if _, err := r.db.Exec(ctx, query, userID, tutorialID, record.Completed, completedAt, record.TimeSpent); err != nil {
		return classify("failed to save progress", err)
	}

	return nil
}

// classify marks data and constraint errors as rejections. Everything else is
// treated as the backend being unreachable by the caller.
func classify(msg string, err error) error {
	switch pgErrorClass(err) {
	case "22", "23":
		return fmt.Errorf("%s: %w: %w", msg, model.ErrRejected, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
