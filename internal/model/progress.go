package model

import (
	"context"
	"regexp"
	"time"
)

// ProgressBackend is a persistence backend for per-user progress maps.
type ProgressBackend interface {
	Read(ctx context.Context, userID string) (ProgressMap, error)
	Write(ctx context.Context, userID, tutorialID string, record CompletionRecord) error
}

// CompletionRecord describes a finished tutorial.
type CompletionRecord struct {
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completedAt,omitzero"`
	TimeSpent   int       `json:"timeSpent"`
}

// NewCompletion builds a completed record stamped with at.
func NewCompletion(at time.Time, minutes int) CompletionRecord {
	return CompletionRecord{
		Completed:   true,
		CompletedAt: at.UTC(),
		TimeSpent:   minutes,
	}
}

// ProgressMap maps tutorial ids to completion records for one user.
type ProgressMap map[string]CompletionRecord

// Clone returns an independent copy of the map. A nil map clones to an empty one.
func (p ProgressMap) Clone() ProgressMap {
	out := make(ProgressMap, len(p))
	for id, rec := range p {
		out[id] = rec
	}
	return out
}

// IsCompleted reports whether tutorialID has a completed record.
func (p ProgressMap) IsCompleted(tutorialID string) bool {
	rec, ok := p[tutorialID]
	return ok && rec.Completed
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ValidID reports whether id may be used as a user or tutorial identifier.
func ValidID(id string) bool {
	if id == "." || id == ".." {
		return false
	}
	return idPattern.MatchString(id)
}
