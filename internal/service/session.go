package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
	"github.com/kalyxon/progress-server/internal/stats"
)

// DefaultNoticeTTL is how long a notice stays visible unless dismissed.
const DefaultNoticeTTL = 5 * time.Second

// Session holds one user's progress in memory. The map is the presented
// truth: completions are applied before they are persisted and are never
// rolled back when persistence fails.
type Session struct {
	store     ProgressReadWriter
	catalog   model.Catalog
	noticeTTL time.Duration
	logger    *logger.Logger
	now       func() time.Time

	mu         sync.Mutex
	user       *model.User
	progress   model.ProgressMap
	notices    []model.Notice
	generation uint64

	// inflight holds the sequence numbers of writes still running.
	inflight  map[uint64]struct{}
	nextWrite uint64
	drained   *sync.Cond
}

// NewSession creates an empty session. catalog may be nil, in which case
// tutorial ids are not checked against it.
func NewSession(store ProgressReadWriter, catalog model.Catalog, noticeTTL time.Duration, logger *logger.Logger) *Session {
	if noticeTTL <= 0 {
		noticeTTL = DefaultNoticeTTL
	}
	s := &Session{
		store:     store,
		catalog:   catalog,
		noticeTTL: noticeTTL,
		logger:    logger,
		now:       time.Now,
		progress:  model.ProgressMap{},
		inflight:  map[uint64]struct{}{},
	}
	s.drained = sync.NewCond(&s.mu)
	return s
}

// Load makes user the active user and replaces the map with the stored one.
// Reloading the same user keeps completions that have not reached the store.
func (s *Session) Load(ctx context.Context, user model.User) model.ProgressMap {
	// Let writes started so far land so the read observes them.
	s.mu.Lock()
	s.waitWritesLocked(s.nextWrite)
	s.mu.Unlock()

	progress := s.store.Read(ctx, user.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil && s.user.ID == user.ID {
		for id, rec := range s.progress {
			if _, ok := progress[id]; !ok {
				progress[id] = rec
			}
		}
	} else {
		s.notices = nil
		s.generation++
	}

	u := user
	s.user = &u
	s.progress = progress

	s.logger.Debug("Session: progress loaded",
		"user_id", user.ID,
		"entries", len(progress))

	return progress.Clone()
}

// Complete marks tutorialID done for the active user. A tutorial that is
// already complete returns its existing record. The write to the store runs
// in the background and detaches from ctx cancellation.
func (s *Session) Complete(ctx context.Context, tutorialID string, minutes int) (model.CompletionRecord, error) {
	s.mu.Lock()

	if s.user == nil || tutorialID == "" {
		s.mu.Unlock()
		s.logger.Error("Session: completion requested without active session",
			"tutorial_id", tutorialID)
		return model.CompletionRecord{}, model.ErrNoActiveSession
	}
	if minutes < 0 {
		s.mu.Unlock()
		return model.CompletionRecord{}, fmt.Errorf("time spent must not be negative: %w", model.ErrInvalidArgument)
	}
	if s.catalog != nil {
		if _, ok := s.catalog.Get(tutorialID); !ok {
			s.mu.Unlock()
			return model.CompletionRecord{}, fmt.Errorf("tutorial %q: %w", tutorialID, model.ErrTutorialNotFound)
		}
	}
	if s.progress.IsCompleted(tutorialID) {
		existing := s.progress[tutorialID]
		s.mu.Unlock()
		return existing, nil
	}

	record := model.NewCompletion(s.now(), minutes)
	s.progress[tutorialID] = record
	userID := s.user.ID
	generation := s.generation
	seq := s.nextWrite
	s.nextWrite++
	s.inflight[seq] = struct{}{}
	s.mu.Unlock()

	go s.persist(context.WithoutCancel(ctx), seq, generation, userID, tutorialID, record)

	return record, nil
}

func (s *Session) persist(ctx context.Context, seq, generation uint64, userID, tutorialID string, record model.CompletionRecord) {
	outcome, err := s.store.Write(ctx, userID, tutorialID, record)
	defer s.finishWrite(seq)

	if outcome.Persisted {
		if err != nil {
			s.logger.Warn("Session: completion persisted after remote failure",
				"user_id", userID,
				"tutorial_id", tutorialID,
				"backend", outcome.Backend,
				"error", err.Error())
		}
		return
	}

	s.logger.Error("Session: failed to persist completion",
		"user_id", userID,
		"tutorial_id", tutorialID,
		"error", errString(err))

	s.mu.Lock()
	defer s.mu.Unlock()

	// The user signed out or changed while the write was in flight.
	if s.generation != generation {
		return
	}

	now := s.now()
	s.notices = append(s.notices, model.Notice{
		ID:        uuid.NewString(),
		Message:   noticeMessage(tutorialID, err),
		CreatedAt: now,
		ExpiresAt: now.Add(s.noticeTTL),
	})
	sessionNoticesTotal.Inc()
}

func noticeMessage(tutorialID string, err error) string {
	switch {
	case errors.Is(err, model.ErrRejected):
		return fmt.Sprintf("Progress for %q was rejected by storage. It is kept for this session only.", tutorialID)
	case errors.Is(err, model.ErrTimeout):
		return fmt.Sprintf("Saving progress for %q timed out. It is kept for this session only.", tutorialID)
	default:
		return fmt.Sprintf("Progress for %q could not be saved. It is kept for this session only.", tutorialID)
	}
}

// Notices returns the notices that have not expired.
func (s *Session) Notices() []model.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.notices = slices.DeleteFunc(s.notices, func(n model.Notice) bool {
		return n.Expired(now)
	})
	return slices.Clone(s.notices)
}

// Dismiss removes a notice before it expires. It reports whether the notice
// was present.
func (s *Session) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.notices)
	s.notices = slices.DeleteFunc(s.notices, func(n model.Notice) bool {
		return n.ID == id
	})
	return len(s.notices) != before
}

// Snapshot returns a copy of the current map.
func (s *Session) Snapshot() model.ProgressMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

// User returns the active user.
func (s *Session) User() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Metrics derives statistics from the current map and the catalog.
func (s *Session) Metrics() model.Metrics {
	var tutorials []model.Tutorial
	if s.catalog != nil {
		tutorials = s.catalog.All()
	}
	return stats.Compute(tutorials, s.Snapshot())
}

// Clear drops the active user and the in-memory map. The store is untouched.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.progress = model.ProgressMap{}
	s.notices = nil
	s.generation++
}

// Transition applies an auth state change: nil clears, a user loads.
func (s *Session) Transition(ctx context.Context, user *model.User) {
	if user == nil {
		s.Clear()
		return
	}
	s.Load(ctx, *user)
}

// Wait blocks until the background writes started before the call have
// finished. Writes started meanwhile do not extend the wait.
func (s *Session) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitWritesLocked(s.nextWrite)
}

func (s *Session) finishWrite(seq uint64) {
	s.mu.Lock()
	delete(s.inflight, seq)
	s.mu.Unlock()
	s.drained.Broadcast()
}

// waitWritesLocked blocks until no write numbered below upTo is running.
// s.mu must be held.
func (s *Session) waitWritesLocked(upTo uint64) {
	for s.pendingBeforeLocked(upTo) {
		s.drained.Wait()
	}
}

func (s *Session) pendingBeforeLocked(upTo uint64) bool {
	for seq := range s.inflight {
		if seq < upTo {
			return true
		}
	}
	return false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
