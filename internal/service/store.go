package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
)

// DefaultWriteTimeout bounds a remote write before falling back to local.
const DefaultWriteTimeout = 10 * time.Second

// WriteOutcome tells where a record landed.
type WriteOutcome struct {
	// Backend is "remote" or "local", empty when nothing persisted.
	Backend   string
	Persisted bool
	// FellBack is set when the remote was configured but the local backend
	// took the write.
	FellBack bool
}

// ProgressReadWriter is what sessions need from the progress store.
type ProgressReadWriter interface {
	Read(ctx context.Context, userID string) model.ProgressMap
	Write(ctx context.Context, userID, tutorialID string, record model.CompletionRecord) (WriteOutcome, error)
}

var _ ProgressReadWriter = (*ProgressStore)(nil)

// ProgressStore fronts a remote backend with a local fallback. The remote is
// optional; the local backend is always present.
type ProgressStore struct {
	remote       model.ProgressBackend
	local        model.ProgressBackend
	writeTimeout time.Duration
	logger       *logger.Logger
}

// NewProgressStore builds a store. remote may be nil when no remote backend is
// configured. A non-positive writeTimeout selects DefaultWriteTimeout.
func NewProgressStore(remote, local model.ProgressBackend, writeTimeout time.Duration, logger *logger.Logger) *ProgressStore {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &ProgressStore{
		remote:       remote,
		local:        local,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// HasRemote reports whether a remote backend is configured.
func (s *ProgressStore) HasRemote() bool {
	return s.remote != nil
}

// Read returns the user's progress. It never fails: a remote error falls back
// to the local copy, and a local error yields an empty map.
func (s *ProgressStore) Read(ctx context.Context, userID string) model.ProgressMap {
	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
		progress, err := s.remote.Read(rctx, userID)
		cancel()
		if err == nil {
			storeReadsTotal.WithLabelValues(backendRemote, outcomeOK).Inc()
			return nonNil(progress)
		}
		storeReadsTotal.WithLabelValues(backendRemote, outcomeError).Inc()
		s.logger.Warn("Progress store: remote read failed, using local copy",
			"user_id", userID,
			"error", err.Error())
	}

	progress, err := s.local.Read(ctx, userID)
	if err != nil {
		storeReadsTotal.WithLabelValues(backendLocal, outcomeError).Inc()
		s.logger.Error("Progress store: local read failed",
			"user_id", userID,
			"error", err.Error())
		return model.ProgressMap{}
	}

	storeReadsTotal.WithLabelValues(backendLocal, outcomeOK).Inc()
	return nonNil(progress)
}

// Write persists one completion. With a remote configured the remote write
// races a timer; on timeout or error the local backend takes the write.
//
// ErrTimeout is returned whenever the remote timed out, even if the local
// fallback persisted the record; callers must check Persisted. Otherwise an
// error means nothing was persisted: ErrRejected when a backend refused the
// request, ErrUnavailable for any other failure.
func (s *ProgressStore) Write(ctx context.Context, userID, tutorialID string, record model.CompletionRecord) (WriteOutcome, error) {
	if s.remote == nil {
		if err := s.writeLocal(ctx, userID, tutorialID, record); err != nil {
			return WriteOutcome{}, translate(nil, err)
		}
		return WriteOutcome{Backend: backendLocal, Persisted: true}, nil
	}

	remoteErr := s.writeRemote(ctx, userID, tutorialID, record)
	if remoteErr == nil {
		return WriteOutcome{Backend: backendRemote, Persisted: true}, nil
	}

	s.logger.Warn("Progress store: remote write failed, falling back to local",
		"user_id", userID,
		"tutorial_id", tutorialID,
		"error", remoteErr.Error())

	localErr := s.writeLocal(ctx, userID, tutorialID, record)
	if localErr == nil {
		outcome := WriteOutcome{Backend: backendLocal, Persisted: true, FellBack: true}
		if errors.Is(remoteErr, model.ErrTimeout) {
			return outcome, remoteErr
		}
		return outcome, nil
	}

	return WriteOutcome{}, translate(remoteErr, localErr)
}

func (s *ProgressStore) writeRemote(ctx context.Context, userID, tutorialID string, record model.CompletionRecord) error {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.remote.Write(rctx, userID, tutorialID, record)
	}()

	timer := time.NewTimer(s.writeTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			storeWritesTotal.WithLabelValues(backendRemote, outcomeLabel(err)).Inc()
			return err
		}
		storeWritesTotal.WithLabelValues(backendRemote, outcomeOK).Inc()
		return nil
	case <-timer.C:
		// The write goroutine is abandoned; its result lands in the
		// buffered channel and is dropped.
		storeWritesTotal.WithLabelValues(backendRemote, outcomeTimeout).Inc()
		return fmt.Errorf("remote write exceeded %s: %w", s.writeTimeout, model.ErrTimeout)
	case <-ctx.Done():
		storeWritesTotal.WithLabelValues(backendRemote, outcomeError).Inc()
		return fmt.Errorf("remote write abandoned: %w", ctx.Err())
	}
}

func (s *ProgressStore) writeLocal(ctx context.Context, userID, tutorialID string, record model.CompletionRecord) error {
	if err := s.local.Write(ctx, userID, tutorialID, record); err != nil {
		storeWritesTotal.WithLabelValues(backendLocal, outcomeLabel(err)).Inc()
		s.logger.Error("Progress store: local write failed",
			"user_id", userID,
			"tutorial_id", tutorialID,
			"error", err.Error())
		return err
	}
	storeWritesTotal.WithLabelValues(backendLocal, outcomeOK).Inc()
	return nil
}

// translate maps backend failures to the store's error taxonomy once nothing
// has persisted. remoteErr is nil when no remote was attempted.
func translate(remoteErr, localErr error) error {
	switch {
	case errors.Is(remoteErr, model.ErrTimeout):
		return fmt.Errorf("%w; local fallback failed: %w", remoteErr, localErr)
	case errors.Is(remoteErr, model.ErrRejected) || errors.Is(localErr, model.ErrRejected):
		return fmt.Errorf("failed to write progress: %w", joinErrs(remoteErr, localErr))
	default:
		return fmt.Errorf("failed to write progress: %w: %w", model.ErrUnavailable, joinErrs(remoteErr, localErr))
	}
}

func joinErrs(remoteErr, localErr error) error {
	if remoteErr == nil {
		return localErr
	}
	return errors.Join(remoteErr, localErr)
}

func outcomeLabel(err error) string {
	if errors.Is(err, model.ErrRejected) {
		return outcomeRejected
	}
	return outcomeError
}

func nonNil(progress model.ProgressMap) model.ProgressMap {
	if progress == nil {
		return model.ProgressMap{}
	}
	return progress
}
