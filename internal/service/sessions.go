package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
)

// Sessions keeps one Session per signed-in user and follows auth events.
type Sessions struct {
	store     ProgressReadWriter
	catalog   model.Catalog
	noticeTTL time.Duration
	logger    *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	sub      *model.Subscription
	// retired holds signed-out sessions whose writes are still running.
	retired map[string][]*Session
}

func NewSessions(store ProgressReadWriter, catalog model.Catalog, noticeTTL time.Duration, logger *logger.Logger) *Sessions {
	return &Sessions{
		store:     store,
		catalog:   catalog,
		noticeTTL: noticeTTL,
		logger:    logger,
		sessions:  map[string]*Session{},
		retired:   map[string][]*Session{},
	}
}

// Attach subscribes to provider. Any previous subscription is cancelled.
func (s *Sessions) Attach(provider model.IdentityProvider) {
	sub := provider.Subscribe(s.HandleAuthEvent)

	s.mu.Lock()
	prev := s.sub
	s.sub = sub
	s.mu.Unlock()

	prev.Unsubscribe()
}

// HandleAuthEvent routes an auth event to the user's session. A sign-out
// clears the session and forgets it.
func (s *Sessions) HandleAuthEvent(ctx context.Context, event model.AuthEvent) {
	if event.SignedIn() {
		s.drainRetired(event.UserID)
		s.session(event.UserID).Transition(ctx, event.User)
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[event.UserID]
	if ok {
		delete(s.sessions, event.UserID)
		s.retired[event.UserID] = append(s.retired[event.UserID], sess)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	sess.Transition(ctx, nil)

	go func() {
		sess.Wait()
		s.forgetRetired(event.UserID, sess)
	}()

	s.logger.Debug("Sessions: session closed",
		"user_id", event.UserID)
}

// Get returns the session of a signed-in user.
func (s *Sessions) Get(userID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Acquire returns the user's session, loading it first when the user has
// none yet.
func (s *Sessions) Acquire(ctx context.Context, user model.User) *Session {
	if sess, ok := s.Get(user.ID); ok {
		if _, active := sess.User(); active {
			return sess
		}
	}
	s.drainRetired(user.ID)
	sess := s.session(user.ID)
	sess.Load(ctx, user)
	return sess
}

// drainRetired waits for the writes of the user's signed-out sessions, so a
// new session reads what they persisted.
func (s *Sessions) drainRetired(userID string) {
	s.mu.Lock()
	retired := slices.Clone(s.retired[userID])
	s.mu.Unlock()

	for _, sess := range retired {
		sess.Wait()
		s.forgetRetired(userID, sess)
	}
}

func (s *Sessions) forgetRetired(userID string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rest := slices.DeleteFunc(s.retired[userID], func(r *Session) bool { return r == sess })
	if len(rest) == 0 {
		delete(s.retired, userID)
		return
	}
	s.retired[userID] = rest
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops following auth events and waits for all pending writes.
func (s *Sessions) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	for _, retired := range s.retired {
		open = append(open, retired...)
	}
	s.mu.Unlock()

	sub.Unsubscribe()

	for _, sess := range open {
		sess.Wait()
	}
}

func (s *Sessions) session(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = NewSession(s.store, s.catalog, s.noticeTTL, s.logger)
		s.sessions[userID] = sess
	}
	return sess
}
