package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kalyxon/progress-server/internal/model"
)

var _ model.ResetTokenStore = (*ResetTokenRepository)(nil)

type resetEntry struct {
	userID    string
	expiresAt time.Time
}

// ResetTokenRepository is the in-process fallback when redis is not configured.
type ResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]resetEntry
	now    func() time.Time
}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{
		tokens: map[string]resetEntry{},
		now:    time.Now,
	}
}

func (r *ResetTokenRepository) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, e := range r.tokens {
		if !now.Before(e.expiresAt) {
			delete(r.tokens, k)
		}
	}
	r.tokens[token] = resetEntry{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (r *ResetTokenRepository) Take(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tokens[token]
	if !ok {
		return "", model.ErrInvalidToken
	}
	delete(r.tokens, token)
	if !r.now().Before(e.expiresAt) {
		return "", model.ErrInvalidToken
	}
	return e.userID, nil
}
