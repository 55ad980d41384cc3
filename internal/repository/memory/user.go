package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kalyxon/progress-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository keeps accounts in process memory. It backs demo mode, when
// no database is configured.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    map[string]model.User{},
		byEmail: map[string]string{},
	}
}

func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return model.User{}, model.ErrEmailTaken
	}

	r.byID[user.ID] = user
	r.byEmail[key] = user.ID
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(u *model.User) { u.LastLoginAt = &at })
}

func (r *UserRepository) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (r *UserRepository) update(id string, fn func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return model.ErrNotFound
	}
	fn(&user)
	r.byID[id] = user
	return nil
}
