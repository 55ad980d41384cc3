package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kalyxon/progress-server/internal/model"
)

// UserStore is a testify mock for model.UserStore.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	ret := m.Called(ctx, user)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	ret := m.Called(ctx, email)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id string) (model.User, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (m *UserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	ret := m.Called(ctx, id, at)
	return ret.Error(0)
}

func (m *UserStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	ret := m.Called(ctx, id, passwordHash)
	return ret.Error(0)
}

// ResetTokenStore is a testify mock for model.ResetTokenStore.
type ResetTokenStore struct {
	mock.Mock
}

func (m *ResetTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	ret := m.Called(ctx, token, userID, ttl)
	return ret.Error(0)
}

func (m *ResetTokenStore) Take(ctx context.Context, token string) (string, error) {
	ret := m.Called(ctx, token)
	return ret.String(0), ret.Error(1)
}

// Notifier is a testify mock for model.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) SendPasswordReset(ctx context.Context, user model.User, token string) error {
	ret := m.Called(ctx, user, token)
	return ret.Error(0)
}
