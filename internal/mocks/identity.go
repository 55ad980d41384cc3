package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kalyxon/progress-server/internal/model"
)

// IdentityProvider is a testify mock for model.IdentityProvider.
type IdentityProvider struct {
	mock.Mock
}

func NewIdentityProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *IdentityProvider {
	m := &IdentityProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *IdentityProvider) SignUp(ctx context.Context, email, password, displayName string) (model.User, string, error) {
	ret := m.Called(ctx, email, password, displayName)
	return ret.Get(0).(model.User), ret.String(1), ret.Error(2)
}

func (m *IdentityProvider) SignIn(ctx context.Context, email, password string) (model.User, string, error) {
	ret := m.Called(ctx, email, password)
	return ret.Get(0).(model.User), ret.String(1), ret.Error(2)
}

func (m *IdentityProvider) SignOut(ctx context.Context, userID string) error {
	ret := m.Called(ctx, userID)
	return ret.Error(0)
}

func (m *IdentityProvider) ResetPassword(ctx context.Context, email string) error {
	ret := m.Called(ctx, email)
	return ret.Error(0)
}

func (m *IdentityProvider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	ret := m.Called(ctx, token, newPassword)
	return ret.Error(0)
}

func (m *IdentityProvider) CurrentUser(ctx context.Context, userID string) (model.User, error) {
	ret := m.Called(ctx, userID)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (m *IdentityProvider) Subscribe(fn model.AuthListener) *model.Subscription {
	ret := m.Called(fn)
	if sub, ok := ret.Get(0).(*model.Subscription); ok {
		return sub
	}
	return nil
}

// Authenticator is a testify mock for the bearer token check.
type Authenticator struct {
	mock.Mock
}

func NewAuthenticator(t interface {
	mock.TestingT
	Cleanup(func())
}) *Authenticator {
	m := &Authenticator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Authenticator) Authenticate(ctx context.Context, token string) (string, error) {
	ret := m.Called(ctx, token)
	return ret.String(0), ret.Error(1)
}
