package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// TokenManager is a testify mock for model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) GenerateAccessToken(userID string) (string, error) {
	ret := m.Called(userID)
	return ret.String(0), ret.Error(1)
}

func (m *TokenManager) ParseAccessToken(token string) (string, error) {
	ret := m.Called(token)
	return ret.String(0), ret.Error(1)
}

func (m *TokenManager) AccessTTL() time.Duration {
	ret := m.Called()
	return ret.Get(0).(time.Duration)
}
