package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kalyxon/progress-server/internal/model"
)

// ProgressBackend is a testify mock for model.ProgressBackend.
type ProgressBackend struct {
	mock.Mock
}

func (m *ProgressBackend) Read(ctx context.Context, userID string) (model.ProgressMap, error) {
	ret := m.Called(ctx, userID)

	var progress model.ProgressMap
	if rf, ok := ret.Get(0).(func(context.Context, string) model.ProgressMap); ok {
		progress = rf(ctx, userID)
	} else if ret.Get(0) != nil {
		progress = ret.Get(0).(model.ProgressMap)
	}

	return progress, ret.Error(1)
}

func (m *ProgressBackend) Write(ctx context.Context, userID, tutorialID string, record model.CompletionRecord) error {
	ret := m.Called(ctx, userID, tutorialID, record)
	return ret.Error(0)
}
