package mocks

import (
	"context"
	"net"

	"github.com/stretchr/testify/mock"
)

// ContextManager is a testify mock for model.ContextManager.
type ContextManager struct {
	mock.Mock
}

func NewContextManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContextManager {
	m := &ContextManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ContextManager) SetUserIDToContext(ctx context.Context, userID string) context.Context {
	ret := m.Called(ctx, userID)
	return ret.Get(0).(context.Context)
}

func (m *ContextManager) GetUserIDFromContext(ctx context.Context) (string, bool) {
	ret := m.Called(ctx)
	return ret.String(0), ret.Bool(1)
}

// SecurityLayer is a testify mock for model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

func NewSecurityLayer(t interface {
	mock.TestingT
	Cleanup(func())
}) *SecurityLayer {
	m := &SecurityLayer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	ret := m.Called(protocol, addr)
	var ln net.Listener
	if v, ok := ret.Get(0).(net.Listener); ok {
		ln = v
	}
	return ln, ret.Error(1)
}
