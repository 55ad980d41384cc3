package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/kalyxon/progress-server/internal/mocks"
)

func TestGRPCServer_Address(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	assert.Equal(t, ":0", s.Address())
}

func TestGRPCServer_StopIdle(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	assert.NoError(t, s.Stop(context.Background()))
}

func TestGRPCServer_StartAndStop(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer(grpc.NewServer(), "127.0.0.1:0")
	sec := mocks.NewSecurityLayer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	sec.On("Listen", "tcp", "127.0.0.1:0").Return(ln, nil).Once()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(sec) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestGRPCServer_Start_ListenError(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer(grpc.NewServer(), ":1")
	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", ":1").Return(nil, errors.New("permission denied")).Once()

	err := srv.Start(sec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
