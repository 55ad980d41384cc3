package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	servermocks "github.com/kalyxon/progress-server/internal/mocks"
	"github.com/kalyxon/progress-server/internal/model"
	"github.com/kalyxon/progress-server/internal/repository/file"
	"github.com/kalyxon/progress-server/internal/testutil"
)

// blockingBackend never completes a write until released or cancelled.
type blockingBackend struct {
	release chan struct{}
	started chan struct{}
	writes  atomic.Int32
}

func newBlockingBackend() *blockingBackend {
	return &blockingBackend{release: make(chan struct{}), started: make(chan struct{}, 16)}
}

func (b *blockingBackend) Read(ctx context.Context, _ string) (model.ProgressMap, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingBackend) Write(ctx context.Context, _, _ string, _ model.CompletionRecord) error {
	b.started <- struct{}{}
	select {
	case <-b.release:
		b.writes.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var errConnRefused = errors.New("dial tcp: connection refused")

func TestProgressStore_Write(t *testing.T) {
	ctx := context.Background()
	rec := model.NewCompletion(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), 30)

	tests := []struct {
		name        string
		remote      func() model.ProgressBackend
		local       func() *servermocks.ProgressBackend
		wantOutcome WriteOutcome
		wantErr     error
	}{
		{
			name:   "local only",
			remote: func() model.ProgressBackend { return nil },
			local: func() *servermocks.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(nil).Once()
				return m
			},
			wantOutcome: WriteOutcome{Backend: "local", Persisted: true},
		},
		{
			name: "remote succeeds",
			remote: func() model.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(nil).Once()
				return m
			},
			local:       func() *servermocks.ProgressBackend { return &servermocks.ProgressBackend{} },
			wantOutcome: WriteOutcome{Backend: "remote", Persisted: true},
		},
		{
			name: "remote error falls back to local",
			remote: func() model.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(errConnRefused).Once()
				return m
			},
			local: func() *servermocks.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(nil).Once()
				return m
			},
			wantOutcome: WriteOutcome{Backend: "local", Persisted: true, FellBack: true},
		},
		{
			name: "both fail",
			remote: func() model.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(errConnRefused).Once()
				return m
			},
			local: func() *servermocks.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(errors.New("disk full")).Once()
				return m
			},
			wantErr: model.ErrUnavailable,
		},
		{
			name: "remote rejects and local fails",
			remote: func() model.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(fmt.Errorf("bad row: %w", model.ErrRejected)).Once()
				return m
			},
			local: func() *servermocks.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(errors.New("disk full")).Once()
				return m
			},
			wantErr: model.ErrRejected,
		},
		{
			name:   "local rejects without remote",
			remote: func() model.ProgressBackend { return nil },
			local: func() *servermocks.ProgressBackend {
				m := &servermocks.ProgressBackend{}
				m.On("Write", mock.Anything, "u1", "t1", rec).Return(fmt.Errorf("invalid id: %w", model.ErrRejected)).Once()
				return m
			},
			wantErr: model.ErrRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := tt.local()
			store := NewProgressStore(tt.remote(), local, time.Second, testutil.MakeNoopLogger())

			outcome, err := store.Write(ctx, "u1", "t1", rec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, outcome.Persisted)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOutcome, outcome)
			local.AssertExpectations(t)
		})
	}
}

func TestProgressStore_Write_Timeout(t *testing.T) {
	ctx := context.Background()
	rec := model.NewCompletion(time.Now(), 5)

	t.Run("local persists after timeout", func(t *testing.T) {
		remote := newBlockingBackend()
		local := &servermocks.ProgressBackend{}
		local.On("Write", mock.Anything, "u1", "t1", rec).Return(nil).Once()

		store := NewProgressStore(remote, local, 20*time.Millisecond, testutil.MakeNoopLogger())

		outcome, err := store.Write(ctx, "u1", "t1", rec)
		require.ErrorIs(t, err, model.ErrTimeout)
		assert.Equal(t, WriteOutcome{Backend: "local", Persisted: true, FellBack: true}, outcome)

		// The abandoned remote write never lands.
		close(remote.release)
		assert.Zero(t, remote.writes.Load())
		local.AssertExpectations(t)
	})

	t.Run("nothing persists", func(t *testing.T) {
		remote := newBlockingBackend()
		local := &servermocks.ProgressBackend{}
		local.On("Write", mock.Anything, "u1", "t1", rec).Return(errors.New("disk full")).Once()

		store := NewProgressStore(remote, local, 20*time.Millisecond, testutil.MakeNoopLogger())

		outcome, err := store.Write(ctx, "u1", "t1", rec)
		require.ErrorIs(t, err, model.ErrTimeout)
		assert.False(t, outcome.Persisted)
	})

	t.Run("remote answers in time", func(t *testing.T) {
		remote := newBlockingBackend()
		local := &servermocks.ProgressBackend{}
		store := NewProgressStore(remote, local, time.Second, testutil.MakeNoopLogger())

		go func() {
			<-remote.started
			close(remote.release)
		}()

		outcome, err := store.Write(ctx, "u1", "t1", rec)
		require.NoError(t, err)
		assert.Equal(t, "remote", outcome.Backend)
		assert.EqualValues(t, 1, remote.writes.Load())
	})
}

func TestProgressStore_Read(t *testing.T) {
	ctx := context.Background()
	remoteMap := model.ProgressMap{"t1": model.NewCompletion(time.Now(), 1)}
	localMap := model.ProgressMap{"t2": model.NewCompletion(time.Now(), 2)}

	t.Run("remote first", func(t *testing.T) {
		remote := &servermocks.ProgressBackend{}
		remote.On("Read", mock.Anything, "u1").Return(remoteMap, nil).Once()
		local := &servermocks.ProgressBackend{}

		store := NewProgressStore(remote, local, time.Second, testutil.MakeNoopLogger())
		assert.Equal(t, remoteMap, store.Read(ctx, "u1"))
		local.AssertNotCalled(t, "Read", mock.Anything, mock.Anything)
	})

	t.Run("remote error uses local", func(t *testing.T) {
		remote := &servermocks.ProgressBackend{}
		remote.On("Read", mock.Anything, "u1").Return(nil, errConnRefused).Once()
		local := &servermocks.ProgressBackend{}
		local.On("Read", mock.Anything, "u1").Return(localMap, nil).Once()

		store := NewProgressStore(remote, local, time.Second, testutil.MakeNoopLogger())
		assert.Equal(t, localMap, store.Read(ctx, "u1"))
	})

	t.Run("hanging remote is bounded", func(t *testing.T) {
		local := &servermocks.ProgressBackend{}
		local.On("Read", mock.Anything, "u1").Return(localMap, nil).Once()

		store := NewProgressStore(newBlockingBackend(), local, 20*time.Millisecond, testutil.MakeNoopLogger())
		assert.Equal(t, localMap, store.Read(ctx, "u1"))
	})

	t.Run("never fails", func(t *testing.T) {
		remote := &servermocks.ProgressBackend{}
		remote.On("Read", mock.Anything, "u1").Return(nil, errConnRefused).Once()
		local := &servermocks.ProgressBackend{}
		local.On("Read", mock.Anything, "u1").Return(nil, errors.New("corrupt")).Once()

		store := NewProgressStore(remote, local, time.Second, testutil.MakeNoopLogger())
		progress := store.Read(ctx, "u1")
		require.NotNil(t, progress)
		assert.Empty(t, progress)
	})

	t.Run("nil map from backend", func(t *testing.T) {
		local := &servermocks.ProgressBackend{}
		local.On("Read", mock.Anything, "u1").Return(nil, nil).Once()

		store := NewProgressStore(nil, local, time.Second, testutil.MakeNoopLogger())
		assert.NotNil(t, store.Read(ctx, "u1"))
		assert.False(t, store.HasRemote())
	})
}

func TestProgressStore_FallbackSerializesConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	local, err := file.NewProgressRepository(t.TempDir())
	require.NoError(t, err)

	remote := &servermocks.ProgressBackend{}
	remote.On("Write", mock.Anything, "u1", mock.Anything, mock.Anything).Return(errConnRefused)

	store := NewProgressStore(remote, local, time.Second, testutil.MakeNoopLogger())
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for _, id := range []string{"dsa-arrays", "cpp-basics"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := store.Write(ctx, "u1", id, model.NewCompletion(at, 10))
			assert.NoError(t, err)
			assert.True(t, outcome.FellBack)
		}()
	}
	wg.Wait()

	progress, err := local.Read(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted("dsa-arrays"))
	assert.True(t, progress.IsCompleted("cpp-basics"))
}

func TestProgressStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	local, err := file.NewProgressRepository(t.TempDir())
	require.NoError(t, err)

	store := NewProgressStore(nil, local, 0, testutil.MakeNoopLogger())
	rec := model.NewCompletion(time.Date(2026, 3, 1, 8, 15, 0, 0, time.UTC), 42)

	_, err = store.Write(ctx, "u1", "dsa-arrays", rec)
	require.NoError(t, err)

	assert.Equal(t, rec, store.Read(ctx, "u1")["dsa-arrays"])
}
