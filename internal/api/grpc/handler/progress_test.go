package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcctx "github.com/kalyxon/progress-server/internal/api/grpc/context"
	"github.com/kalyxon/progress-server/internal/api/grpc/rpc"
	"github.com/kalyxon/progress-server/internal/catalog"
	"github.com/kalyxon/progress-server/internal/mocks"
	"github.com/kalyxon/progress-server/internal/model"
	"github.com/kalyxon/progress-server/internal/service"
	"github.com/kalyxon/progress-server/internal/testutil"
)

// memoryStore is a ProgressReadWriter that can be told to fail writes.
type memoryStore struct {
	mu   sync.Mutex
	data map[string]model.ProgressMap
	fail bool
}

func (s *memoryStore) Read(_ context.Context, userID string) model.ProgressMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[userID].Clone()
}

func (s *memoryStore) Write(_ context.Context, userID, tutorialID string, record model.CompletionRecord) (service.WriteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return service.WriteOutcome{}, model.ErrUnavailable
	}
	if s.data[userID] == nil {
		s.data[userID] = model.ProgressMap{}
	}
	s.data[userID][tutorialID] = record
	return service.WriteOutcome{Backend: "local", Persisted: true}, nil
}

type progressFixture struct {
	handler  *Progress
	sessions *service.Sessions
	store    *memoryStore
	identity *mocks.IdentityProvider
	ctx      context.Context
}

func newProgressFixture(t *testing.T) progressFixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	store := &memoryStore{data: map[string]model.ProgressMap{}}
	sessions := service.NewSessions(store, cat, time.Minute, testutil.MakeNoopLogger())
	t.Cleanup(sessions.Close)

	identity := mocks.NewIdentityProvider(t)
	identity.On("CurrentUser", mock.Anything, "u1").Return(model.User{ID: "u1"}, nil).Maybe()

	cm := grpcctx.NewManager()
	return progressFixture{
		handler:  NewProgress(sessions, identity, cat, cm, testutil.MakeNoopLogger()),
		sessions: sessions,
		store:    store,
		identity: identity,
		ctx:      cm.SetUserIDToContext(context.Background(), "u1"),
	}
}

func TestProgress_RequiresUser(t *testing.T) {
	t.Parallel()
	f := newProgressFixture(t)

	_, err := f.handler.LoadProgress(context.Background(), &rpc.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestProgress_SignedOutUser(t *testing.T) {
	t.Parallel()
	f := newProgressFixture(t)
	f.identity.On("CurrentUser", mock.Anything, "ghost").Return(model.User{}, model.ErrNoActiveSession).Once()

	ctx := grpcctx.NewManager().SetUserIDToContext(context.Background(), "ghost")
	_, err := f.handler.GetMetrics(ctx, &rpc.Empty{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestProgress_CompleteAndMetrics(t *testing.T) {
	t.Parallel()
	f := newProgressFixture(t)

	out, err := f.handler.CompleteTutorial(f.ctx, &rpc.CompleteTutorialRequest{TutorialID: "dsa-arrays", TimeSpentMinutes: 30})
	require.NoError(t, err)
	assert.True(t, out.Record.Completed)
	assert.Equal(t, 30, out.Record.TimeSpent)

	again, err := f.handler.CompleteTutorial(f.ctx, &rpc.CompleteTutorialRequest{TutorialID: "dsa-arrays", TimeSpentMinutes: 99})
	require.NoError(t, err)
	assert.Equal(t, out.Record, again.Record)

	progress, err := f.handler.LoadProgress(f.ctx, &rpc.Empty{})
	require.NoError(t, err)
	assert.True(t, progress.Progress.IsCompleted("dsa-arrays"))

	m, err := f.handler.GetMetrics(f.ctx, &rpc.Empty{})
	require.NoError(t, err)
	assert.Equal(t, 1, m.CompletedCount)
	assert.Equal(t, 7, m.TotalTutorials)
	assert.Equal(t, 14, m.CompletionPercentage)
	assert.Equal(t, 30, m.TotalTimeSpentMinutes)
	assert.Len(t, m.Tutorials, 7)
}

func TestProgress_CompleteErrors(t *testing.T) {
	t.Parallel()
	f := newProgressFixture(t)

	tests := []struct {
		name string
		req  *rpc.CompleteTutorialRequest
		code codes.Code
	}{
		{name: "unknown tutorial", req: &rpc.CompleteTutorialRequest{TutorialID: "nope"}, code: codes.NotFound},
		{name: "negative time", req: &rpc.CompleteTutorialRequest{TutorialID: "cpp-oop", TimeSpentMinutes: -5}, code: codes.InvalidArgument},
		{name: "missing tutorial", req: &rpc.CompleteTutorialRequest{}, code: codes.FailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.handler.CompleteTutorial(f.ctx, tt.req)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestProgress_FailedWriteRaisesNotice(t *testing.T) {
	t.Parallel()
	f := newProgressFixture(t)
	f.store.fail = true

	_, err := f.handler.CompleteTutorial(f.ctx, &rpc.CompleteTutorialRequest{TutorialID: "cpp-basics", TimeSpentMinutes: 10})
	require.NoError(t, err)

	sess, ok := f.sessions.Get("u1")
	require.True(t, ok)
	sess.Wait()

	notices, err := f.handler.ListNotices(f.ctx, &rpc.Empty{})
	require.NoError(t, err)
	require.Len(t, notices.Notices, 1)

	progress, err := f.handler.LoadProgress(f.ctx, &rpc.Empty{})
	require.NoError(t, err)
	assert.True(t, progress.Progress.IsCompleted("cpp-basics"), "no rollback")

	dismissed, err := f.handler.DismissNotice(f.ctx, &rpc.DismissNoticeRequest{ID: notices.Notices[0].ID})
	require.NoError(t, err)
	assert.True(t, dismissed.Dismissed)

	notices, err = f.handler.ListNotices(f.ctx, &rpc.Empty{})
	require.NoError(t, err)
	assert.Empty(t, notices.Notices)
}

func TestProgress_ListTutorials(t *testing.T) {
	t.Parallel()
	f := newProgressFixture(t)

	all, err := f.handler.ListTutorials(context.Background(), &rpc.ListTutorialsRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Tutorials, 7)
	assert.Equal(t, []rpc.Category{{Name: "DSA", Count: 4}, {Name: "C++", Count: 3}}, all.Categories)

	cpp, err := f.handler.ListTutorials(context.Background(), &rpc.ListTutorialsRequest{Category: "c++"})
	require.NoError(t, err)
	assert.Len(t, cpp.Tutorials, 3)
}

func TestProgress_ClearedSessionIsReloaded(t *testing.T) {
	t.Parallel()
	f := newProgressFixture(t)

	stored := model.NewCompletion(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), 15)
	f.store.data["u1"] = model.ProgressMap{"dsa-recursion": stored}

	sess := f.sessions.Acquire(context.Background(), model.User{ID: "u1"})
	sess.Clear()

	progress, err := f.handler.LoadProgress(f.ctx, &rpc.Empty{})
	require.NoError(t, err)
	assert.Equal(t, stored, progress.Progress["dsa-recursion"])

	out, err := f.handler.CompleteTutorial(f.ctx, &rpc.CompleteTutorialRequest{TutorialID: "cpp-oop", TimeSpentMinutes: 5})
	require.NoError(t, err)
	assert.True(t, out.Record.Completed)
}
