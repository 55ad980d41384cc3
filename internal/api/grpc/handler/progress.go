package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kalyxon/progress-server/internal/api/grpc/rpc"
	"github.com/kalyxon/progress-server/internal/catalog"
	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
	"github.com/kalyxon/progress-server/internal/service"
)

// SessionRegistry resolves the progress session of a user.
type SessionRegistry interface {
	Get(userID string) (*service.Session, bool)
	Acquire(ctx context.Context, user model.User) *service.Session
}

// UserLookup returns signed-in users.
type UserLookup interface {
	CurrentUser(ctx context.Context, userID string) (model.User, error)
}

var _ rpc.ProgressServer = (*Progress)(nil)

// Progress handles the kalyxon.v1.Progress endpoints.
type Progress struct {
	sessions       SessionRegistry
	users          UserLookup
	catalog        *catalog.Catalog
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewProgress creates a new Progress handler.
func NewProgress(
	sessions SessionRegistry,
	users UserLookup,
	catalog *catalog.Catalog,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Progress {
	return &Progress{
		sessions:       sessions,
		users:          users,
		catalog:        catalog,
		contextManager: contextManager,
		logger:         logger,
	}
}

// LoadProgress returns the caller's progress map.
func (h *Progress) LoadProgress(ctx context.Context, _ *rpc.Empty) (*rpc.ProgressResponse, error) {
	sess, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.ProgressResponse{Progress: sess.Snapshot()}, nil
}

// CompleteTutorial marks a tutorial done. The response is sent before the
// record is persisted; persistence failures surface through ListNotices.
func (h *Progress) CompleteTutorial(ctx context.Context, req *rpc.CompleteTutorialRequest) (*rpc.CompleteTutorialResponse, error) {
	sess, err := h.session(ctx)
	if err != nil {
		return nil, err
	}

	record, err := sess.Complete(ctx, req.TutorialID, req.TimeSpentMinutes)
	if err != nil {
		h.logger.Info("Progress handler: completion refused",
			"tutorial_id", req.TutorialID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &rpc.CompleteTutorialResponse{
		TutorialID: req.TutorialID,
		Record:     record,
	}, nil
}

// GetMetrics returns statistics derived from the caller's progress.
func (h *Progress) GetMetrics(ctx context.Context, _ *rpc.Empty) (*model.Metrics, error) {
	sess, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	m := sess.Metrics()
	return &m, nil
}

// ListNotices returns the caller's unexpired notices.
func (h *Progress) ListNotices(ctx context.Context, _ *rpc.Empty) (*rpc.NoticesResponse, error) {
	sess, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.NoticesResponse{Notices: sess.Notices()}, nil
}

// DismissNotice removes one notice early.
func (h *Progress) DismissNotice(ctx context.Context, req *rpc.DismissNoticeRequest) (*rpc.DismissNoticeResponse, error) {
	sess, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.DismissNoticeResponse{Dismissed: sess.Dismiss(req.ID)}, nil
}

// ListTutorials lists the catalog, optionally narrowed to one category.
func (h *Progress) ListTutorials(_ context.Context, req *rpc.ListTutorialsRequest) (*rpc.ListTutorialsResponse, error) {
	tutorials := h.catalog.All()
	if req.Category != "" {
		filtered := tutorials[:0]
		for _, t := range tutorials {
			if strings.EqualFold(t.Category, req.Category) {
				filtered = append(filtered, t)
			}
		}
		tutorials = filtered
	}

	resp := &rpc.ListTutorialsResponse{Tutorials: tutorials}
	for _, c := range h.catalog.Categories() {
		resp.Categories = append(resp.Categories, rpc.Category{Name: c.Name, Count: c.Count})
	}
	return resp, nil
}

func (h *Progress) session(ctx context.Context) (*service.Session, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user not authenticated")
	}

	if sess, ok := h.sessions.Get(userID); ok {
		if _, active := sess.User(); active {
			return sess, nil
		}
	}

	user, err := h.users.CurrentUser(ctx, userID)
	if err != nil {
		return nil, handleError(err)
	}
	return h.sessions.Acquire(ctx, user), nil
}
