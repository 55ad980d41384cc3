package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/kalyxon/progress-server/internal/model"
)

const ProgressServiceName = "kalyxon.v1.Progress"

const (
	ProgressLoadProgressMethod     = "/" + ProgressServiceName + "/LoadProgress"
	ProgressCompleteTutorialMethod = "/" + ProgressServiceName + "/CompleteTutorial"
	ProgressGetMetricsMethod       = "/" + ProgressServiceName + "/GetMetrics"
	ProgressListNoticesMethod      = "/" + ProgressServiceName + "/ListNotices"
	ProgressDismissNoticeMethod    = "/" + ProgressServiceName + "/DismissNotice"
	ProgressListTutorialsMethod    = "/" + ProgressServiceName + "/ListTutorials"
)

type ProgressResponse struct {
	Progress model.ProgressMap `json:"progress"`
}

type CompleteTutorialRequest struct {
	TutorialID       string `json:"tutorialId"`
	TimeSpentMinutes int    `json:"timeSpentMinutes"`
}

type CompleteTutorialResponse struct {
	TutorialID string                 `json:"tutorialId"`
	Record     model.CompletionRecord `json:"record"`
}

type NoticesResponse struct {
	Notices []model.Notice `json:"notices"`
}

type DismissNoticeRequest struct {
	ID string `json:"id"`
}

type DismissNoticeResponse struct {
	Dismissed bool `json:"dismissed"`
}

type ListTutorialsRequest struct {
	Category string `json:"category,omitempty"`
}

type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ListTutorialsResponse struct {
	Tutorials  []model.Tutorial `json:"tutorials"`
	Categories []Category       `json:"categories"`
}

// ProgressServer is the server API of kalyxon.v1.Progress.
type ProgressServer interface {
	LoadProgress(context.Context, *Empty) (*ProgressResponse, error)
	CompleteTutorial(context.Context, *CompleteTutorialRequest) (*CompleteTutorialResponse, error)
	GetMetrics(context.Context, *Empty) (*model.Metrics, error)
	ListNotices(context.Context, *Empty) (*NoticesResponse, error)
	DismissNotice(context.Context, *DismissNoticeRequest) (*DismissNoticeResponse, error)
	ListTutorials(context.Context, *ListTutorialsRequest) (*ListTutorialsResponse, error)
}

var progressServiceDesc = grpc.ServiceDesc{
	ServiceName: ProgressServiceName,
	HandlerType: (*ProgressServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ProgressServiceName, "LoadProgress", func(srv any, ctx context.Context, req *Empty) (*ProgressResponse, error) {
			return srv.(ProgressServer).LoadProgress(ctx, req)
		}),
		unary(ProgressServiceName, "CompleteTutorial", func(srv any, ctx context.Context, req *CompleteTutorialRequest) (*CompleteTutorialResponse, error) {
			return srv.(ProgressServer).CompleteTutorial(ctx, req)
		}),
		unary(ProgressServiceName, "GetMetrics", func(srv any, ctx context.Context, req *Empty) (*model.Metrics, error) {
			return srv.(ProgressServer).GetMetrics(ctx, req)
		}),
		unary(ProgressServiceName, "ListNotices", func(srv any, ctx context.Context, req *Empty) (*NoticesResponse, error) {
			return srv.(ProgressServer).ListNotices(ctx, req)
		}),
		unary(ProgressServiceName, "DismissNotice", func(srv any, ctx context.Context, req *DismissNoticeRequest) (*DismissNoticeResponse, error) {
			return srv.(ProgressServer).DismissNotice(ctx, req)
		}),
		unary(ProgressServiceName, "ListTutorials", func(srv any, ctx context.Context, req *ListTutorialsRequest) (*ListTutorialsResponse, error) {
			return srv.(ProgressServer).ListTutorials(ctx, req)
		}),
	},
	Metadata: "kalyxon/v1/progress",
}

func RegisterProgressServer(s grpc.ServiceRegistrar, srv ProgressServer) {
	s.RegisterService(&progressServiceDesc, srv)
}

// ProgressClient is the client API of kalyxon.v1.Progress.
type ProgressClient struct {
	cc grpc.ClientConnInterface
}

func NewProgressClient(cc grpc.ClientConnInterface) *ProgressClient {
	return &ProgressClient{cc: cc}
}

func (c *ProgressClient) LoadProgress(ctx context.Context, opts ...grpc.CallOption) (*ProgressResponse, error) {
	return invoke[ProgressResponse](ctx, c.cc, ProgressLoadProgressMethod, &Empty{}, opts...)
}

func (c *ProgressClient) CompleteTutorial(ctx context.Context, in *CompleteTutorialRequest, opts ...grpc.CallOption) (*CompleteTutorialResponse, error) {
	return invoke[CompleteTutorialResponse](ctx, c.cc, ProgressCompleteTutorialMethod, in, opts...)
}

func (c *ProgressClient) GetMetrics(ctx context.Context, opts ...grpc.CallOption) (*model.Metrics, error) {
	return invoke[model.Metrics](ctx, c.cc, ProgressGetMetricsMethod, &Empty{}, opts...)
}

func (c *ProgressClient) ListNotices(ctx context.Context, opts ...grpc.CallOption) (*NoticesResponse, error) {
	return invoke[NoticesResponse](ctx, c.cc, ProgressListNoticesMethod, &Empty{}, opts...)
}

func (c *ProgressClient) DismissNotice(ctx context.Context, in *DismissNoticeRequest, opts ...grpc.CallOption) (*DismissNoticeResponse, error) {
	return invoke[DismissNoticeResponse](ctx, c.cc, ProgressDismissNoticeMethod, in, opts...)
}

func (c *ProgressClient) ListTutorials(ctx context.Context, in *ListTutorialsRequest, opts ...grpc.CallOption) (*ListTutorialsResponse, error) {
	return invoke[ListTutorialsResponse](ctx, c.cc, ProgressListTutorialsMethod, in, opts...)
}
