package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kalyxon/progress-server/internal/logger"
)

var rpcDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "kalyxon",
		Subsystem: "grpc",
		Name:      "request_duration_seconds",
		Help:      "Unary request latency by method and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "code"},
)

// Logging is a unary interceptor that logs and times gRPC requests.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// HandleGRPC logs method name, duration and status for each unary request.
func (l *Logging) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	l.logger.Debug("gRPC request started",
		"method", info.FullMethod)

	resp, err := handler(ctx, req)
	duration := time.Since(start)

	statusCode := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			statusCode = st.Code()
		} else {
			statusCode = codes.Internal
			err = status.Error(codes.Internal, "internal server error")
		}
	}

	rpcDuration.WithLabelValues(info.FullMethod, statusCode.String()).Observe(duration.Seconds())

	switch statusCode {
	case codes.OK:
		l.logger.Info("gRPC request completed",
			"method", info.FullMethod,
			"duration_ms", duration.Milliseconds())
	case codes.Internal, codes.Unavailable:
		l.logger.Error("gRPC request failed",
			"method", info.FullMethod,
			"duration_ms", duration.Milliseconds(),
			"status", statusCode.String(),
			"error", err.Error())
	default:
		l.logger.Info("gRPC request rejected",
			"method", info.FullMethod,
			"duration_ms", duration.Milliseconds(),
			"status", statusCode.String())
	}

	return resp, err
}
