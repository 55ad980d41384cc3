package router

import (
	"context"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/kalyxon/progress-server/internal/api/grpc/codec"
	"github.com/kalyxon/progress-server/internal/api/grpc/handler"
	"github.com/kalyxon/progress-server/internal/api/grpc/middleware"
	"github.com/kalyxon/progress-server/internal/api/grpc/rpc"
	"github.com/kalyxon/progress-server/internal/catalog"
	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
	"github.com/kalyxon/progress-server/internal/service"
)

// publicMethods are served without a bearer token.
var publicMethods = map[string]struct{}{
	rpc.AuthSignUpMethod:               {},
	rpc.AuthSignInMethod:               {},
	rpc.AuthResetPasswordMethod:        {},
	rpc.AuthConfirmPasswordResetMethod: {},
	rpc.ProgressListTutorialsMethod:    {},
}

// Router wires the kalyxon.v1 services and their interceptors into a gRPC server.
type Router struct {
	identity       *service.Identity
	sessions       *service.Sessions
	catalog        *catalog.Catalog
	accessTTL      time.Duration
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	identity *service.Identity,
	sessions *service.Sessions,
	catalog *catalog.Catalog,
	accessTTL time.Duration,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		identity:       identity,
		sessions:       sessions,
		catalog:        catalog,
		accessTTL:      accessTTL,
		contextManager: contextManager,
		logger:         logger,
	}
}

func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	_, public := publicMethods[c.FullMethod()]
	return !public
}

// Register builds the gRPC server with logging and authentication
// interceptors and registers the Auth and Progress services on it.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.identity, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ForceServerCodec(codec.JSON{}),
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
		grpc.ChainStreamInterceptor(
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)
	r.registerAuthRoutes(s)
	r.registerProgressRoutes(s)

	return s
}

func (r *Router) registerAuthRoutes(server *grpc.Server) {
	authHandler := handler.NewAuth(r.identity, r.accessTTL, r.contextManager, r.logger)
	rpc.RegisterAuthServer(server, authHandler)
}

func (r *Router) registerProgressRoutes(server *grpc.Server) {
	progressHandler := handler.NewProgress(r.sessions, r.identity, r.catalog, r.contextManager, r.logger)
	rpc.RegisterProgressServer(server, progressHandler)
}
