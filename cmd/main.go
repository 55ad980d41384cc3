package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	grpcctx "github.com/kalyxon/progress-server/internal/api/grpc/context"
	"github.com/kalyxon/progress-server/internal/api/grpc/router"
	grpcServer "github.com/kalyxon/progress-server/internal/api/grpc/server"
	httpapi "github.com/kalyxon/progress-server/internal/api/http"
	"github.com/kalyxon/progress-server/internal/catalog"
	"github.com/kalyxon/progress-server/internal/config"
	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
	"github.com/kalyxon/progress-server/internal/repository/file"
	"github.com/kalyxon/progress-server/internal/repository/memory"
	"github.com/kalyxon/progress-server/internal/repository/postgres"
	"github.com/kalyxon/progress-server/internal/repository/redis"
	"github.com/kalyxon/progress-server/internal/server"
	"github.com/kalyxon/progress-server/internal/service"
	storage "github.com/kalyxon/progress-server/internal/storage/minio"
	"github.com/kalyxon/progress-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	logAppVersion()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load tutorial catalog", "error", err)
	}
	logger.Info("tutorial catalog loaded", "tutorials", cat.Len())

	local, err := file.NewProgressRepository(cfg.Progress.LocalDir)
	if err != nil {
		logger.Fatal("failed to initialize local progress storage", "error", err)
	}

	checks := make(map[string]httpapi.Pinger)

	var db *postgres.Connection
	if cfg.Database.DSN != "" {
		db, err = postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatal("failed to initialize database", "error", err)
		}
		defer db.Close()
		checks["postgres"] = db
	}

	remote, err := newRemoteBackend(ctx, cfg, db)
	if err != nil {
		logger.Fatal("failed to initialize remote progress storage", "error", err)
	}

	var users model.UserStore
	if db != nil {
		users = postgres.NewUserRepository(db)
	} else {
		logger.Warn("DATABASE_DSN is empty, accounts are kept in memory")
		users = memory.NewUserRepository()
	}

	var resetTokens model.ResetTokenStore
	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		checks["redis"] = pingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		resetTokens = redis.NewResetTokenRepository(rdb)
	} else {
		resetTokens = memory.NewResetTokenRepository()
	}

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	identity := service.NewIdentity(users, resetTokens, tokenManager, service.NewLogNotifier(logger), cfg.ResetToken.TTL, logger)

	store := service.NewProgressStore(remote, local, cfg.Progress.WriteTimeout, logger)
	if store.HasRemote() {
		logger.Info("progress store ready",
			"remote", cfg.Progress.Remote,
			"local_dir", cfg.Progress.LocalDir,
			"write_timeout", cfg.Progress.WriteTimeout)
	} else {
		logger.Warn("no remote progress backend configured, progress is stored locally only",
			"local_dir", cfg.Progress.LocalDir)
	}
	sessions := service.NewSessions(store, cat, cfg.Progress.NoticeTTL, logger)
	sessions.Attach(identity)

	ctxMgr := grpcctx.NewManager()
	grpcSrv := grpcServer.NewGRPCServer(
		router.New(identity, sessions, cat, tokenManager.AccessTTL(), ctxMgr, logger).Register(),
		fmt.Sprintf(":%s", cfg.GRPC.Port),
	)

	gin.SetMode(gin.ReleaseMode)
	httpSrv := httpapi.NewServer(
		httpapi.NewRouter(cat, httpapi.NewHealthHandler(checks, logger), cfg.HTTP.CORSOrigins, logger),
		fmt.Sprintf(":%s", cfg.HTTP.Port),
	)

	var grpcSecurity model.SecurityLayer = server.NewPlainListener()
	if cfg.GRPC.EnableHTTPS {
		grpcSecurity = server.NewSecurityLayer(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	}

	g, gctx := errgroup.WithContext(ctx)
	serve := func(s model.Server, sl model.SecurityLayer) {
		g.Go(func() error {
			logger.Info("Starting server on", "address", s.Address())
			return s.Start(sl)
		})
	}
	serve(grpcSrv, grpcSecurity)
	serve(httpSrv, server.NewPlainListener())

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range []model.Server{grpcSrv, httpSrv} {
			if err := s.Stop(shutdownCtx); err != nil {
				logger.Error("error during server shutdown", "error", err, "address", s.Address())
				errs = append(errs, err)
			}
		}
		// Pending completions finish their writes before the process exits.
		sessions.Close()
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
	}
	logger.Info("shutdown complete")
}

// newRemoteBackend returns the remote progress backend selected by
// PROGRESS_REMOTE, or nil for local-only operation.
func newRemoteBackend(ctx context.Context, cfg *config.Config, db *postgres.Connection) (model.ProgressBackend, error) {
	switch cfg.Progress.Remote {
	case config.RemotePostgres:
		return postgres.NewProgressRepository(db), nil
	case config.RemoteMinio:
		client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		objects, err := storage.NewClient(ctx, client, cfg.Storage.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage client: %w", err)
		}
		return storage.NewProgressRepository(objects), nil
	default:
		return nil, nil
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
