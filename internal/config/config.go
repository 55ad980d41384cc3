package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Remote progress backends selectable with PROGRESS_REMOTE.
const (
	RemotePostgres = "postgres"
	RemoteMinio    = "minio"
	RemoteNone     = "none"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel    int        `env:"LOG_LEVEL" envDefault:"0"`
	CatalogPath string     `env:"CATALOG_PATH"`
	GRPC        GRPC       `envPrefix:"GRPC_"`
	HTTP        HTTP       `envPrefix:"HTTP_"`
	Database    Database   `envPrefix:"DATABASE_"`
	Redis       Redis      `envPrefix:"REDIS_"`
	JWT         JWT        `envPrefix:"JWT_"`
	ResetToken  ResetToken `envPrefix:"RESET_TOKEN_"`
	Progress    Progress   `envPrefix:"PROGRESS_"`
	Storage     Storage    `envPrefix:"MINIO_"`
}

// GRPC contains gRPC server parameters.
type GRPC struct {
	Port               string `env:"PORT" envDefault:"50051"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// HTTP contains parameters of the catalog, health and metrics endpoints.
type HTTP struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// Database contains database connection parameters. An empty DSN keeps
// accounts in memory.
type Database struct {
	DSN string `env:"DSN"`
}

// Redis contains reset token store parameters. An empty address keeps reset
// tokens in memory.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// JWT contains JWT-related parameters.
type JWT struct {
	Secret    string        `env:"SECRET" envDefault:"devsecret"`
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"24h"`
}

// ResetToken contains password reset parameters.
type ResetToken struct {
	TTL time.Duration `env:"TTL" envDefault:"15m"`
}

// Progress contains progress store and session parameters.
type Progress struct {
	Remote       string        `env:"REMOTE" envDefault:"postgres"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	LocalDir     string        `env:"LOCAL_DIR" envDefault:"./data/progress"`
	NoticeTTL    time.Duration `env:"NOTICE_TTL" envDefault:"5s"`
}

// Storage contains object storage parameters.
type Storage struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"kalyxon-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"kalyxon-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"kalyxon-progress"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables and validates it.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Progress.Remote {
	case RemotePostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required when PROGRESS_REMOTE=postgres"))
		}
	case RemoteMinio:
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET_NAME are required when PROGRESS_REMOTE=minio"))
		}
	case RemoteNone:
	default:
		errs = append(errs, fmt.Errorf("unknown PROGRESS_REMOTE %q", c.Progress.Remote))
	}

	if c.Progress.LocalDir == "" {
		errs = append(errs, errors.New("PROGRESS_LOCAL_DIR must not be empty"))
	}
	if c.Progress.WriteTimeout <= 0 {
		errs = append(errs, errors.New("PROGRESS_WRITE_TIMEOUT must be positive"))
	}
	if c.Progress.NoticeTTL <= 0 {
		errs = append(errs, errors.New("PROGRESS_NOTICE_TTL must be positive"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL must be positive"))
	}
	if c.ResetToken.TTL <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_TTL must be positive"))
	}
	if c.GRPC.EnableHTTPS && (c.GRPC.CertFileName == "" || c.GRPC.PrivateKeyFileName == "") {
		errs = append(errs, errors.New("GRPC_CERT_FILE_NAME and GRPC_PRIVATE_KEY_FILE_NAME are required when GRPC_ENABLE_HTTPS=true"))
	}

	return errors.Join(errs...)
}
