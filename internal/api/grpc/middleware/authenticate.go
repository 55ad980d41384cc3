package middleware

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
)

var (
	errMissingToken = errors.New("missing authorization token")
	errInvalidToken = errors.New("invalid authorization token")
)

// Authenticator resolves the signed-in user behind a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// Authenticate validates bearer tokens and injects the user ID into context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the authorization metadata, checks the token and returns a
// context carrying the user ID.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	var tokenString string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if authHeaders := md.Get("authorization"); len(authHeaders) > 0 {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeaders[0], "Bearer "))
		}
	}

	userID, err := m.authenticateUser(ctx, tokenString)
	if err != nil {
		m.logger.Debug("Authenticate: request rejected",
			"error", err.Error())
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return m.contextManager.SetUserIDToContext(ctx, userID), nil
}

func (m *Authenticate) authenticateUser(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", errMissingToken
	}

	userID, err := m.authenticator.Authenticate(ctx, tokenString)
	if err != nil || userID == "" {
		return "", errInvalidToken
	}

	return userID, nil
}
