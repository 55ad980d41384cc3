package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kalyxon/progress-server/internal/api/grpc/rpc"
	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
)

var _ rpc.AuthServer = (*Auth)(nil)

// Auth handles the kalyxon.v1.Auth endpoints.
type Auth struct {
	identity       model.IdentityProvider
	accessTTL      time.Duration
	contextManager model.ContextManager
	logger         *logger.Logger
	now            func() time.Time
}

// NewAuth creates a new Auth handler.
func NewAuth(identity model.IdentityProvider, accessTTL time.Duration, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		identity:       identity,
		accessTTL:      accessTTL,
		contextManager: contextManager,
		logger:         logger,
		now:            time.Now,
	}
}

// SignUp registers an account and returns an access token for it.
func (h *Auth) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.AuthResponse, error) {
	h.logger.Debug("Auth handler: processing sign-up request",
		"email", req.Email)

	user, token, err := h.identity.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.logger.Info("Auth handler: sign-up failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return h.authResponse(user, token), nil
}

// SignIn verifies credentials and returns an access token.
func (h *Auth) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.AuthResponse, error) {
	h.logger.Debug("Auth handler: processing sign-in request",
		"email", req.Email)

	user, token, err := h.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Info("Auth handler: sign-in failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return h.authResponse(user, token), nil
}

// SignOut ends the caller's signed-in state.
func (h *Auth) SignOut(ctx context.Context, _ *rpc.Empty) (*rpc.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user not authenticated")
	}

	if err := h.identity.SignOut(ctx, userID); err != nil {
		h.logger.Error("Auth handler: sign-out failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &rpc.Empty{}, nil
}

// ResetPassword issues a password reset token.
func (h *Auth) ResetPassword(ctx context.Context, req *rpc.ResetPasswordRequest) (*rpc.Empty, error) {
	if err := h.identity.ResetPassword(ctx, req.Email); err != nil {
		h.logger.Error("Auth handler: password reset failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}
	return &rpc.Empty{}, nil
}

// ConfirmPasswordReset sets a new password using a reset token.
func (h *Auth) ConfirmPasswordReset(ctx context.Context, req *rpc.ConfirmPasswordResetRequest) (*rpc.Empty, error) {
	if err := h.identity.ConfirmPasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		h.logger.Info("Auth handler: password reset confirmation failed",
			"error", err.Error())
		return nil, handleError(err)
	}
	return &rpc.Empty{}, nil
}

// CurrentUser returns the caller's account.
func (h *Auth) CurrentUser(ctx context.Context, _ *rpc.Empty) (*rpc.User, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user not authenticated")
	}

	user, err := h.identity.CurrentUser(ctx, userID)
	if err != nil {
		return nil, handleError(err)
	}

	out := toUser(user)
	return &out, nil
}

func (h *Auth) authResponse(user model.User, token string) *rpc.AuthResponse {
	return &rpc.AuthResponse{
		User:        toUser(user),
		AccessToken: token,
		ExpiresAt:   h.now().Add(h.accessTTL).UTC(),
	}
}

func toUser(user model.User) rpc.User {
	return rpc.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
