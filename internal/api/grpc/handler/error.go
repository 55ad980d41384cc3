package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kalyxon/progress-server/internal/model"
)

func handleError(err error) error {
	switch {
	case errors.Is(err, model.ErrTutorialNotFound):
		return status.Error(codes.NotFound, "tutorial not found")
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, model.ErrNoActiveSession):
		return status.Error(codes.FailedPrecondition, "no active session")
	case errors.Is(err, model.ErrInvalidArgument), errors.Is(err, model.ErrRejected):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, "email already registered")
	case errors.Is(err, model.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid email or password")
	case errors.Is(err, model.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid or expired token")
	case errors.Is(err, model.ErrUnavailable), errors.Is(err, model.ErrTimeout):
		return status.Error(codes.Unavailable, "progress storage unavailable")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
