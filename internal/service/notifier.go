package service

import (
	"context"

	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes reset tokens to the log instead of mailing them.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(logger *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, user model.User, token string) error {
	n.logger.Info("Notifier: password reset requested",
		"user_id", user.ID,
		"email", user.Email,
		"token", token)
	return nil
}
