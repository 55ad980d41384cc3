package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

// ResetTokenStore keeps short-lived password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Take returns the user id bound to token and invalidates it.
	Take(ctx context.Context, token string) (string, error)
}

// User represents a registered account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}
