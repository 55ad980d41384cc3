package model

import (
	"context"
	"sync"
	"time"
)

// IdentityProvider is the source of user identities.
type IdentityProvider interface {
	// SignUp registers an account and signs it in, returning an access token.
	SignUp(ctx context.Context, email, password, displayName string) (User, string, error)
	SignIn(ctx context.Context, email, password string) (User, string, error)
	SignOut(ctx context.Context, userID string) error
	ResetPassword(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	CurrentUser(ctx context.Context, userID string) (User, error)
	Subscribe(fn AuthListener) *Subscription
}

// AuthEvent is emitted whenever a user's signed-in state changes.
// User is nil when the user signed out.
type AuthEvent struct {
	UserID string
	User   *User
	At     time.Time
}

// SignedIn reports whether the event carries an identity.
func (e AuthEvent) SignedIn() bool {
	return e.User != nil
}

// AuthListener receives auth events.
type AuthListener func(ctx context.Context, event AuthEvent)

// Subscription is a cancellation handle returned by Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps cancel so that it runs at most once.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe stops delivery of further events. Safe to call repeatedly.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Notifier delivers password reset tokens to users.
type Notifier interface {
	SendPasswordReset(ctx context.Context, user User, token string) error
}
