package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kalyxon/progress-server/internal/logger"
	"github.com/kalyxon/progress-server/internal/model"
)

// DefaultResetTokenTTL is the lifetime of a password reset token.
const DefaultResetTokenTTL = 15 * time.Minute

type signUpInput struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=6"`
	DisplayName string `validate:"max=64"`
}

type signInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type resetInput struct {
	Email string `validate:"required,email"`
}

type confirmResetInput struct {
	Token    string `validate:"required"`
	Password string `validate:"required,min=6"`
}

type listenerEntry struct {
	id uint64
	fn model.AuthListener
}

var _ model.IdentityProvider = (*Identity)(nil)

// Identity is the built-in identity provider: bcrypt password hashes, JWT
// access tokens and an in-process record of who is signed in.
type Identity struct {
	users       model.UserStore
	resetTokens model.ResetTokenStore
	tokens      model.TokenManager
	notifier    model.Notifier
	validate    *validator.Validate
	resetTTL    time.Duration
	logger      *logger.Logger
	now         func() time.Time
	hashCost    int

	mu        sync.RWMutex
	active    map[string]model.User
	listeners []listenerEntry
	nextID    uint64
}

func NewIdentity(
	users model.UserStore,
	resetTokens model.ResetTokenStore,
	tokens model.TokenManager,
	notifier model.Notifier,
	resetTTL time.Duration,
	logger *logger.Logger,
) *Identity {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTokenTTL
	}
	return &Identity{
		users:       users,
		resetTokens: resetTokens,
		tokens:      tokens,
		notifier:    notifier,
		validate:    validator.New(),
		resetTTL:    resetTTL,
		logger:      logger,
		now:         time.Now,
		hashCost:    bcrypt.DefaultCost,
		active:      map[string]model.User{},
	}
}

func (i *Identity) SignUp(ctx context.Context, email, password, displayName string) (model.User, string, error) {
	email = normalizeEmail(email)
	displayName = strings.TrimSpace(displayName)

	if err := i.check(signUpInput{Email: email, Password: password, DisplayName: displayName}); err != nil {
		return model.User{}, "", err
	}

	i.logger.Debug("Identity: starting user registration",
		"email", email)

	_, err := i.users.GetByEmail(ctx, email)
	if err == nil {
		return model.User{}, "", model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		i.logger.Error("Identity: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), i.hashCost)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	user, err := i.users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    i.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.User{}, "", err
		}
		i.logger.Error("Identity: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to create user: %w", err)
	}

	i.logger.Info("Identity: user registered",
		"user_id", user.ID)

	return i.startSession(ctx, user)
}

func (i *Identity) SignIn(ctx context.Context, email, password string) (model.User, string, error) {
	email = normalizeEmail(email)

	if err := i.check(signInInput{Email: email, Password: password}); err != nil {
		return model.User{}, "", err
	}

	user, err := i.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, "", model.ErrInvalidCredentials
		}
		return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		i.logger.Info("Identity: wrong password",
			"user_id", user.ID)
		return model.User{}, "", model.ErrInvalidCredentials
	}

	return i.startSession(ctx, user)
}

func (i *Identity) startSession(ctx context.Context, user model.User) (model.User, string, error) {
	now := i.now().UTC()
	if err := i.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		i.logger.Warn("Identity: failed to record last login",
			"user_id", user.ID,
			"error", err.Error())
	} else {
		user.LastLoginAt = &now
	}

	token, err := i.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	i.mu.Lock()
	i.active[user.ID] = user
	i.mu.Unlock()

	u := user
	i.emit(ctx, model.AuthEvent{UserID: user.ID, User: &u, At: now})

	return user, token, nil
}

// SignOut ends the user's signed-in state. Signing out twice is a no-op.
func (i *Identity) SignOut(ctx context.Context, userID string) error {
	i.mu.Lock()
	_, ok := i.active[userID]
	delete(i.active, userID)
	i.mu.Unlock()

	if !ok {
		return nil
	}

	i.logger.Debug("Identity: user signed out",
		"user_id", userID)
	i.emit(ctx, model.AuthEvent{UserID: userID, At: i.now().UTC()})
	return nil
}

// ResetPassword issues a reset token and hands it to the notifier. Unknown
// addresses succeed silently so callers cannot tell which accounts exist.
func (i *Identity) ResetPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := i.check(resetInput{Email: email}); err != nil {
		return err
	}

	user, err := i.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			i.logger.Info("Identity: password reset for unknown email",
				"email", email)
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	token := uuid.NewString()
	if err := i.resetTokens.Save(ctx, token, user.ID, i.resetTTL); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	if err := i.notifier.SendPasswordReset(ctx, user, token); err != nil {
		return fmt.Errorf("failed to send password reset: %w", err)
	}

	return nil
}

// ConfirmPasswordReset sets a new password and signs the user out.
func (i *Identity) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := i.check(confirmResetInput{Token: token, Password: newPassword}); err != nil {
		return err
	}

	userID, err := i.resetTokens.Take(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("failed to take reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), i.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := i.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrInvalidToken
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	i.logger.Info("Identity: password reset",
		"user_id", userID)

	return i.SignOut(ctx, userID)
}

// CurrentUser returns the signed-in user with userID.
func (i *Identity) CurrentUser(ctx context.Context, userID string) (model.User, error) {
	if !i.IsSignedIn(userID) {
		return model.User{}, model.ErrNoActiveSession
	}

	user, err := i.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNoActiveSession
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// IsSignedIn reports whether userID has an active sign-in.
func (i *Identity) IsSignedIn(userID string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.active[userID]
	return ok
}

// Authenticate resolves an access token to a signed-in user id.
func (i *Identity) Authenticate(_ context.Context, token string) (string, error) {
	userID, err := i.tokens.ParseAccessToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
	}
	if !i.IsSignedIn(userID) {
		return "", fmt.Errorf("user signed out: %w", model.ErrInvalidToken)
	}
	return userID, nil
}

// Subscribe registers fn for auth events. Listeners run synchronously in
// registration order on the goroutine that changed the auth state.
func (i *Identity) Subscribe(fn model.AuthListener) *model.Subscription {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.nextID++
	id := i.nextID
	i.listeners = append(i.listeners, listenerEntry{id: id, fn: fn})

	return model.NewSubscription(func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		for idx, l := range i.listeners {
			if l.id == id {
				i.listeners = append(i.listeners[:idx:idx], i.listeners[idx+1:]...)
				return
			}
		}
	})
}

func (i *Identity) emit(ctx context.Context, event model.AuthEvent) {
	i.mu.RLock()
	listeners := make([]listenerEntry, len(i.listeners))
	copy(listeners, i.listeners)
	i.mu.RUnlock()

	for _, l := range listeners {
		l.fn(ctx, event)
	}
}

func (i *Identity) check(input any) error {
	err := i.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", model.ErrInvalidArgument, err)
	}

	fe := verrs[0]
	var msg string
	switch {
	case fe.Field() == "Email":
		msg = "invalid email address"
	case fe.Field() == "Password" && fe.Tag() == "min":
		msg = "password must be at least 6 characters"
	case fe.Tag() == "required":
		msg = strings.ToLower(fe.Field()) + " is required"
	case fe.Tag() == "max":
		msg = strings.ToLower(fe.Field()) + " is too long"
	default:
		msg = strings.ToLower(fe.Field()) + " is invalid"
	}
	return fmt.Errorf("%s: %w", msg, model.ErrInvalidArgument)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
