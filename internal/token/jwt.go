package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kalyxon/progress-server/internal/model"
)

// Claims represents JWT claims carrying the user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	accessTTL time.Duration
	now       func() time.Time
}

// DefaultAccessTTL is used when NewJWT receives a non-positive ttl.
const DefaultAccessTTL = 24 * time.Hour

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string, accessTTL time.Duration) *JWT {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &JWT{secretKey: secretKey, accessTTL: accessTTL, now: time.Now}
}

var _ model.TokenManager = (*JWT)(nil)

// AccessTTL returns the lifetime of issued access tokens.
func (j *JWT) AccessTTL() time.Duration {
	return j.accessTTL
}

// GenerateAccessToken creates an access token for userID.
func (j *JWT) GenerateAccessToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is empty")
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates and extracts the user ID from an access token.
func (j *JWT) ParseAccessToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("access token is invalid")
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("access token has no user id")
	}
	return claims.UserID, nil
}
