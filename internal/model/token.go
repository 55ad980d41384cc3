package model

import "time"

// TokenManager generates and validates access tokens.
type TokenManager interface {
	GenerateAccessToken(userID string) (string, error)
	ParseAccessToken(token string) (string, error)
	AccessTTL() time.Duration
}
