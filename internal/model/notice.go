package model

import "time"

// Notice is a transient, dismissible message for the session owner.
type Notice struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the notice should no longer be shown at now.
func (n Notice) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}
