package context

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// userIDKey is the metadata key carrying the authenticated user ID.
const userIDKey = "x-user-id"

// Manager stores the authenticated user ID in incoming gRPC metadata.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetUserIDToContext returns a context whose incoming metadata carries userID.
// A user ID supplied by the client under the same key is overwritten.
func (m *Manager) SetUserIDToContext(ctx context.Context, userID string) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}
	md.Set(userIDKey, userID)

	return metadata.NewIncomingContext(ctx, md)
}

// GetUserIDFromContext reads the user ID set by SetUserIDToContext.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	userIDs := md.Get(userIDKey)
	if len(userIDs) == 0 || userIDs[0] == "" {
		return "", false
	}

	return userIDs[0], true
}
