package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/kalyxon/progress-server/internal/mocks"
	"github.com/kalyxon/progress-server/internal/model"
	"github.com/kalyxon/progress-server/internal/testutil"
)

type ctxKey struct{}

func TestAuthenticate_AuthFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		authHeader   string
		wantToken    string
		userID       string
		authErr      error
		wantGRPCCode codes.Code
		wantErr      bool
	}{
		{
			name:         "missing authorization header",
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
		},
		{
			name:         "empty bearer",
			authHeader:   "Bearer ",
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
		},
		{
			name:         "invalid token",
			authHeader:   "Bearer invalid",
			wantToken:    "invalid",
			authErr:      model.ErrInvalidToken,
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
		},
		{
			name:         "empty user id",
			authHeader:   "Bearer token",
			wantToken:    "token",
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
		},
		{
			name:         "valid token",
			authHeader:   "Bearer token",
			wantToken:    "token",
			userID:       "user-1",
			wantGRPCCode: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := mocks.NewContextManager(t)
			authenticator := mocks.NewAuthenticator(t)
			if tt.wantToken != "" {
				authenticator.On("Authenticate", mock.Anything, tt.wantToken).Return(tt.userID, tt.authErr).Once()
			}

			want := context.WithValue(context.Background(), ctxKey{}, "marked")
			if !tt.wantErr {
				cm.On("SetUserIDToContext", mock.Anything, tt.userID).Return(want).Once()
			}

			ctx := context.Background()
			if tt.authHeader != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", tt.authHeader))
			}

			mw := NewAuthenticate(authenticator, cm, testutil.MakeNoopLogger())
			got, err := mw.AuthFunc(ctx)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Equal(t, tt.wantGRPCCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "marked", got.Value(ctxKey{}))
		})
	}
}
