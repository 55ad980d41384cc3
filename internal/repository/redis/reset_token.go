package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kalyxon/progress-server/internal/model"
)

const resetTokenPrefix = "reset_token:"

// redisAPI is the subset of *redis.Client used here; tests substitute a fake.
type redisAPI interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

var _ model.ResetTokenStore = (*ResetTokenRepository)(nil)

type ResetTokenRepository struct {
	client redisAPI
}

func NewResetTokenRepository(client *redis.Client) *ResetTokenRepository {
	return &ResetTokenRepository{client: client}
}

func (r *ResetTokenRepository) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, resetTokenPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}
	return nil
}

// Take is single use: the key is removed in the same round trip.
func (r *ResetTokenRepository) Take(ctx context.Context, token string) (string, error) {
	userID, err := r.client.GetDel(ctx, resetTokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrInvalidToken
		}
		return "", fmt.Errorf("failed to take reset token: %w", err)
	}
	return userID, nil
}
