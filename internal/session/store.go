package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

// Token keys live in one place so they do not spread through the code.
func tokenKey(userID string) string { return "token:" + userID }

// TokenStore persists the raw bearer token per user in Redis. It plays the
// role browser local storage plays for the front-end: written at sign-in,
// read directly by the upload path, cleared at sign-out. It is intentionally
// separate from per-request session resolution.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TokenStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenStore{client: client, ttl: ttl, logger: logger}
}

// Save stores the token issued at sign-in.
func (s *TokenStore) Save(ctx context.Context, userID, token string) error {
	if err := s.client.Set(ctx, tokenKey(userID), token, s.ttl).Err(); err != nil {
		s.logger.Warn("token save failed", zap.String("user", userID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist token")
	}
	return nil
}

// Token returns the persisted token for a user.
func (s *TokenStore) Token(ctx context.Context, userID string) (string, error) {
	raw, err := s.client.Get(ctx, tokenKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", appErrors.ErrCacheMiss
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read token")
	}
	return raw, nil
}

// Delete removes the persisted token at sign-out.
func (s *TokenStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, tokenKey(userID)).Err(); err != nil {
		s.logger.Warn("token delete failed", zap.String("user", userID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete token")
	}
	return nil
}
