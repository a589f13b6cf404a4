package filters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

func filterKey(userID, screen string) string {
	return fmt.Sprintf("filters:%s:%s", userID, screen)
}

// Store persists per-user screen filter state so it survives navigation
// between screens. Screens load it on mount and save it on every search
// submission.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore constructs a filter state store.
func NewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

// Load reads the saved filter state into dest. Returns ErrCacheMiss when the
// user has never searched on this screen.
func (s *Store) Load(ctx context.Context, userID, screen string, dest interface{}) error {
	raw, err := s.client.Get(ctx, filterKey(userID, screen)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read filter state")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode filter state")
	}
	return nil
}

// Save writes the filter state.
func (s *Store) Save(ctx context.Context, userID, screen string, state interface{}) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode filter state")
	}
	if err := s.client.Set(ctx, filterKey(userID, screen), payload, s.ttl).Err(); err != nil {
		s.logger.Warn("filter state save failed",
			zap.String("user", userID),
			zap.String("screen", screen),
			zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist filter state")
	}
	return nil
}
