package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antonkaz/video-dub-bot/types"
)

// RedisUserStore keeps per-user translation preferences (target language,
// voice choice). Missing or expired entries fall back to defaults.
type RedisUserStore struct {
	client   *RedisClient
	ttl      time.Duration
	defaults types.UserPrefs
}

func NewRedisUserStore(client *RedisClient, ttlHours int, defaults types.UserPrefs) *RedisUserStore {
	ttl := time.Duration(ttlHours) * time.Hour
	if ttlHours <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &RedisUserStore{
		client:   client,
		ttl:      ttl,
		defaults: defaults,
	}
}

func prefsKey(userID int64) string {
	return fmt.Sprintf("user_prefs:%d", userID)
}

func (s *RedisUserStore) GetPrefs(ctx context.Context, userID int64) (types.UserPrefs, error) {
	var prefs types.UserPrefs
	if err := s.client.Get(ctx, prefsKey(userID), &prefs); err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.defaults, nil
		}
		return s.defaults, err
	}
	if prefs.TargetLang == "" {
		prefs.TargetLang = s.defaults.TargetLang
	}
	return prefs, nil
}

func (s *RedisUserStore) SetPrefs(ctx context.Context, userID int64, prefs types.UserPrefs) error {
	return s.client.SetWithTTL(ctx, prefsKey(userID), prefs, s.ttl)
}
