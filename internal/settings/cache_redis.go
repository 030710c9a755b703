package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"phoneline/internal/routing"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "phoneline:settings:"

// CachedStore is a read-through Redis cache in front of another Store.
//
// Cache failures never fail a read; the inner store is authoritative.
// Put invalidates rather than writes so a failed write cannot leave stale data cached.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedStore) Get(ctx context.Context, workspaceID string) (routing.Settings, error) {
	if workspaceID == "" {
		return routing.Settings{}, ErrInvalidArgument
	}
	key := cacheKeyPrefix + workspaceID

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var s routing.Settings
			if err := json.Unmarshal(raw, &s); err == nil {
				return s, nil
			}
			slog.Default().Warn("settings cache decode failed", "workspace_id", workspaceID)
		case !errors.Is(err, redis.Nil):
			slog.Default().Warn("settings cache read failed", "workspace_id", workspaceID, "err", err)
		}
	}

	s, err := c.inner.Get(ctx, workspaceID)
	if err != nil {
		return routing.Settings{}, err
	}
	if c.rdb != nil {
		if raw, err := json.Marshal(s); err == nil {
			if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				slog.Default().Warn("settings cache write failed", "workspace_id", workspaceID, "err", err)
			}
		}
	}
	return s, nil
}

func (c *CachedStore) Put(ctx context.Context, workspaceID string, s routing.Settings) error {
	if err := c.inner.Put(ctx, workspaceID, s); err != nil {
		return err
	}
	if c.rdb != nil {
		if err := c.rdb.Del(ctx, cacheKeyPrefix+workspaceID).Err(); err != nil {
			slog.Default().Warn("settings cache invalidate failed", "workspace_id", workspaceID, "err", err)
		}
	}
	return nil
}
