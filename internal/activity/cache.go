package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey  = "activity:version"
	cacheLastGoodKey = "activity:lastgood"
)

// Cache stores activity snapshots in Redis behind a monotonically increasing
// version. Writers always write under the version they read, so a slow stale
// fetch lands under a stale key and is never served again (the delete-all
// path bumps the version).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// SnapshotKey composes the snapshot key for the current version.
func (c *Cache) SnapshotKey(ctx context.Context) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("activity:snapshot:%d", ver), nil
}

// Fetch loads the cached snapshot or populates it using the loader. A
// successfully loaded snapshot is also persisted as the last-good copy.
func (c *Cache) Fetch(ctx context.Context, loader func(context.Context) (Snapshot, error)) (Snapshot, error) {
	if loader == nil {
		return Snapshot{}, errors.New("activity: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key, err := c.SnapshotKey(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err == nil {
			return snap, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return Snapshot{}, err
	}

	snap, err := loader(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return Snapshot{}, err
	}
	// Last-good copy has no TTL so stale data can still render on outages.
	if err := c.client.Set(ctx, cacheLastGoodKey, raw, 0).Err(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// LastGood returns the most recent successfully fetched snapshot, if any.
func (c *Cache) LastGood(ctx context.Context) (Snapshot, bool) {
	if c == nil || c.client == nil {
		return Snapshot{}, false
	}
	payload, err := c.client.Get(ctx, cacheLastGoodKey).Bytes()
	if err != nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

// Bump invalidates all cached snapshots by incrementing the version. The
// last-good copy is dropped too: after a delete-all the empty list is the
// correct state, not an outage.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, cacheVersionKey).Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, cacheLastGoodKey).Err()
}
