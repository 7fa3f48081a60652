package accounting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const treeVersionKey = "accounting:tree:version"

// TreeCache stores tree responses in Redis under versioned keys. Bump moves
// every reader to a fresh key space after a write.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewTreeCache instantiates the cache helper. A nil client disables caching.
func NewTreeCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *TreeCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TreeCache{client: client, ttl: ttl, logger: logger}
}

// Version returns the current cache version, initialising when missing.
func (c *TreeCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, treeVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, treeVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, treeVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *TreeCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"accounting", "tree"}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// Nodes returns cached nodes for the key parts or fills them with loader.
// Concurrent misses for the same key share one loader call. Redis failures
// degrade to calling the loader directly.
func (c *TreeCache) Nodes(ctx context.Context, loader func(context.Context) ([]TreeNode, error), parts ...string) ([]TreeNode, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key, err := c.BuildKey(ctx, parts...)
	if err != nil {
		c.logger.Warn("tree cache unavailable", slog.Any("error", err))
		return loader(ctx)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var nodes []TreeNode
		if err := json.Unmarshal(payload, &nodes); err == nil {
			return nodes, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("tree cache read failed", slog.String("key", key), slog.Any("error", err))
		return loader(ctx)
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		nodes, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(nodes)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("tree cache write failed", slog.String("key", key), slog.Any("error", err))
		}
		return nodes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]TreeNode), nil
}

// Bump invalidates every cached tree.
func (c *TreeCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, treeVersionKey).Err()
}
