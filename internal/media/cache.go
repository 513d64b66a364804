package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const descriptionKeyPrefix = "media:description:"

// descriptionCache memoises generated descriptions in Redis.
type descriptionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func descriptionKey(raw, name, craft string, materials []string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{raw, name, craft, strings.Join(materials, ",")}, "\x1f")))
	return descriptionKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *descriptionCache) get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, backendErr("redis", "get", err)
	}
	return v, true, nil
}

func (c *descriptionCache) set(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return backendErr("redis", "set", err)
	}
	return nil
}
