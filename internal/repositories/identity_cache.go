package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yopdevs/platform/backend/internal/models"
)

const identityKeyPrefix = "yop:identity:"

// IdentityCache stores compact identities keyed by user id.
type IdentityCache interface {
	GetIdentities(ctx context.Context, ids []string) (map[string]models.Identity, error)
	SetIdentities(ctx context.Context, identities []models.Identity) error
	DeleteIdentity(ctx context.Context, id string) error
}

// RedisIdentityCache implements IdentityCache on Redis strings holding JSON.
type RedisIdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdentityCache creates a cache whose entries expire after ttl.
func NewRedisIdentityCache(client *redis.Client, ttl time.Duration) *RedisIdentityCache {
	return &RedisIdentityCache{client: client, ttl: ttl}
}

// GetIdentities returns the cached entries among ids. Misses are simply absent.
func (c *RedisIdentityCache) GetIdentities(ctx context.Context, ids []string) (map[string]models.Identity, error) {
	found := make(map[string]models.Identity, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = identityKeyPrefix + id
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var identity models.Identity
		if err := json.Unmarshal([]byte(raw), &identity); err != nil {
			continue
		}
		found[ids[i]] = identity
	}
	return found, nil
}

// SetIdentities writes every identity in one pipeline.
func (c *RedisIdentityCache) SetIdentities(ctx context.Context, identities []models.Identity) error {
	if len(identities) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, identity := range identities {
		raw, err := json.Marshal(identity)
		if err != nil {
			return err
		}
		pipe.Set(ctx, identityKeyPrefix+identity.ID, raw, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// DeleteIdentity drops one entry, used after profile edits.
func (c *RedisIdentityCache) DeleteIdentity(ctx context.Context, id string) error {
	return c.client.Del(ctx, identityKeyPrefix+id).Err()
}
