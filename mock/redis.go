package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository stores refresh sessions as JSON under "<prefix>session:<id>"
// with TTL = expiresAt - now. Rotation is claimed with SETNX on
// "<prefix>rotated:<id>" and family members are tracked in a set.
type RedisRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func (r *RedisRepository) sessionKey(id string) string {
	return r.prefix + "session:" + id
}

func (r *RedisRepository) rotatedKey(id string) string {
	return r.prefix + "rotated:" + id
}

func (r *RedisRepository) familyKey(family string) string {
	return r.prefix + "family:" + family
}

func (r *RedisRepository) ttl(session *RefreshSession) time.Duration {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	return ttl
}

func (r *RedisRepository) Create(ctx context.Context, session *RefreshSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := r.ttl(session)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(session.ID), data, ttl)
	pipe.SAdd(ctx, r.familyKey(session.Family), session.ID)
	pipe.Expire(ctx, r.familyKey(session.Family), ttl)
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store refresh session: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*RefreshSession, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	session := &RefreshSession{}
	if err = json.Unmarshal(data, session); err != nil {
		return nil, err
	}
	rotated, err := r.client.Exists(ctx, r.rotatedKey(id)).Result()
	if err != nil {
		return nil, err
	}
	session.Rotated = rotated > 0
	return session, nil
}

func (r *RedisRepository) Rotate(ctx context.Context, id string, next *RefreshSession) (bool, error) {
	current, err := r.Get(ctx, id)
	if err != nil || current == nil {
		return false, err
	}
	claimed, err := r.client.SetNX(ctx, r.rotatedKey(id), next.ID, r.ttl(current)).Result()
	if err != nil || !claimed {
		return false, err
	}
	return true, r.Create(ctx, next)
}

func (r *RedisRepository) RevokeFamily(ctx context.Context, family string) error {
	ids, err := r.client.SMembers(ctx, r.familyKey(family)).Result()
	if err != nil {
		return err
	}
	keys := []string{r.familyKey(family)}
	for _, id := range ids {
		keys = append(keys, r.sessionKey(id), r.rotatedKey(id))
	}
	return r.client.Del(ctx, keys...).Err()
}

// NewRedisRepository creates a repository; prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string, now func() time.Time) *RedisRepository {
	if prefix == "" {
		prefix = "authsession:"
	}
	if now == nil {
		now = time.Now
	}
	return &RedisRepository{client: client, prefix: prefix, now: now}
}
