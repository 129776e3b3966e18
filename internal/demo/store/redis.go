package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"identrust/internal/demo/models"
)

// KeyPrefix namespaces demo sessions in Redis.
const KeyPrefix = "identrust:demo:session:"

// RedisStore keeps sessions as JSON values with a TTL so several server
// instances share them.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.State, bool, error) {
	raw, err := s.client.Get(ctx, KeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.State{}, false, nil
	}
	if err != nil {
		return models.State{}, false, fmt.Errorf("get demo session: %w", err)
	}
	var state models.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return models.State{}, false, fmt.Errorf("decode demo session: %w", err)
	}
	return state, true, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, state models.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode demo session: %w", err)
	}
	if err := s.client.Set(ctx, KeyPrefix+id, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put demo session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, KeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete demo session: %w", err)
	}
	return nil
}
