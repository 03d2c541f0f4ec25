package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the snapshot under one namespaced key. No TTL: the cart
// survives until the user clears it or reconciliation overwrites it.
type RedisStorage struct {
	client  *redis.Client
	profile string
}

func NewRedisStorage(client *redis.Client, profile string) *RedisStorage {
	return &RedisStorage{client: client, profile: profile}
}

func (r *RedisStorage) Load(ctx context.Context) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot failed: %w", err)
	}
	return &snap, nil
}

func (r *RedisStorage) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}

	if err := r.client.Set(ctx, r.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) key() string {
	return fmt.Sprintf("cartsync:%s", r.profile)
}
