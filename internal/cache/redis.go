package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings the server
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: rdb, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Delete removes keys. A key ending in * is expanded with SCAN.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	var plain []string
	for _, key := range keys {
		if !strings.HasSuffix(key, "*") {
			plain = append(plain, key)
			continue
		}
		iter := c.client.Scan(ctx, 0, key, 100).Iterator()
		for iter.Next(ctx) {
			plain = append(plain, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	if len(plain) == 0 {
		return nil
	}
	return c.client.Del(ctx, plain...).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
