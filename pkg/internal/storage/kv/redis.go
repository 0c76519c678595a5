//go:build !no_redis

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yeisme/uploadvault/pkg/configs"
)

// scanBatch Keys 每次 SCAN 的建议数量.
const scanBatch = 256

func init() {
	RegisterKVFactory(configs.KVTypeRedis, NewRedisKV)
}

// RedisKV 基于 Redis 的 KV 实现，TTL 交给 Redis 原生过期.
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV 连接 Redis 并 PING 一次.
func NewRedisKV(ctx context.Context, cfg configs.KVConfig) (KVStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis kv: ping %s: %w", cfg.Redis.Addr, err)
	}

	return &RedisKV{rdb: rdb}, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrKeyNotFound
	case err != nil:
		return nil, fmt.Errorf("redis kv: get %s: %w", key, err)
	}

	return b, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis kv: set %s: %w", key, err)
	}

	return nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis kv: delete %s: %w", key, err)
	}

	return nil
}

func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis kv: exists %s: %w", key, err)
	}

	return n > 0, nil
}

// Keys 用 SCAN 遍历匹配的键，避免 KEYS 阻塞服务端.
func (r *RedisKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	var keys []string

	iter := r.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis kv: scan %s: %w", pattern, err)
	}

	return keys, nil
}

func (r *RedisKV) Close() error {
	return r.rdb.Close()
}
