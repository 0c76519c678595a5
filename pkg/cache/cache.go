// Package cache 提供基于键值存储的泛型缓存实现.
//
// 值使用 sonic 序列化为 JSON，键会加上统一前缀. GetOrSet 对同一个键的并发回源
// 通过 singleflight 合并，只有一个调用方真正执行 getter.
//
// 基本用法:
//
//	c := cache.NewCache(kvClient, "uv:")
//	author, err := cache.GetOrSet(ctx, c, "post:author:1", func(ctx context.Context) (string, error) {
//	    return loadAuthor(ctx, 1)
//	}, time.Minute)
//
// 缓存读写失败不会影响 GetOrSet 的结果，只会退化为直接回源.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/uploadvault/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = errors.New("cache miss")

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
	group   singleflight.Group
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore, prefix string) *Cache {
	return &Cache{
		kvStore: kvStore,
		prefix:  prefix,
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get 泛型获取缓存值，未命中返回 ErrMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return zero, ErrMiss
	}

	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.key(key))
}

// GetOrSet 获取缓存值，未命中时回源并写入缓存.
// getter 的错误原样返回且不会被缓存.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func(context.Context) (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := getter(ctx)
		if err != nil {
			return value, err
		}

		// 写缓存失败只影响下次命中
		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	value, _ := v.(T)

	return value, nil
}

// Clear 清空带前缀的全部缓存键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, c.prefix+"*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
