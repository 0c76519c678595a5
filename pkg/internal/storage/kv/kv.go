// Package kv 提供用于键值存储的接口和实现.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yeisme/uploadvault/pkg/configs"
)

// ErrKeyNotFound 键不存在或已过期.
var ErrKeyNotFound = errors.New("key not found")

// Client 包装配置选定的 KVStore.
type Client struct {
	KVStore
	kvType configs.KVType
}

// Type 返回底层存储类型.
func (c *Client) Type() configs.KVType {
	return c.kvType
}

// HealthCheck 通过一次读取验证存储可用.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Exists(ctx, "health-check")
	return err
}

// KVStore 定义键值存储接口.
type KVStore interface {
	// Get 获取键的值，不存在时返回 ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值，ttl 为 0 表示不过期.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 获取匹配模式的键（用于调试）.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Close 关闭存储连接.
	Close() error
}

// KVFactory 定义创建 KVStore 的工厂函数类型.
type KVFactory func(ctx context.Context, cfg configs.KVConfig) (KVStore, error)

var (
	factoriesMu sync.RWMutex
	kvFactories = make(map[configs.KVType]KVFactory)
)

// RegisterKVFactory 注册 KV 工厂函数.
func RegisterKVFactory(kvType configs.KVType, factory KVFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 返回已注册的 KV 类型列表.
func GetRegisteredKVTypes() []configs.KVType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.KVType, 0, len(kvFactories))
	for kvType := range kvFactories {
		types = append(types, kvType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// NewKVStore 根据配置类型创建 KVStore 实例.
func NewKVStore(ctx context.Context, cfg configs.KVConfig) (KVStore, error) {
	factoriesMu.RLock()
	factory, exists := kvFactories[cfg.Type]
	factoriesMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported KV type: %s", cfg.Type)
	}

	return factory(ctx, cfg)
}

// NewKVClient 创建并返回一个新的 KVClient 实例.
func NewKVClient(ctx context.Context, cfg configs.KVConfig) (*Client, error) {
	store, err := NewKVStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store, kvType: cfg.Type}, nil
}
