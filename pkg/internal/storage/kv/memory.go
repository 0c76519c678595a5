package kv

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/yeisme/uploadvault/pkg/configs"
)

type memoryEntry struct {
	value    []byte
	expireAt time.Time // 零值表示不过期
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// MemoryKV 基于 sync.Map 的内存 KV 实现，过期键在读取时惰性删除.
type MemoryKV struct {
	data sync.Map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ configs.KVConfig) (KVStore, error) {
	return &MemoryKV{now: time.Now}, nil
}

// load 返回未过期的条目. 条目以指针存储，CompareAndDelete 只删除读到的那一个，
// 并发 Set 写入的新值不受影响.
func (m *MemoryKV) load(key string) (*memoryEntry, bool) {
	v, ok := m.data.Load(key)
	if !ok {
		return nil, false
	}

	e, ok := v.(*memoryEntry)
	if !ok {
		return nil, false
	}

	if e.expired(m.now()) {
		m.data.CompareAndDelete(key, e)
		return nil, false
	}

	return e, true
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := m.load(key)
	if !ok {
		return nil, ErrKeyNotFound
	}

	result := make([]byte, len(e.value))
	copy(result, e.value)

	return result, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := &memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)

	if ttl > 0 {
		e.expireAt = m.now().Add(ttl)
	}

	m.data.Store(key, e)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.load(key)
	return ok, nil
}

// Keys 获取匹配 glob 模式的键，空模式返回全部.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	m.data.Range(func(key, _ any) bool {
		k, ok := key.(string)
		if !ok {
			return true
		}

		if _, live := m.load(k); !live {
			return true
		}

		if pattern == "" {
			keys = append(keys, k)
			return true
		}

		if matched, err := path.Match(pattern, k); err == nil && matched {
			keys = append(keys, k)
		}

		return true
	})

	return keys, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeMemory, NewMemoryKV)
}
