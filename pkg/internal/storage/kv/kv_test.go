package kv_test

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/storage/kv"
)

// TestMemoryKV 测试内存实现的读写、过期与模式匹配.
func TestMemoryKV(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get(missing) = %v, want ErrKeyNotFound", err)
	}

	value := []byte("alice")
	if err := store.Set(ctx, "post:author:1", value, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// 调用方修改原切片不影响已存储的值
	value[0] = 'X'

	got, err := store.Get(ctx, "post:author:1")
	if err != nil || string(got) != "alice" {
		t.Errorf("Get = (%q, %v), want alice", got, err)
	}

	if err := store.Set(ctx, "post:author:2", []byte("bob"), 20*time.Millisecond); err != nil {
		t.Fatalf("set ttl: %v", err)
	}

	if err := store.Set(ctx, "other", []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	keys, _ := store.Keys(ctx, "post:author:*")
	if len(keys) != 2 {
		t.Errorf("Keys(post:author:*) = %v, want 2 keys", keys)
	}

	time.Sleep(50 * time.Millisecond)

	if ok, _ := store.Exists(ctx, "post:author:2"); ok {
		t.Error("expired key should not exist")
	}

	keys, _ = store.Keys(ctx, "post:author:*")
	if len(keys) != 1 || keys[0] != "post:author:1" {
		t.Errorf("Keys after expiry = %v", keys)
	}

	if err := store.Delete(ctx, "post:author:1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if ok, _ := store.Exists(ctx, "post:author:1"); ok {
		t.Error("deleted key should not exist")
	}
}

// TestMemoryKV_ExpiredThenSet 测试过期键被惰性删除后可以重新写入.
func TestMemoryKV_ExpiredThenSet(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	if err := store.Set(ctx, "post:author:1", []byte("alice"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := store.Get(ctx, "post:author:1"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("Get(expired) = %v, want ErrKeyNotFound", err)
	}

	// 再次读取同一个已删除的键不应出错
	if ok, err := store.Exists(ctx, "post:author:1"); ok || err != nil {
		t.Errorf("Exists(expired) = (%v, %v)", ok, err)
	}

	if err := store.Set(ctx, "post:author:1", []byte("bob"), time.Minute); err != nil {
		t.Fatalf("set again: %v", err)
	}

	got, err := store.Get(ctx, "post:author:1")
	if err != nil || string(got) != "bob" {
		t.Errorf("Get after reset = (%q, %v), want bob", got, err)
	}
}

// TestNewKVClient 测试工厂注册与未知类型.
func TestNewKVClient(t *testing.T) {
	ctx := context.Background()

	client, err := kv.NewKVClient(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		t.Fatalf("NewKVClient: %v", err)
	}

	if client.Type() != configs.KVTypeMemory {
		t.Errorf("Type() = %s", client.Type())
	}

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}

	if _, err := kv.NewKVClient(ctx, configs.KVConfig{Type: "groupcache"}); err == nil {
		t.Error("expected error for unregistered kv type")
	}

	registered := map[configs.KVType]bool{}
	for _, typ := range kv.GetRegisteredKVTypes() {
		registered[typ] = true
	}

	for _, want := range []configs.KVType{configs.KVTypeMemory, configs.KVTypeRedis, configs.KVTypeNATS} {
		if !registered[want] {
			t.Errorf("kv type %s not registered", want)
		}
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}

	benchKV(b, "memory", store)
	benchKVParallel(b, "memory", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_REDIS_BENCH=1 and REDIS_ADDR set (default 127.0.0.1:6379).
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	cfg := configs.KVConfig{Type: configs.KVTypeRedis, Redis: configs.RedisKVConfig{Addr: addr}}

	store, err := kv.NewKVStore(context.Background(), cfg)
	if err != nil {
		b.Skipf("redis not available: %v", err)
		return
	}

	benchKV(b, "redis", store)
	benchKVParallel(b, "redis", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_NATS_BENCH=1 and NATS_URL set (default nats://127.0.0.1:4222)
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "bench-kv"
	}

	cfg := configs.KVConfig{Type: configs.KVTypeNATS, NATS: configs.NATSKVConfig{URL: url, Bucket: bucket, History: 1}}

	store, err := kv.NewKVStore(context.Background(), cfg)
	if err != nil {
		b.Skipf("nats not available: %v", err)
		return
	}

	benchKV(b, "nats", store)
	benchKVParallel(b, "nats", store)
	_ = store.Close()
}

// randBytes returns n random bytes, seeded reproducibly for bench.
func randBytes(n int) []byte {
	b := make([]byte, n)
	// Try crypto/rand; if it fails (unlikely in tests), fallback to deterministic PRNG.
	if _, err := crand.Read(b); err != nil {
		mr := mrand.New(mrand.NewSource(42))
		for i := range b {
			b[i] = byte(mr.Intn(256))
		}
	}

	return b
}

// benchKV 执行基本的 Set/Get/Delete 基准测试.
func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	sizes := []int{32, 1024, 64 * 1024}
	ttls := []time.Duration{0, 5 * time.Second}

	for _, size := range sizes {
		payload := randBytes(size)
		for _, ttl := range ttls {
			b.Run(fmt.Sprintf("%s/size=%d/ttl=%s", name, size, ttl), func(b *testing.B) {
				// ensure clean
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// Use hyphens to ensure keys are valid for NATS KV
					key := fmt.Sprintf("bench-%s-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("set failed: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get failed: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("delete failed: %v", err)
					}
				}
			})
		}
	}
}

// benchKVParallel 执行并行的 Set/Get/Delete 基准测试.
func benchKVParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	size := 1024
	payload := randBytes(size)

	var ctr uint64

	b.Run(fmt.Sprintf("%s/parallel", name), func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				i := atomic.AddUint64(&ctr, 1)

				// Use hyphens to ensure keys are valid for NATS KV
				key := fmt.Sprintf("bench-%s-p-%d", name, i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete failed: %v", err)
				}
			}
		})
	})
}
