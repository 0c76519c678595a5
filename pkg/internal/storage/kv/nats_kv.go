package kv

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/yeisme/uploadvault/pkg/configs"
)

func init() {
	RegisterKVFactory(configs.KVTypeNATS, NewNATSKV)
}

// NATSKV 基于 JetStream KV bucket 的实现. bucket 没有键级过期，
// 带 TTL 的值用 encodeWithTTL 包装，读到过期值时惰性删除.
type NATSKV struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
}

// NewNATSKV 连接 NATS 并创建或更新 bucket.
func NewNATSKV(ctx context.Context, cfg configs.KVConfig) (KVStore, error) {
	var opts []nats.Option
	if cfg.NATS.User != "" {
		opts = append(opts, nats.UserInfo(cfg.NATS.User, cfg.NATS.Password))
	}

	nc, err := nats.Connect(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats kv: connect %s: %w", cfg.NATS.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats kv: jetstream: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  cfg.NATS.Bucket,
		History: cfg.NATS.History,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats kv: bucket %s: %w", cfg.NATS.Bucket, err)
	}

	return &NATSKV{conn: nc, kv: kv}, nil
}

// load 读取并解包值，过期值视为不存在.
func (n *NATSKV) load(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(ctx, key)
	switch {
	case errors.Is(err, jetstream.ErrKeyNotFound):
		return nil, ErrKeyNotFound
	case err != nil:
		return nil, fmt.Errorf("nats kv: get %s: %w", key, err)
	}

	val, expired, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(ctx, key)
		return nil, ErrKeyNotFound
	}

	return val, nil
}

func (n *NATSKV) Get(ctx context.Context, key string) ([]byte, error) {
	return n.load(ctx, key)
}

func (n *NATSKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := encodeWithTTL(value, ttl, time.Now())
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(ctx, key, encoded); err != nil {
		return fmt.Errorf("nats kv: put %s: %w", key, err)
	}

	return nil
}

func (n *NATSKV) Delete(ctx context.Context, key string) error {
	if err := n.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("nats kv: delete %s: %w", key, err)
	}

	return nil
}

func (n *NATSKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := n.load(ctx, key)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	return true, nil
}

// Keys 列出匹配 path.Match 模式的未过期键.
func (n *NATSKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	lister, err := n.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("nats kv: list keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	var candidates []string

	for key := range lister.Keys() {
		if pattern != "" {
			if ok, merr := path.Match(pattern, key); merr != nil || !ok {
				continue
			}
		}

		candidates = append(candidates, key)
	}

	keys := make([]string, 0, len(candidates))

	for _, key := range candidates {
		if ok, err := n.Exists(ctx, key); err == nil && ok {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (n *NATSKV) Close() error {
	n.conn.Close()
	return nil
}
