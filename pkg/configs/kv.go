package configs

import (
	"github.com/spf13/viper"
)

// KVType 键值存储类型.
type KVType string

const (
	KVTypeMemory KVType = "memory"
	KVTypeRedis  KVType = "redis"
	KVTypeNATS   KVType = "nats"

	DefaultKVType        = KVTypeMemory
	DefaultKVPrefix      = "uv:"
	DefaultKVNATSBucket  = "uploadvault-kv"
	DefaultKVNATSHistory = 1
)

// KVConfig 键值存储配置. 目前用于缓存作者查询结果.
type KVConfig struct {
	Type   KVType        `mapstructure:"type"   rule:"oneof=memory redis nats"`
	Prefix string        `mapstructure:"prefix"`
	Redis  RedisKVConfig `mapstructure:"redis"`
	NATS   NATSKVConfig  `mapstructure:"nats"`
}

// RedisKVConfig Redis KV 配置.
type RedisKVConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// NATSKVConfig NATS KV 配置.
type NATSKVConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Bucket   string `mapstructure:"bucket"   rule:"required"`
	History  uint8  `mapstructure:"history"  rule:"min=1,max=64"`
}

// GetKVType 返回当前配置的 KV 类型.
func (c *KVConfig) GetKVType() KVType {
	return c.Type
}

// setDefaults 设置 KV 配置的默认值.
func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.type", DefaultKVType)
	v.SetDefault("kv.prefix", DefaultKVPrefix)

	// Redis 默认值
	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.password", "")
	v.SetDefault("kv.redis.db", 0)

	// NATS 默认值
	v.SetDefault("kv.nats.url", "nats://localhost:4222")
	v.SetDefault("kv.nats.user", "")
	v.SetDefault("kv.nats.password", "")
	v.SetDefault("kv.nats.bucket", DefaultKVNATSBucket)
	v.SetDefault("kv.nats.history", DefaultKVNATSHistory)
}
