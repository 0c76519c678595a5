// Package configs 管理应用程序配置，包括数据库、存储、上传与清理任务的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// 组件不直接读取全局配置，由 cmd/app 层取出对应子配置后传入构造函数.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := configs.GetConfig()
//	fmt.Println(cfg.Server.Port, cfg.Upload.Storage.BaseURL)
package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/uploadvault/pkg/rule"
)

// EnvPrefix 环境变量前缀，例如 UPLOADVAULT_SERVER_PORT.
const EnvPrefix = "UPLOADVAULT"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // 服务器配置
		DB             DBConfig             `mapstructure:"db"`              // 数据库配置
		S3             S3Config             `mapstructure:"s3"`              // 对象存储配置
		KV             KVConfig             `mapstructure:"kv"`              // 键值存储配置
		MQ             MQConfig             `mapstructure:"mq"`              // 消息队列配置
		Log            LogConfig            `mapstructure:"log"`             // 日志配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // 监控配置
		Tracing        TracingConfig        `mapstructure:"tracing"`         // 追踪配置
		Auth           AuthConfig           `mapstructure:"auth"`            // 认证配置
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // 限流配置
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // 熔断配置
		Events         EventsConfig         `mapstructure:"events"`          // 事件开关
		Upload         UploadConfig         `mapstructure:"upload"`          // 上传配置
		Pagination     PaginationConfig     `mapstructure:"pagination"`      // 分页配置
		Sweeper        SweeperConfig        `mapstructure:"sweeper"`         // 清理任务配置
		Reconciler     ReconcilerConfig     `mapstructure:"reconciler"`      // 巡检任务配置
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 可以是文件或目录；目录下没有配置文件时只使用默认值与环境变量.
func InitConfig(path string) error {
	v, err := Load(path)
	if err != nil {
		return err
	}

	appViper = v

	if err := v.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&globalConfig); err != nil {
		return err
	}

	reloadConfigs(v, globalConfig.Server.ReloadConfig)

	return nil
}

// Load 构建 viper 实例并读取配置文件，不修改全局状态.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	setAllDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = "."
	}

	found := false

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，Viper 会根据扩展名识别类型
		v.SetConfigFile(path)

		found = true
	} else {
		for _, dir := range []string{path, filepath.Join(path, "configs")} {
			for _, ext := range []string{"yaml", "yml", "json", "toml", "env", "dotenv"} {
				cfg := filepath.Join(dir, "config."+ext)
				if _, err := os.Stat(cfg); err == nil {
					v.SetConfigFile(cfg)

					found = true

					break
				}
			}

			if found {
				break
			}
		}
	}

	if found {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

// Decode 从 viper 实例解析并校验配置.
func Decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 按 rule 标签校验配置.
func Validate(cfg *AppConfig) error {
	if err := rule.ValidateStruct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var cfg AppConfig

	cfg.Server.setDefaults(v)
	cfg.DB.setDefaults(v)
	cfg.S3.setDefaults(v)
	cfg.KV.setDefaults(v)
	cfg.MQ.setDefaults(v)
	cfg.Log.setDefaults(v)
	cfg.Metrics.setDefaults(v)
	cfg.Tracing.setDefaults(v)
	cfg.Auth.setDefaults(v)
	cfg.RateLimit.setDefaults(v)
	cfg.CircuitBreaker.setDefaults(v)
	cfg.Events.setDefaults(v)
	cfg.Upload.setDefaults(v)
	cfg.Pagination.setDefaults(v)
	cfg.Sweeper.setDefaults(v)
	cfg.Reconciler.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload || v.ConfigFileUsed() == "" {
		return
	}
	// 启用配置热重载，只替换校验通过的配置
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Fprintln(os.Stderr, "Config file changed:", e.Name)

		next, err := Decode(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)
			return
		}

		globalConfig = *next
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回全局 Viper 实例.
func GetViper() *viper.Viper {
	return appViper
}
