package configs

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StorageType 存储后端类型.
type StorageType string

const (
	StorageFileSystem StorageType = "filesystem"
	StorageS3         StorageType = "s3"
)

const (
	DefaultMaxFileSize     = 1 << 30 // 1GiB
	DefaultPrivatePath     = "data/private"
	DefaultPublicPath      = "data/public"
	DefaultMediaRoute      = "/media"
	DefaultBaseURL         = "http://localhost:8080/media/"
	DefaultMaxPageSize     = 100
	DefaultPageSize        = 20
	DefaultSweepCron       = "*/10 * * * *"
	DefaultSweepPageSize   = 100
	DefaultSweepMaxAge     = 24 * time.Hour
	DefaultReconcileCron   = "30 3 * * *"
	DefaultReconcilePageSz = 200
)

// UploadConfig 上传配置.
type UploadConfig struct {
	MaxFileSize int64               `mapstructure:"max_file_size" rule:"gt=0"`
	Storage     UploadStorageConfig `mapstructure:"storage"`
}

// UploadStorageConfig 上传文件的存储位置.
// filesystem 后端直接从 PublicPath 提供静态文件；s3 后端把公开文件放入 Bucket.
type UploadStorageConfig struct {
	Type        StorageType `mapstructure:"type"         rule:"oneof=filesystem s3"`
	PrivatePath string      `mapstructure:"private_path" rule:"required"`
	PublicPath  string      `mapstructure:"public_path"`
	BaseURL     string      `mapstructure:"base_url"     rule:"required"`
	MediaRoute  string      `mapstructure:"media_route"`
	Bucket      string      `mapstructure:"bucket"`
}

// PublicBaseURL 返回以 / 结尾的公开访问前缀.
func (c *UploadStorageConfig) PublicBaseURL() string {
	if strings.HasSuffix(c.BaseURL, "/") {
		return c.BaseURL
	}

	return c.BaseURL + "/"
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.max_file_size", DefaultMaxFileSize)
	v.SetDefault("upload.storage.type", StorageFileSystem)
	v.SetDefault("upload.storage.private_path", DefaultPrivatePath)
	v.SetDefault("upload.storage.public_path", DefaultPublicPath)
	v.SetDefault("upload.storage.base_url", DefaultBaseURL)
	v.SetDefault("upload.storage.media_route", DefaultMediaRoute)
	v.SetDefault("upload.storage.bucket", DefaultS3BucketName)
}

// PaginationConfig 分页限制.
type PaginationConfig struct {
	MaxPageSize     uint64 `mapstructure:"max_page_size"     rule:"gt=0"`
	DefaultPageSize uint64 `mapstructure:"default_page_size" rule:"gt=0,ltefield=MaxPageSize"`
}

func (c *PaginationConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("pagination.max_page_size", DefaultMaxPageSize)
	v.SetDefault("pagination.default_page_size", DefaultPageSize)
}

// SweeperConfig 过期上传清理任务配置.
type SweeperConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Cron     string        `mapstructure:"cron"`
	PageSize uint64        `mapstructure:"page_size" rule:"gt=0"`
	MaxAge   time.Duration `mapstructure:"max_age"   rule:"gte=0"`
}

func (c *SweeperConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.cron", DefaultSweepCron)
	v.SetDefault("sweeper.page_size", DefaultSweepPageSize)
	v.SetDefault("sweeper.max_age", DefaultSweepMaxAge)
}

// ReconcilerConfig 已公开文件巡检任务配置.
type ReconcilerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Cron     string `mapstructure:"cron"`
	PageSize uint64 `mapstructure:"page_size" rule:"gt=0"`
}

func (c *ReconcilerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.cron", DefaultReconcileCron)
	v.SetDefault("reconciler.page_size", DefaultReconcilePageSz)
}
