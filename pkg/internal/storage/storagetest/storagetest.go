// Package storagetest 为测试提供本地组合的存储：SQLite、文件系统、内存 KV、gochannel.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/storage"
)

// Config 返回指向 t.TempDir 的完整配置，调用方可在 New 之前修改.
func Config(t testing.TB) *configs.AppConfig {
	t.Helper()

	root := t.TempDir()

	return &configs.AppConfig{
		Server: configs.ServerConfig{Host: "127.0.0.1", Port: 8080, Timeout: 30, ShutdownTimeout: 5},
		DB: configs.DBConfig{
			Type:         configs.SQLite,
			Database:     filepath.Join(root, "uploadvault"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			LogLevel:     "silent",
		},
		KV: configs.KVConfig{Type: configs.KVTypeMemory, Prefix: configs.DefaultKVPrefix},
		MQ: configs.MQConfig{Type: configs.MQTypeGoChannel},
		Auth: configs.AuthConfig{
			Enabled:       true,
			DevAllowQuery: true,
			RoleHeader:    "X-Role",
			SkipPaths:     []string{"/api/health", "/api/posts", configs.DefaultMediaRoute},
			DefaultRole:   configs.RoleUploader,
		},
		Upload: configs.UploadConfig{
			MaxFileSize: 1 << 20,
			Storage: configs.UploadStorageConfig{
				Type:        configs.StorageFileSystem,
				PrivatePath: filepath.Join(root, "private"),
				PublicPath:  filepath.Join(root, "public"),
				BaseURL:     "http://localhost:8080/media/",
				MediaRoute:  configs.DefaultMediaRoute,
			},
		},
		Pagination: configs.PaginationConfig{MaxPageSize: 10, DefaultPageSize: 2},
		Sweeper: configs.SweeperConfig{
			Enabled:  true,
			Cron:     "0 0 1 1 *",
			PageSize: 10,
			MaxAge:   time.Hour,
		},
		Reconciler: configs.ReconcilerConfig{Enabled: true, Cron: "0 0 1 1 *", PageSize: 10},
	}
}

// New 按 cfg 初始化存储，测试结束时关闭.
func New(t testing.TB, cfg *configs.AppConfig) *storage.Manager {
	t.Helper()

	mgr, err := storage.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	t.Cleanup(func() { _ = mgr.Close() })

	return mgr
}
