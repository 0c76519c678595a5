// Package dbtest 为测试提供已迁移的临时 SQLite 数据库.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/storage/db"
)

// New 在 t.TempDir 中创建 SQLite 数据库并完成迁移，测试结束时关闭.
func New(t testing.TB) *db.Client {
	t.Helper()

	cfg := configs.DBConfig{
		Type:         configs.SQLite,
		Database:     filepath.Join(t.TempDir(), "uploadvault.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}

	client, err := db.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	if err := client.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return client
}
