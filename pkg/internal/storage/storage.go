// Package storage 聚合服务用到的存储资源：数据库、键值存储、消息队列、S3 与上传文件后端.
//
// Example:
//
//	mgr, err := storage.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer mgr.Close()
//
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/storage/blob"
	dbc "github.com/yeisme/uploadvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/uploadvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/uploadvault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/uploadvault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/uploadvault/pkg/log"
)

// Manager 聚合所有存储资源. S3 只在上传后端为 s3 时连接.
type Manager struct {
	DB   *dbc.Client
	S3   *s3c.Client
	KV   *kvc.Client
	MQ   *mqc.Client
	Blob blob.Backend
}

// New 按配置初始化全部存储资源并迁移表结构，失败时关闭已打开的资源.
func New(ctx context.Context, cfg *configs.AppConfig) (m *Manager, err error) {
	m = &Manager{}

	defer func() {
		if err != nil {
			_ = m.Close()
			m = nil
		}
	}()

	if m.DB, err = dbc.New(ctx, cfg.DB, dbc.WithMetrics(cfg.Metrics.Enabled && cfg.Metrics.DBMetrics)); err != nil {
		return m, err
	}

	if err = m.DB.Migrate(ctx); err != nil {
		return m, err
	}

	if cfg.Upload.Storage.Type == configs.StorageS3 {
		bucket := cfg.Upload.Storage.Bucket
		if m.S3, err = s3c.New(ctx, cfg.S3, bucket); err != nil {
			return m, fmt.Errorf("init s3: %w", err)
		}
	}

	if m.Blob, err = blob.New(ctx, cfg.Upload.Storage, blob.Options{S3: m.S3}); err != nil {
		return m, fmt.Errorf("init upload storage: %w", err)
	}

	if m.KV, err = kvc.NewKVClient(ctx, cfg.KV); err != nil {
		return m, fmt.Errorf("init kv: %w", err)
	}

	if m.MQ, err = mqc.New(ctx, cfg.MQ, mqc.WithMetrics(cfg.Metrics.Enabled)); err != nil {
		return m, err
	}

	nlog.Logger().Info().
		Str("db", cfg.DB.GetDBType()).
		Str("storage", string(m.Blob.Type())).
		Str("kv", string(m.KV.Type())).
		Str("mq", string(m.MQ.Type())).
		Msg("storage manager initialized")

	return m, nil
}

// Close 关闭全部已打开的资源.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}

	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.S3 != nil {
		errs = append(errs, m.S3.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}

// GetS3Client 获取 S3 客户端，未启用时为 nil.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetBlob 获取上传文件后端.
func (m *Manager) GetBlob() blob.Backend {
	return m.Blob
}
