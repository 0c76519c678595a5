// Package blob 管理上传文件的字节存储.
//
// 每个上传先写入私有目录中的预分配文件，分片可以按任意顺序写入任意偏移；
// 公开时复制到对外可见的位置（本地公开目录或 S3 桶），私有副本保留，
// 直到 Unpublish 同时移除两者.
//
// 后端是一个封闭集合（filesystem、s3），通过 RegisterFactory 按类型注册.
// 所有 I/O 错误都包装为 types.ErrStorageIO，调用方必须在存储操作成功后才能提交状态迁移.
package blob

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/yeisme/uploadvault/pkg/configs"
	s3c "github.com/yeisme/uploadvault/pkg/internal/storage/s3"
)

// Ref 定位一个上传的文件.
type Ref struct {
	ID        int64
	Extension string
}

// Filename 返回 16 位零填充的十六进制 ID，扩展名非空时追加 .ext.
func (r Ref) Filename() string {
	name := fmt.Sprintf("%016x", r.ID)
	if r.Extension != "" {
		name += "." + r.Extension
	}

	return name
}

// PublishInfo 公开后的文件信息.
type PublishInfo struct {
	Size     int64
	Checksum string // xxh64，16 位十六进制
}

// Backend 上传文件存储后端.
type Backend interface {
	// Type 返回后端类型.
	Type() configs.StorageType
	// Allocate 创建私有文件并扩展到 size 字节.
	Allocate(ctx context.Context, ref Ref, size int64) error
	// Write 从 offset 开始把 r 的内容写入私有文件，返回写入的字节数.
	Write(ctx context.Context, ref Ref, r io.Reader, offset int64) (int64, error)
	// Publish 把私有文件复制到公开位置，私有文件保留.
	Publish(ctx context.Context, ref Ref) (PublishInfo, error)
	// Unpublish 依次移除公开与私有副本，文件不存在视为成功.
	Unpublish(ctx context.Context, ref Ref) error
	// Published 报告公开副本是否存在.
	Published(ctx context.Context, ref Ref) (bool, error)
	// PublicURL 返回公开访问地址.
	PublicURL(ref Ref) string
}

// Options 后端可能用到的外部依赖.
type Options struct {
	S3 *s3c.Client
}

// Factory 创建后端.
type Factory func(ctx context.Context, cfg configs.UploadStorageConfig, opts Options) (Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[configs.StorageType]Factory{}
)

// RegisterFactory 注册后端工厂.
func RegisterFactory(t configs.StorageType, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[t] = f
}

// GetRegisteredTypes 返回已注册的后端类型.
func GetRegisteredTypes() []configs.StorageType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	out := make([]configs.StorageType, 0, len(factories))
	for t := range factories {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// New 按配置类型创建后端.
func New(ctx context.Context, cfg configs.UploadStorageConfig, opts Options) (Backend, error) {
	factoriesMu.RLock()
	f, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	return f(ctx, cfg, opts)
}
