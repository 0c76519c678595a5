package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/types"
)

func init() {
	RegisterFactory(configs.StorageFileSystem, func(_ context.Context, cfg configs.UploadStorageConfig, _ Options) (Backend, error) {
		return NewFileSystem(cfg)
	})
}

// FileSystem 把公开文件放在本地公开目录，由 HTTP 静态路由对外提供.
type FileSystem struct {
	private privateDir
	public  string
	baseURL string
}

// NewFileSystem 创建本地文件系统后端，目录不存在时自动创建.
func NewFileSystem(cfg configs.UploadStorageConfig) (*FileSystem, error) {
	priv, err := newPrivateDir(cfg.PrivatePath)
	if err != nil {
		return nil, err
	}

	if cfg.PublicPath == "" {
		return nil, errors.New("public path is empty")
	}

	if err := os.MkdirAll(cfg.PublicPath, dirPerm); err != nil {
		return nil, fmt.Errorf("create public dir: %w", err)
	}

	return &FileSystem{private: priv, public: cfg.PublicPath, baseURL: cfg.PublicBaseURL()}, nil
}

// Type 实现 Backend.
func (b *FileSystem) Type() configs.StorageType { return configs.StorageFileSystem }

// PublicDir 返回公开目录，供静态文件路由使用.
func (b *FileSystem) PublicDir() string { return b.public }

// Allocate 实现 Backend.
func (b *FileSystem) Allocate(ctx context.Context, ref Ref, size int64) error {
	return b.private.allocate(ctx, ref, size)
}

// Write 实现 Backend.
func (b *FileSystem) Write(ctx context.Context, ref Ref, r io.Reader, offset int64) (int64, error) {
	return b.private.write(ctx, ref, r, offset)
}

// Publish 先复制到公开目录中的临时文件再原子重命名，读者不会看到写了一半的文件.
func (b *FileSystem) Publish(ctx context.Context, ref Ref) (PublishInfo, error) {
	if err := ctx.Err(); err != nil {
		return PublishInfo{}, types.StorageIO("publish", err)
	}

	src, _, err := b.private.open(ref)
	if err != nil {
		return PublishInfo{}, types.StorageIO("publish", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(b.public, ".publish-*")
	if err != nil {
		return PublishInfo{}, types.StorageIO("publish", err)
	}

	h := xxhash.New()

	n, err := io.Copy(io.MultiWriter(tmp, h), src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}

	if err == nil {
		err = os.Rename(tmp.Name(), b.publicPath(ref))
	}

	if err != nil {
		_ = os.Remove(tmp.Name())
		return PublishInfo{}, types.StorageIO("publish", err)
	}

	return PublishInfo{Size: n, Checksum: fmt.Sprintf("%016x", h.Sum64())}, nil
}

// Unpublish 实现 Backend.
func (b *FileSystem) Unpublish(ctx context.Context, ref Ref) error {
	if err := ctx.Err(); err != nil {
		return types.StorageIO("unpublish", err)
	}

	if err := removeIfExists(b.publicPath(ref)); err != nil {
		return types.StorageIO("unpublish", err)
	}

	if err := b.private.remove(ref); err != nil {
		return types.StorageIO("unpublish", err)
	}

	return nil
}

// Published 实现 Backend.
func (b *FileSystem) Published(_ context.Context, ref Ref) (bool, error) {
	_, err := os.Stat(b.publicPath(ref))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, types.StorageIO("stat", err)
	}
}

// PublicURL 实现 Backend.
func (b *FileSystem) PublicURL(ref Ref) string {
	return b.baseURL + ref.Filename()
}

func (b *FileSystem) publicPath(ref Ref) string {
	return filepath.Join(b.public, ref.Filename())
}
