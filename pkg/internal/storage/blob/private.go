package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yeisme/uploadvault/pkg/internal/types"
)

const dirPerm = 0o755

// privateDir 私有目录中的预分配文件，两个后端共用.
type privateDir struct {
	root string
}

func newPrivateDir(root string) (privateDir, error) {
	if root == "" {
		return privateDir{}, errors.New("private path is empty")
	}

	if err := os.MkdirAll(root, dirPerm); err != nil {
		return privateDir{}, fmt.Errorf("create private dir: %w", err)
	}

	return privateDir{root: root}, nil
}

func (p privateDir) path(ref Ref) string {
	return filepath.Join(p.root, ref.Filename())
}

func (p privateDir) allocate(ctx context.Context, ref Ref, size int64) error {
	if err := ctx.Err(); err != nil {
		return types.StorageIO("allocate", err)
	}

	f, err := os.OpenFile(p.path(ref), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return types.StorageIO("allocate", err)
	}

	// 一次扩展到声明大小，之后的分片写入无需再分配
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return types.StorageIO("allocate", err)
	}

	if err := f.Close(); err != nil {
		return types.StorageIO("allocate", err)
	}

	return nil
}

func (p privateDir) write(ctx context.Context, ref Ref, r io.Reader, offset int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, types.StorageIO("write", err)
	}

	f, err := os.OpenFile(p.path(ref), os.O_WRONLY, 0)
	if err != nil {
		return 0, types.StorageIO("write", err)
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		_ = f.Close()
		return 0, types.StorageIO("write", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, types.StorageIO("write", err)
	}

	if err := f.Close(); err != nil {
		return n, types.StorageIO("write", err)
	}

	return n, nil
}

func (p privateDir) open(ref Ref) (*os.File, int64, error) {
	f, err := os.Open(p.path(ref))
	if err != nil {
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}

	return f, info.Size(), nil
}

func (p privateDir) remove(ref Ref) error {
	return removeIfExists(p.path(ref))
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}
