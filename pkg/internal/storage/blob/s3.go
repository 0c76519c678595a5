package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/cespare/xxhash/v2"
	minio "github.com/minio/minio-go/v7"

	"github.com/yeisme/uploadvault/pkg/configs"
	s3c "github.com/yeisme/uploadvault/pkg/internal/storage/s3"
	"github.com/yeisme/uploadvault/pkg/internal/types"
)

func init() {
	RegisterFactory(configs.StorageS3, func(_ context.Context, cfg configs.UploadStorageConfig, opts Options) (Backend, error) {
		if opts.S3 == nil {
			return nil, errors.New("s3 storage requires an s3 client")
		}

		return NewS3(cfg, opts.S3)
	})
}

// S3 分片先写入本地私有目录，公开时上传到桶中，对象键为文件名.
type S3 struct {
	private privateDir
	client  *s3c.Client
	bucket  string
	baseURL string
}

// NewS3 创建 S3 后端.
func NewS3(cfg configs.UploadStorageConfig, client *s3c.Client) (*S3, error) {
	priv, err := newPrivateDir(cfg.PrivatePath)
	if err != nil {
		return nil, err
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = client.Bucket()
	}

	return &S3{private: priv, client: client, bucket: bucket, baseURL: cfg.PublicBaseURL()}, nil
}

// Type 实现 Backend.
func (b *S3) Type() configs.StorageType { return configs.StorageS3 }

// Allocate 实现 Backend.
func (b *S3) Allocate(ctx context.Context, ref Ref, size int64) error {
	return b.private.allocate(ctx, ref, size)
}

// Write 实现 Backend.
func (b *S3) Write(ctx context.Context, ref Ref, r io.Reader, offset int64) (int64, error) {
	return b.private.write(ctx, ref, r, offset)
}

// Publish 上传私有文件并在同一次读取中计算校验和.
func (b *S3) Publish(ctx context.Context, ref Ref) (PublishInfo, error) {
	src, size, err := b.private.open(ref)
	if err != nil {
		return PublishInfo{}, types.StorageIO("publish", err)
	}
	defer src.Close()

	h := xxhash.New()

	info, err := b.client.PutObject(ctx, b.bucket, ref.Filename(), io.TeeReader(src, h), size, minio.PutObjectOptions{
		ContentType: contentType(ref),
	})
	if err != nil {
		return PublishInfo{}, types.StorageIO("publish", err)
	}

	return PublishInfo{Size: info.Size, Checksum: fmt.Sprintf("%016x", h.Sum64())}, nil
}

// Unpublish 实现 Backend.
func (b *S3) Unpublish(ctx context.Context, ref Ref) error {
	err := b.client.RemoveObject(ctx, b.bucket, ref.Filename(), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return types.StorageIO("unpublish", err)
	}

	if err := b.private.remove(ref); err != nil {
		return types.StorageIO("unpublish", err)
	}

	return nil
}

// Published 实现 Backend.
func (b *S3) Published(ctx context.Context, ref Ref) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, ref.Filename(), minio.StatObjectOptions{})

	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, types.StorageIO("stat", err)
	}
}

// PublicURL 实现 Backend.
func (b *S3) PublicURL(ref Ref) string {
	return b.baseURL + ref.Filename()
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)

	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func contentType(ref Ref) string {
	if ref.Extension != "" {
		if ct := mime.TypeByExtension("." + ref.Extension); ct != "" {
			return ct
		}
	}

	return "application/octet-stream"
}
