// Package types 定义 HTTP 请求与响应结构以及错误分类.
package types

import (
	"time"

	"github.com/yeisme/uploadvault/pkg/internal/model"
)

// CreateUploadRequest 创建上传请求.
type CreateUploadRequest struct {
	PostID    int64  `json:"post_id"   rule:"required,gt=0"`
	Extension string `json:"extension" rule:"omitempty,max=32,upload_ext"`
	Size      int64  `json:"size"`
}

// CreateUploadResponse 创建上传响应.
type CreateUploadResponse struct {
	ID int64 `json:"id"`
}

// EmptyResponse 分片写入、发布、撤下的空响应.
type EmptyResponse struct{}

// UploadInfo 上传记录详情.
type UploadInfo struct {
	ID           int64              `json:"id"`
	PostID       int64              `json:"post_id"`
	Extension    string             `json:"extension,omitempty"`
	Size         int64              `json:"size"`
	Status       model.UploadStatus `json:"status"`
	Checksum     string             `json:"checksum,omitempty"`
	PublicURL    string             `json:"public_url,omitempty"`
	CreationDate time.Time          `json:"creation_date"`
}

// ErrorResponse 错误响应.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SweepResult 一次清理的统计.
type SweepResult struct {
	Pages    int           `json:"pages"`
	Claimed  int           `json:"claimed"`
	Hidden   int           `json:"hidden"`
	Failed   int           `json:"failed"`
	Errors   []string      `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ReconcileResult 一次巡检的统计.
type ReconcileResult struct {
	Checked  int           `json:"checked"`
	Missing  int           `json:"missing"`
	Errors   []string      `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}
