package types

import (
	"errors"
	"fmt"

	"github.com/yeisme/uploadvault/pkg/internal/model"
)

// 错误分类，调用方通过 errors.Is 判断.
var (
	ErrNotFound      = errors.New("does not exist")
	ErrAccessDenied  = errors.New("access denied")
	ErrStateConflict = errors.New("state conflict")
	ErrInvalidInput  = errors.New("invalid input")
	ErrStorageIO     = errors.New("storage io error")
	ErrPersistence   = errors.New("persistence error")
	ErrRevertFailed  = errors.New("status revert failed")

	ErrInvalidContentRange = fmt.Errorf("%w: invalid content range", ErrInvalidInput)
)

// StorageIO 包装存储层 I/O 错误.
func StorageIO(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageIO, op, err)
}

// Persistence 包装数据库错误.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// InvalidInput 构造带原因码的输入错误，例如 size_is_zero.
func InvalidInput(code string) error {
	return &InputError{Code: code}
}

// InputError 输入校验失败，Code 与 API 返回的错误码一致.
type InputError struct {
	Code string
}

func (e *InputError) Error() string { return "invalid input: " + e.Code }

// Is 使 InputError 匹配 ErrInvalidInput.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// StateConflictError 状态机拒绝了迁移.
type StateConflictError struct {
	ID     int64
	Target model.UploadStatus
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("upload %d cannot move to %s", e.ID, e.Target)
}

// Is 使 StateConflictError 匹配 ErrStateConflict.
func (e *StateConflictError) Is(target error) bool { return target == ErrStateConflict }

// Conflict 构造状态冲突错误.
func Conflict(id int64, target model.UploadStatus) error {
	return &StateConflictError{ID: id, Target: target}
}

// RevertError 失败后回滚状态也失败，区别于原始错误，需要人工或清理任务介入.
type RevertError struct {
	ID     int64
	Cause  error
	Revert error
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("upload %d: revert to allocated failed: %v (after: %v)", e.ID, e.Revert, e.Cause)
}

// Is 使 RevertError 匹配 ErrRevertFailed.
func (e *RevertError) Is(target error) bool { return target == ErrRevertFailed }

// Unwrap 同时暴露原始错误与回滚错误.
func (e *RevertError) Unwrap() []error { return []error{e.Cause, e.Revert} }
