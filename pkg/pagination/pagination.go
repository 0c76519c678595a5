// Package pagination 提供分页参数、分页结果以及惰性的分页迭代器.
package pagination

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPagination 分页参数非法（page_size 为 0 或超过上限）.
	ErrInvalidPagination = errors.New("invalid pagination")
	// ErrPageDoesNotExist 请求的页超出范围.
	ErrPageDoesNotExist = errors.New("page does not exist")
)

// Params 分页请求参数. PageID 为空表示最后一页.
type Params struct {
	PageID   *uint64 `form:"page_id"   json:"page_id,omitempty"`
	PageSize uint64  `form:"page_size" json:"page_size"`
}

// Limits 分页限制，通常来自 configs.PaginationConfig.
type Limits struct {
	MaxPageSize     uint64
	DefaultPageSize uint64
}

// At 构造指定页的参数.
func At(pageID, pageSize uint64) Params {
	return Params{PageID: &pageID, PageSize: pageSize}
}

// WithDefaults 当 PageSize 未设置时使用默认值.
func (p Params) WithDefaults(l Limits) Params {
	if p.PageSize == 0 {
		p.PageSize = l.DefaultPageSize
	}

	return p
}

// Check 校验页大小.
func (p Params) Check(l Limits) error {
	if p.PageSize == 0 || (l.MaxPageSize > 0 && p.PageSize > l.MaxPageSize) {
		return fmt.Errorf("%w: page_size must be in [1, %d]", ErrInvalidPagination, l.MaxPageSize)
	}

	return nil
}

// PageCount 按页大小计算总页数.
func PageCount(total, pageSize uint64) uint64 {
	if pageSize == 0 {
		return 0
	}

	return (total + pageSize - 1) / pageSize
}

// Resolve 返回 limit、offset 与实际页号.
// 显式页号不小于页数时返回 ErrPageDoesNotExist，空结果集的第 0 页也一样；
// 未指定页号时返回最后一页，空结果集返回空的第 0 页.
func (p Params) Resolve(total uint64) (limit, offset, pageID uint64, err error) {
	if p.PageSize == 0 {
		return 0, 0, 0, ErrInvalidPagination
	}

	count := PageCount(total, p.PageSize)

	switch {
	case p.PageID == nil && count == 0:
		pageID = 0
	case p.PageID == nil:
		pageID = count - 1
	case *p.PageID >= count:
		return 0, 0, 0, ErrPageDoesNotExist
	default:
		pageID = *p.PageID
	}

	return p.PageSize, pageID * p.PageSize, pageID, nil
}

// Page 一页结果.
type Page[T any] struct {
	Items          []T    `json:"items"`
	PageID         uint64 `json:"page_id"`
	PageSize       uint64 `json:"page_size"`
	PageCount      uint64 `json:"page_count"`
	TotalItemCount uint64 `json:"total_item_count"`
}

// Map 转换页内元素，保留分页信息.
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, f(it))
	}

	return Page[U]{
		Items:          items,
		PageID:         p.PageID,
		PageSize:       p.PageSize,
		PageCount:      p.PageCount,
		TotalItemCount: p.TotalItemCount,
	}
}
