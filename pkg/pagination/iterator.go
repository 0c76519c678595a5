package pagination

import (
	"context"
	"errors"
)

// Fetcher 按分页参数取回一页.
type Fetcher[T any] func(ctx context.Context, params Params) (Page[T], error)

// Iterator 从第 0 页开始惰性地逐页取数，只能遍历一次.
//
// 当下一页号达到最近一次返回的 PageCount，或取数返回 ErrPageDoesNotExist 时正常结束；
// 后者用于处理遍历过程中页数缩小的情况（已处理的记录离开了结果集）.
// 其他错误会中止遍历，通过 Err 返回.
//
//	it := pagination.NewIterator(ctx, 100, fetch)
//	for it.Next() {
//		page := it.Page()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any] struct {
	ctx       context.Context
	fetch     Fetcher[T]
	pageSize  uint64
	next      uint64
	pageCount uint64
	started   bool
	done      bool
	page      Page[T]
	err       error
}

// NewIterator 创建迭代器.
func NewIterator[T any](ctx context.Context, pageSize uint64, fetch Fetcher[T]) *Iterator[T] {
	return &Iterator[T]{ctx: ctx, fetch: fetch, pageSize: pageSize}
}

// Next 取下一页，没有更多页或出错时返回 false.
func (it *Iterator[T]) Next() bool {
	if it.done {
		return false
	}

	if it.started && it.next >= it.pageCount {
		it.finish(nil)
		return false
	}

	if err := it.ctx.Err(); err != nil {
		it.finish(err)
		return false
	}

	page, err := it.fetch(it.ctx, At(it.next, it.pageSize))

	switch {
	case errors.Is(err, ErrPageDoesNotExist):
		it.finish(nil)
		return false
	case err != nil:
		it.finish(err)
		return false
	}

	it.started = true
	it.page = page
	it.pageCount = page.PageCount
	it.next++

	return true
}

// Page 返回当前页.
func (it *Iterator[T]) Page() Page[T] { return it.page }

// Err 返回中止遍历的错误.
func (it *Iterator[T]) Err() error { return it.err }

func (it *Iterator[T]) finish(err error) {
	it.done = true
	it.err = err
	it.page = Page[T]{}
}
