package ledger

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeisme/uploadvault/pkg/internal/model"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	"github.com/yeisme/uploadvault/pkg/pagination"
)

// ClaimTimeout 认领超过该时长仍停留在 Hiding 的记录可以被重新认领.
const ClaimTimeout = 10 * time.Minute

// 后台任务按 id 窗口分页：第 p 页覆盖 [p*size, (p+1)*size).
// 页数由当前最大 id 决定，处理过的记录离开候选集后窗口不会移动.
// 窗口上界按闭区间 last 计算并截断到 math.MaxInt64，超大的 pageSize 等价于一个覆盖全表的窗口.

// WindowCount 返回按 pageSize 划分 id 窗口后的页数，空表为 0.
func (l *Ledger) WindowCount(ctx context.Context, pageSize uint64) (uint64, error) {
	if pageSize == 0 {
		return 0, pagination.ErrInvalidPagination
	}

	var maxID sql.NullInt64

	row := l.db.WithContext(ctx).Model(&model.Upload{}).Select("MAX(id)").Row()
	if err := row.Scan(&maxID); err != nil {
		return 0, types.Persistence("max upload id", err)
	}

	if !maxID.Valid || maxID.Int64 < 0 {
		return 0, nil
	}

	return uint64(maxID.Int64)/pageSize + 1, nil
}

// resolveWindow 解析窗口页号，返回 [lo, last]、页号与页数.
func (l *Ledger) resolveWindow(ctx context.Context, params pagination.Params) (lo, last int64, pageID, count uint64, err error) {
	count, err = l.WindowCount(ctx, params.PageSize)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	switch {
	case params.PageID == nil && count == 0:
		pageID = 0
	case params.PageID == nil:
		pageID = count - 1
	case *params.PageID >= count:
		return 0, 0, 0, 0, pagination.ErrPageDoesNotExist
	default:
		pageID = *params.PageID
	}

	// pageID < count 时 pageID*pageSize 不超过最大 id，不会溢出.
	lo = int64(pageID * params.PageSize)

	last = math.MaxInt64
	if span := params.PageSize - 1; span < uint64(math.MaxInt64-lo) {
		last = lo + int64(span)
	}

	return lo, last, pageID, count, nil
}

// PublishedWindow 返回 id 窗口内的 Published 记录，供巡检任务遍历.
func (l *Ledger) PublishedWindow(ctx context.Context, params pagination.Params) (pagination.Page[model.Upload], error) {
	lo, last, pageID, count, err := l.resolveWindow(ctx, params)
	if err != nil {
		return pagination.Page[model.Upload]{}, err
	}

	var items []model.Upload

	err = l.db.WithContext(ctx).
		Where("id >= ? AND id <= ? AND status = ?", lo, last, model.StatusPublished).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return pagination.Page[model.Upload]{}, types.Persistence("list published window", err)
	}

	return pagination.Page[model.Upload]{
		Items:          items,
		PageID:         pageID,
		PageSize:       params.PageSize,
		PageCount:      count,
		TotalItemCount: uint64(len(items)),
	}, nil
}

// ClaimStale 用一条 UPDATE 认领 id 窗口内的过期候选并标记为 Hiding，再按认领号取回.
//
// 候选条件：状态可被回收，并且创建时间早于 cutoff 或者已处于 Hiding.
// 已处于 Hiding 且刚被其他清理任务认领的记录会被跳过，直到认领超时.
// 返回的每条记录的 ClaimID 都相同.
func (l *Ledger) ClaimStale(ctx context.Context, params pagination.Params, cutoff time.Time) (pagination.Page[model.Upload], error) {
	lo, last, pageID, count, err := l.resolveWindow(ctx, params)
	if err != nil {
		return pagination.Page[model.Upload]{}, err
	}

	now := l.now().UTC()
	claimID := uuid.NewString()

	res := l.db.WithContext(ctx).Model(&model.Upload{}).
		Where("id >= ? AND id <= ?", lo, last).
		Where("status IN ?", model.ReclaimableStatuses()).
		Where(
			l.db.Where("status <> ? AND creation_date < ?", model.StatusHiding, cutoff.UTC()).
				Or("status = ? AND (claimed_at IS NULL OR claimed_at < ?)", model.StatusHiding, now.Add(-ClaimTimeout)),
		).
		Updates(map[string]any{
			"status":     model.StatusHiding,
			"claim_id":   claimID,
			"claimed_at": now,
		})
	if res.Error != nil {
		return pagination.Page[model.Upload]{}, types.Persistence("claim stale uploads", res.Error)
	}

	page := pagination.Page[model.Upload]{PageID: pageID, PageSize: params.PageSize, PageCount: count}

	if res.RowsAffected == 0 {
		return page, nil
	}

	if err := l.db.WithContext(ctx).Where("claim_id = ?", claimID).Order("id ASC").Find(&page.Items).Error; err != nil {
		return page, types.Persistence("load claimed uploads", err)
	}

	page.TotalItemCount = uint64(len(page.Items))

	return page, nil
}

// ReleaseClaim 释放认领，记录保持 Hiding，下一轮清理会重新认领.
func (l *Ledger) ReleaseClaim(ctx context.Context, claimID string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	err := l.db.WithContext(ctx).Model(&model.Upload{}).
		Where("id IN ? AND claim_id = ?", ids, claimID).
		Updates(map[string]any{"claim_id": gorm.Expr("NULL"), "claimed_at": gorm.Expr("NULL")}).Error
	if err != nil {
		return types.Persistence("release claim", err)
	}

	return nil
}

// MarkHidden 批量执行 Hiding -> Hidden，只作用于仍由 claimID 持有的记录，返回更新条数.
func (l *Ledger) MarkHidden(ctx context.Context, claimID string, ids []int64) (int64, error) {
	if len(ids) == 0 || !model.CanTransitionTo(model.StatusHiding, model.StatusHidden) {
		return 0, nil
	}

	res := l.db.WithContext(ctx).Model(&model.Upload{}).
		Where("id IN ? AND status = ? AND claim_id = ?", ids, model.StatusHiding, claimID).
		Updates(map[string]any{
			"status":     model.StatusHidden,
			"claim_id":   gorm.Expr("NULL"),
			"claimed_at": gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return 0, types.Persistence("mark hidden", res.Error)
	}

	return res.RowsAffected, nil
}
