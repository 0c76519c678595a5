// Package ledger 持久化上传记录，所有状态修改都经过状态机检查.
//
// 读取当前状态、检查迁移、写入新状态在同一个数据库事务中完成；
// 支持行锁的数据库使用 SELECT ... FOR UPDATE，写入时再以观察到的旧状态作为条件，
// 两个并发调用者不会同时完成互斥的迁移. 这是上传子系统唯一的并发控制.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/uploadvault/pkg/cache"
	"github.com/yeisme/uploadvault/pkg/internal/model"
	dbc "github.com/yeisme/uploadvault/pkg/internal/storage/db"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	"github.com/yeisme/uploadvault/pkg/pagination"
)

// DefaultAuthorTTL 帖子作者缓存时间.
const DefaultAuthorTTL = 10 * time.Minute

// Record 上传记录及其所属帖子的作者.
type Record struct {
	model.Upload
	Author string
}

// Ledger 上传记录账本.
type Ledger struct {
	db        *dbc.Client
	authors   *cache.Cache
	authorTTL time.Duration
	now       func() time.Time
}

// Option 调整账本行为.
type Option func(*Ledger)

// WithAuthorCache 通过缓存读取帖子作者.
func WithAuthorCache(c *cache.Cache, ttl time.Duration) Option {
	return func(l *Ledger) {
		l.authors = c
		if ttl > 0 {
			l.authorTTL = ttl
		}
	}
}

// WithClock 替换时钟，测试用.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New 创建账本.
func New(client *dbc.Client, opts ...Option) *Ledger {
	l := &Ledger{
		db:        client,
		authorTTL: DefaultAuthorTTL,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// CreatePost 新建帖子，供命令行和测试准备数据.
func (l *Ledger) CreatePost(ctx context.Context, author, title string) (*model.Post, error) {
	post := &model.Post{AuthorUsername: author, Title: title, CreatedAt: l.now().UTC()}

	if err := l.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, types.Persistence("create post", err)
	}

	return post, nil
}

// Create 为帖子新建一条 Initialized 状态的上传记录.
// 帖子不存在返回 ErrNotFound，请求者不是作者返回 ErrAccessDenied.
func (l *Ledger) Create(ctx context.Context, postID int64, extension string, size int64, requester string) (*model.Upload, error) {
	author, err := l.PostAuthor(ctx, postID)
	if err != nil {
		return nil, err
	}

	if author != requester {
		return nil, fmt.Errorf("%w: post %d belongs to another user", types.ErrAccessDenied, postID)
	}

	u := &model.Upload{
		PostID:       postID,
		Extension:    extension,
		Size:         size,
		Status:       model.StatusInitialized,
		CreationDate: l.now().UTC(),
	}

	if err := l.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, types.Persistence("create upload", err)
	}

	return u, nil
}

// Get 读取上传记录和作者.
func (l *Ledger) Get(ctx context.Context, id int64) (*Record, error) {
	var u model.Upload

	err := l.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("upload %d: %w", id, types.ErrNotFound)
	}

	if err != nil {
		return nil, types.Persistence("get upload", err)
	}

	author, err := l.PostAuthor(ctx, u.PostID)
	if err != nil {
		return nil, err
	}

	return &Record{Upload: u, Author: author}, nil
}

// PostAuthor 返回帖子作者，帖子创建后作者不变，结果可以缓存.
func (l *Ledger) PostAuthor(ctx context.Context, postID int64) (string, error) {
	load := func(ctx context.Context) (string, error) {
		var post model.Post

		err := l.db.WithContext(ctx).Select("id", "author_username").First(&post, postID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("post %d: %w", postID, types.ErrNotFound)
		}

		if err != nil {
			return "", types.Persistence("get post", err)
		}

		return post.AuthorUsername, nil
	}

	if l.authors == nil {
		return load(ctx)
	}

	return cache.GetOrSet(ctx, l.authors, fmt.Sprintf("post:author:%d", postID), load, l.authorTTL)
}

// TrySetStatus 在事务中检查并执行迁移，返回迁移是否发生.
// 迁移被状态机拒绝或记录不存在都不是错误.
func (l *Ledger) TrySetStatus(ctx context.Context, id int64, target model.UploadStatus) (bool, error) {
	_, moved, err := l.transition(ctx, id, target, nil)
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}

	return moved, err
}

// TrySetStatusChecked 与 TrySetStatus 相同，但记录不存在时返回 ErrNotFound，
// 迁移成功时返回迁移前的完整记录，调用方据此执行对应的文件操作.
func (l *Ledger) TrySetStatusChecked(ctx context.Context, id int64, target model.UploadStatus) (*model.Upload, bool, error) {
	return l.transition(ctx, id, target, nil)
}

// CompletePublish 执行 Publishing -> Published 并写入校验和.
func (l *Ledger) CompletePublish(ctx context.Context, id int64, checksum string) (bool, error) {
	_, moved, err := l.transition(ctx, id, model.StatusPublished, map[string]any{"checksum": checksum})
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}

	return moved, err
}

func (l *Ledger) transition(ctx context.Context, id int64, target model.UploadStatus, extra map[string]any) (*model.Upload, bool, error) {
	var (
		prev  model.Upload
		moved bool
	)

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if l.db.SupportsRowLocks() {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		if err := q.First(&prev, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("upload %d: %w", id, types.ErrNotFound)
			}

			return types.Persistence("lock upload", err)
		}

		if !model.CanTransitionTo(prev.Status, target) {
			return nil
		}

		updates := map[string]any{"status": target}
		for k, v := range extra {
			updates[k] = v
		}

		// Hidden 是终态，清理任务留下的认领一并清除.
		if target == model.StatusHidden {
			updates["claim_id"] = gorm.Expr("NULL")
			updates["claimed_at"] = gorm.Expr("NULL")
		}

		res := tx.Model(&model.Upload{}).
			Where("id = ? AND status = ?", id, prev.Status).
			Updates(updates)
		if res.Error != nil {
			return types.Persistence("update status", res.Error)
		}

		moved = res.RowsAffected == 1

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !moved {
		return nil, false, nil
	}

	return &prev, true, nil
}

// ListPublished 按 id 升序分页列出帖子下已公开的上传.
// 未指定页号时返回最后一页.
func (l *Ledger) ListPublished(ctx context.Context, postID int64, params pagination.Params) (pagination.Page[model.Upload], error) {
	var total int64

	base := l.db.WithContext(ctx).Model(&model.Upload{}).
		Where("post_id = ? AND status = ?", postID, model.StatusPublished)

	if err := base.Count(&total).Error; err != nil {
		return pagination.Page[model.Upload]{}, types.Persistence("count uploads", err)
	}

	limit, offset, pageID, err := params.Resolve(uint64(total))
	if err != nil {
		return pagination.Page[model.Upload]{}, err
	}

	var items []model.Upload

	err = l.db.WithContext(ctx).
		Where("post_id = ? AND status = ?", postID, model.StatusPublished).
		Order("id ASC").
		Limit(int(limit)).
		Offset(int(offset)).
		Find(&items).Error
	if err != nil {
		return pagination.Page[model.Upload]{}, types.Persistence("list uploads", err)
	}

	return pagination.Page[model.Upload]{
		Items:          items,
		PageID:         pageID,
		PageSize:       limit,
		PageCount:      pagination.PageCount(uint64(total), limit),
		TotalItemCount: uint64(total),
	}, nil
}
