package service

import (
	"github.com/yeisme/uploadvault/pkg/cache"
	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/ledger"
	"github.com/yeisme/uploadvault/pkg/internal/storage"
	nlog "github.com/yeisme/uploadvault/pkg/log"
	"github.com/yeisme/uploadvault/pkg/queue"
)

// Set 汇总 HTTP 层与定时任务共用的服务实例.
type Set struct {
	Ledger     *ledger.Ledger
	Uploads    *UploadService
	Sweeper    *Sweeper
	Reconciler *Reconciler
}

// NewSet 基于已初始化的存储构建服务. KV 与 MQ 可以为空，此时不缓存作者、不发布事件.
func NewSet(mgr *storage.Manager, cfg *configs.AppConfig) *Set {
	var ledgerOpts []ledger.Option
	if mgr.KV != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithAuthorCache(cache.NewCache(mgr.KV, cfg.KV.Prefix), ledger.DefaultAuthorTTL))
	}

	l := ledger.New(mgr.DB, ledgerOpts...)

	var emitter *queue.Emitter
	if mgr.MQ != nil {
		emitter = queue.NewEmitter(mgr.MQ, cfg.Events, nlog.Component("events"))
	}

	return &Set{
		Ledger: l,
		Uploads: NewUploadService(l, mgr.Blob, cfg.Upload,
			WithEmitter(emitter),
			WithPagination(cfg.Pagination),
		),
		Sweeper:    NewSweeper(l, mgr.Blob, WithJobEmitter(emitter)),
		Reconciler: NewReconciler(l, mgr.Blob, WithJobEmitter(emitter)),
	}
}
