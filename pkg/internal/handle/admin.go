package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/service"
)

// AdminHandler 手动触发清理与巡检，同步执行并返回统计.
type AdminHandler struct {
	sweeper    *service.Sweeper
	reconciler *service.Reconciler
	sweepCfg   configs.SweeperConfig
	reconCfg   configs.ReconcilerConfig
}

// NewAdminHandler 创建管理处理器.
func NewAdminHandler(set *service.Set, sweepCfg configs.SweeperConfig, reconCfg configs.ReconcilerConfig) *AdminHandler {
	return &AdminHandler{
		sweeper:    set.Sweeper,
		reconciler: set.Reconciler,
		sweepCfg:   sweepCfg,
		reconCfg:   reconCfg,
	}
}

// Sweep 立即执行一轮清理.
//
//	@Summary	执行一轮清理
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	types.SweepResult
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/api/admin/sweep [post]
func (h *AdminHandler) Sweep(c *gin.Context) {
	res, err := h.sweeper.Run(c.Request.Context(), h.sweepCfg.PageSize, h.sweepCfg.MaxAge)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Reconcile 立即执行一轮已发布文件巡检.
//
//	@Summary	执行一轮巡检
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	types.ReconcileResult
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/api/admin/reconcile [post]
func (h *AdminHandler) Reconcile(c *gin.Context) {
	res, err := h.reconciler.Run(c.Request.Context(), h.reconCfg.PageSize)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
