package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/contentrange"
	"github.com/yeisme/uploadvault/pkg/internal/service"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	"github.com/yeisme/uploadvault/pkg/pagination"
)

// UploadHandler 分片上传相关接口.
type UploadHandler struct {
	svc *service.UploadService
}

// NewUploadHandler 创建上传处理器.
func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Create 创建上传记录并分配私有文件.
//
//	@Summary		创建上传
//	@Description	为帖子创建一条上传记录，只有帖子作者可以创建
//	@Tags			上传
//	@Accept			json
//	@Produce		json
//	@Param			request	body		types.CreateUploadRequest	true	"帖子、扩展名与文件大小"
//	@Success		200		{object}	types.CreateUploadResponse
//	@Failure		400		{object}	types.ErrorResponse	"参数错误，例如 size_is_zero"
//	@Failure		403		{object}	types.ErrorResponse	"不是帖子作者"
//	@Failure		404		{object}	types.ErrorResponse	"帖子不存在"
//	@Router			/api/uploads/add [post]
func (h *UploadHandler) Create(c *gin.Context) {
	var req types.CreateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, types.InvalidInput("invalid_body"))
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), requester(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// WriteChunk 写入一个分片，请求体为原始字节，位置由 Content-Range 指定.
//
//	@Summary		上传分片
//	@Description	Content-Range 形如 bytes 0-49/51 或 bytes 0-49/*，同一上传同时只允许一个写入
//	@Tags			上传
//	@Accept			application/octet-stream
//	@Produce		json
//	@Param			id				path		int		true	"上传 ID"
//	@Param			Content-Range	header		string	true	"分片区间"
//	@Success		200				{object}	types.EmptyResponse
//	@Failure		409				{object}	types.ErrorResponse	"状态不允许写入"
//	@Failure		416				{object}	types.ErrorResponse	"区间非法"
//	@Router			/api/uploads/by-id/{id}/upload-by-chunk [put]
func (h *UploadHandler) WriteChunk(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	rng, err := contentrange.Parse(c.GetHeader("Content-Range"))
	if err != nil {
		abortWithError(c, types.ErrInvalidContentRange)
		return
	}

	if err := h.svc.WriteChunk(c.Request.Context(), requester(c), id, rng, c.Request.Body); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.EmptyResponse{})
}

// Finalize 发布上传.
//
//	@Summary	发布上传
//	@Tags		上传
//	@Produce	json
//	@Param		id	path		int	true	"上传 ID"
//	@Success	200	{object}	types.EmptyResponse
//	@Failure	409	{object}	types.ErrorResponse	"状态不允许发布"
//	@Router		/api/uploads/by-id/{id}/finalize [post]
func (h *UploadHandler) Finalize(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Finalize(c.Request.Context(), requester(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.EmptyResponse{})
}

// Remove 撤下已发布的上传.
//
//	@Summary	撤下上传
//	@Tags		上传
//	@Produce	json
//	@Param		id	path		int	true	"上传 ID"
//	@Success	200	{object}	types.EmptyResponse
//	@Failure	409	{object}	types.ErrorResponse	"状态不允许撤下"
//	@Router		/api/uploads/by-id/{id}/remove [post]
func (h *UploadHandler) Remove(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Hide(c.Request.Context(), requester(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.EmptyResponse{})
}

// Get 返回上传详情. 已发布的上传任何人可见，其余只有作者可见.
//
//	@Summary	上传详情
//	@Tags		上传
//	@Produce	json
//	@Param		id	path		int	true	"上传 ID"
//	@Success	200	{object}	types.UploadInfo
//	@Failure	403	{object}	types.ErrorResponse
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/api/uploads/by-id/{id} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	info, err := h.svc.Info(c.Request.Context(), requester(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListPostUploads 分页列出帖子下已发布的上传.
//
//	@Summary		帖子的公开上传
//	@Description	不传 page_id 时返回最后一页
//	@Tags			上传
//	@Produce		json
//	@Param			id			path		int	true	"帖子 ID"
//	@Param			page_id		query		int	false	"页号，从 0 开始"
//	@Param			page_size	query		int	false	"页大小"
//	@Success		200			{object}	pagination.Page[types.UploadInfo]
//	@Failure		404			{object}	types.ErrorResponse	"帖子或页不存在"
//	@Failure		422			{object}	types.ErrorResponse	"分页参数非法"
//	@Router			/api/posts/by-id/{id}/uploads [get]
func (h *UploadHandler) ListPostUploads(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		abortWithError(c, pagination.ErrInvalidPagination)
		return
	}

	// 显式传 page_size=0 视为非法，不使用默认值
	if _, set := c.GetQuery("page_size"); set && params.PageSize == 0 {
		abortWithError(c, pagination.ErrInvalidPagination)
		return
	}

	page, err := h.svc.ListPublished(c.Request.Context(), id, params)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
