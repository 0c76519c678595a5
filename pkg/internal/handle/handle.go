// Package handle 提供 HTTP 请求处理器，负责参数解析与错误到状态码的映射.
package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/uploadvault/pkg/context"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	"github.com/yeisme/uploadvault/pkg/log"
	"github.com/yeisme/uploadvault/pkg/pagination"
)

// 错误码，与 ErrorResponse.Error 对应.
const (
	CodeNotFound            = "not_found"
	CodeAccessDenied        = "access_denied"
	CodeStateConflict       = "state_conflict"
	CodeInvalidInput        = "invalid_input"
	CodeInvalidContentRange = "invalid_content_range"
	CodeInvalidPagination   = "invalid_pagination"
	CodePageDoesNotExist    = "page_does_not_exist"
	CodeInternal            = "internal_error"
)

// ErrorStatus 将服务层错误映射为状态码与错误码.
func ErrorStatus(err error) (int, string) {
	var inputErr *types.InputError

	switch {
	case errors.Is(err, types.ErrRevertFailed):
		return http.StatusInternalServerError, CodeInternal
	case errors.Is(err, types.ErrInvalidContentRange):
		return http.StatusRequestedRangeNotSatisfiable, CodeInvalidContentRange
	case errors.Is(err, pagination.ErrInvalidPagination):
		return http.StatusUnprocessableEntity, CodeInvalidPagination
	case errors.Is(err, pagination.ErrPageDoesNotExist):
		return http.StatusNotFound, CodePageDoesNotExist
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Code
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, types.ErrAccessDenied):
		return http.StatusForbidden, CodeAccessDenied
	case errors.Is(err, types.ErrStateConflict):
		return http.StatusConflict, CodeStateConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// abortWithError 写入错误响应. 5xx 不向客户端暴露内部错误信息.
func abortWithError(c *gin.Context, err error) {
	status, code := ErrorStatus(err)

	resp := types.ErrorResponse{Error: code}
	if status < http.StatusInternalServerError {
		resp.Message = err.Error()
	} else {
		l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())
		l.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// requester 返回认证中间件识别出的用户名，可能为空.
func requester(c *gin.Context) string {
	return ctxPkg.GetRequester(c.Request.Context())
}

// paramID 解析路径中的正整数 id.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, types.InvalidInput("invalid_"+name))
		return 0, false
	}

	return id, true
}
