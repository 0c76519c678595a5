package handle_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yeisme/uploadvault/pkg/internal/handle"
	"github.com/yeisme/uploadvault/pkg/internal/model"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	"github.com/yeisme/uploadvault/pkg/pagination"
)

// TestErrorStatus 测试错误分类到状态码与错误码的映射.
func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: upload 1", types.ErrNotFound), http.StatusNotFound, handle.CodeNotFound},
		{fmt.Errorf("%w: upload 1", types.ErrAccessDenied), http.StatusForbidden, handle.CodeAccessDenied},
		{types.Conflict(1, model.StatusPublishing), http.StatusConflict, handle.CodeStateConflict},
		{fmt.Errorf("%w: beyond size", types.ErrInvalidContentRange), http.StatusRequestedRangeNotSatisfiable, handle.CodeInvalidContentRange},
		{types.InvalidInput("size_is_zero"), http.StatusBadRequest, "size_is_zero"},
		{fmt.Errorf("wrapped: %w", types.InvalidInput("invalid_extension")), http.StatusBadRequest, "invalid_extension"},
		{pagination.ErrInvalidPagination, http.StatusUnprocessableEntity, handle.CodeInvalidPagination},
		{pagination.ErrPageDoesNotExist, http.StatusNotFound, handle.CodePageDoesNotExist},
		{types.StorageIO("publish", errors.New("disk")), http.StatusInternalServerError, handle.CodeInternal},
		{&types.RevertError{ID: 1, Cause: types.InvalidInput("body_too_short"), Revert: errors.New("db gone")}, http.StatusInternalServerError, handle.CodeInternal},
		{errors.New("boom"), http.StatusInternalServerError, handle.CodeInternal},
	}

	for _, tc := range cases {
		status, code := handle.ErrorStatus(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("ErrorStatus(%v) = (%d, %s), want (%d, %s)", tc.err, status, code, tc.status, tc.code)
		}
	}
}
