package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/internal/model"
	"github.com/yeisme/uploadvault/pkg/internal/router"
	"github.com/yeisme/uploadvault/pkg/internal/service"
	"github.com/yeisme/uploadvault/pkg/internal/storage/storagetest"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	"github.com/yeisme/uploadvault/pkg/pagination"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t      *testing.T
	engine *gin.Engine
	postID int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := storagetest.Config(t)
	mgr := storagetest.New(t, cfg)
	svc := service.NewSet(mgr, cfg)

	post, err := svc.Ledger.CreatePost(context.Background(), "alice", "hello")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	return &harness{
		t:      t,
		engine: router.New(router.Deps{Config: cfg, Storage: mgr, Services: svc}),
		postID: post.ID,
	}
}

type request struct {
	method, path, user, role string
	header                   map[string]string
	body                     []byte
}

func (h *harness) do(r request) *httptest.ResponseRecorder {
	h.t.Helper()

	req := httptest.NewRequest(r.method, r.path, bytes.NewReader(r.body))
	if r.user != "" {
		req.Header.Set("X-Auth-Request-User", r.user)
	}

	if r.role != "" {
		req.Header.Set("X-Role", r.role)
	}

	for k, v := range r.header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}

	return v
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	if w.Code != status {
		t.Fatalf("status = %d, want %d: %s", w.Code, status, w.Body.String())
	}

	if code != "" {
		if got := decode[types.ErrorResponse](t, w).Error; got != code {
			t.Fatalf("error code = %q, want %q", got, code)
		}
	}
}

func (h *harness) create(size int64) int64 {
	h.t.Helper()

	body := fmt.Sprintf(`{"post_id":%d,"extension":"txt","size":%d}`, h.postID, size)
	w := h.do(request{method: http.MethodPost, path: "/api/uploads/add", user: "alice", body: []byte(body)})
	expect(h.t, w, http.StatusOK, "")

	return decode[types.CreateUploadResponse](h.t, w).ID
}

func (h *harness) chunk(id int64, rng string, data []byte) *httptest.ResponseRecorder {
	return h.do(request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/api/uploads/by-id/%d/upload-by-chunk", id),
		user:   "alice",
		header: map[string]string{"Content-Range": rng},
		body:   data,
	})
}

// TestUploadFlow 测试通过 HTTP 完成创建、分片写入、发布、公开访问与撤下.
func TestUploadFlow(t *testing.T) {
	h := newHarness(t)

	content := bytes.Repeat([]byte("x"), 50)
	content = append(content, 'y')

	id := h.create(int64(len(content)))

	expect(t, h.chunk(id, "bytes 0-49/51", content[:50]), http.StatusOK, "")
	expect(t, h.chunk(id, "bytes 50-50/*", content[50:]), http.StatusOK, "")

	finalize := request{method: http.MethodPost, path: fmt.Sprintf("/api/uploads/by-id/%d/finalize", id), user: "alice"}
	expect(t, h.do(finalize), http.StatusOK, "")
	expect(t, h.do(finalize), http.StatusConflict, "state_conflict")

	w := h.do(request{method: http.MethodGet, path: fmt.Sprintf("/api/uploads/by-id/%d", id), user: "bob"})
	expect(t, w, http.StatusOK, "")

	info := decode[types.UploadInfo](t, w)
	if info.Status != model.StatusPublished || info.PublicURL == "" || info.Checksum == "" {
		t.Fatalf("info = %+v", info)
	}

	media := h.do(request{method: http.MethodGet, path: fmt.Sprintf("/media/%016x.txt", id)})
	expect(t, media, http.StatusOK, "")

	if got, _ := io.ReadAll(media.Body); !bytes.Equal(got, content) {
		t.Errorf("media content = %q", got)
	}

	list := h.do(request{method: http.MethodGet, path: fmt.Sprintf("/api/posts/by-id/%d/uploads", h.postID)})
	expect(t, list, http.StatusOK, "")

	if page := decode[pagination.Page[types.UploadInfo]](t, list); page.TotalItemCount != 1 || page.Items[0].ID != id {
		t.Errorf("page = %+v", page)
	}

	remove := request{method: http.MethodPost, path: fmt.Sprintf("/api/uploads/by-id/%d/remove", id), user: "alice"}
	expect(t, h.do(remove), http.StatusOK, "")

	if w := h.do(request{method: http.MethodGet, path: fmt.Sprintf("/media/%016x.txt", id)}); w.Code != http.StatusNotFound {
		t.Errorf("media after remove = %d", w.Code)
	}
}

// TestErrorMapping 测试错误到状态码与错误码的映射.
func TestErrorMapping(t *testing.T) {
	h := newHarness(t)
	id := h.create(10)

	post := func(body string) request {
		return request{method: http.MethodPost, path: "/api/uploads/add", user: "alice", body: []byte(body)}
	}

	cases := []struct {
		name   string
		req    request
		status int
		code   string
	}{
		{"size zero", post(fmt.Sprintf(`{"post_id":%d,"size":0}`, h.postID)), http.StatusBadRequest, "size_is_zero"},
		{"size too large", post(fmt.Sprintf(`{"post_id":%d,"size":%d}`, h.postID, 1<<30)), http.StatusBadRequest, "size_too_large"},
		{"bad extension", post(fmt.Sprintf(`{"post_id":%d,"extension":"a.b","size":1}`, h.postID)), http.StatusBadRequest, "invalid_extension"},
		{"missing post", post(`{"post_id":999,"size":1}`), http.StatusNotFound, "not_found"},
		{"malformed body", post(`{`), http.StatusBadRequest, "invalid_body"},
		{
			"viewer cannot create",
			request{method: http.MethodPost, path: "/api/uploads/add", user: "alice", role: "viewer", body: []byte(`{}`)},
			http.StatusForbidden, "forbidden",
		},
		{
			"anonymous",
			request{method: http.MethodGet, path: fmt.Sprintf("/api/uploads/by-id/%d", id)},
			http.StatusUnauthorized, "unauthorized",
		},
		{
			"not author",
			request{method: http.MethodPost, path: fmt.Sprintf("/api/uploads/by-id/%d/finalize", id), user: "bob"},
			http.StatusForbidden, "access_denied",
		},
		{
			"unpublished hidden from others",
			request{method: http.MethodGet, path: fmt.Sprintf("/api/uploads/by-id/%d", id), user: "bob"},
			http.StatusForbidden, "access_denied",
		},
		{
			"unknown upload",
			request{method: http.MethodGet, path: "/api/uploads/by-id/12345", user: "alice"},
			http.StatusNotFound, "not_found",
		},
		{
			"invalid id",
			request{method: http.MethodGet, path: "/api/uploads/by-id/abc", user: "alice"},
			http.StatusBadRequest, "invalid_id",
		},
		{
			"remove unpublished",
			request{method: http.MethodPost, path: fmt.Sprintf("/api/uploads/by-id/%d/remove", id), user: "alice"},
			http.StatusConflict, "state_conflict",
		},
		{
			"page size zero",
			request{method: http.MethodGet, path: fmt.Sprintf("/api/posts/by-id/%d/uploads?page_size=0", h.postID)},
			http.StatusUnprocessableEntity, "invalid_pagination",
		},
		{
			"page size over max",
			request{method: http.MethodGet, path: fmt.Sprintf("/api/posts/by-id/%d/uploads?page_size=11", h.postID)},
			http.StatusUnprocessableEntity, "invalid_pagination",
		},
		{
			"page beyond end",
			request{method: http.MethodGet, path: fmt.Sprintf("/api/posts/by-id/%d/uploads?page_id=5", h.postID)},
			http.StatusNotFound, "page_does_not_exist",
		},
		{
			"page 0 of post without published uploads",
			request{method: http.MethodGet, path: fmt.Sprintf("/api/posts/by-id/%d/uploads?page_id=0", h.postID)},
			http.StatusNotFound, "page_does_not_exist",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expect(t, h.do(tc.req), tc.status, tc.code)
		})
	}
}

// TestChunkRanges 测试 Content-Range 非法与越界时返回 416，且记录可继续写入.
func TestChunkRanges(t *testing.T) {
	h := newHarness(t)
	id := h.create(10)

	for _, rng := range []string{"", "bytes 5-2/10", "items 0-1/10", "bytes 0-9/11", "bytes 8-10/*"} {
		w := h.chunk(id, rng, []byte("0123456789")[:1])
		expect(t, w, http.StatusRequestedRangeNotSatisfiable, "invalid_content_range")
	}

	expect(t, h.chunk(id, "bytes 0-9/10", []byte("0123")), http.StatusBadRequest, "body_too_short")
	expect(t, h.chunk(id, "bytes 0-9/10", []byte("0123456789")), http.StatusOK, "")
}

// TestAdminRoutes 测试管理接口需要 admin 角色.
func TestAdminRoutes(t *testing.T) {
	h := newHarness(t)
	h.create(10)

	expect(t, h.do(request{method: http.MethodPost, path: "/api/admin/sweep", user: "root"}), http.StatusForbidden, "forbidden")

	w := h.do(request{method: http.MethodPost, path: "/api/admin/sweep", user: "root", role: "admin"})
	expect(t, w, http.StatusOK, "")

	if res := decode[types.SweepResult](t, w); res.Claimed != 0 {
		t.Errorf("fresh upload should not be claimed: %+v", res)
	}

	expect(t, h.do(request{method: http.MethodPost, path: "/api/admin/reconcile", user: "root", role: "admin"}), http.StatusOK, "")
	expect(t, h.do(request{method: http.MethodGet, path: "/api/admin/scheduler/jobs", user: "root", role: "admin"}),
		http.StatusServiceUnavailable, "unavailable")
}

// TestHealthRoutes 测试本地组合下的健康检查.
func TestHealthRoutes(t *testing.T) {
	h := newHarness(t)

	for path, status := range map[string]int{
		"/api/health/db": http.StatusOK,
		"/api/health/kv": http.StatusOK,
		"/api/health/mq": http.StatusOK,
		"/api/health/s3": http.StatusServiceUnavailable,
	} {
		if w := h.do(request{method: http.MethodGet, path: path}); w.Code != status {
			t.Errorf("%s = %d, want %d: %s", path, w.Code, status, w.Body.String())
		}
	}
}
