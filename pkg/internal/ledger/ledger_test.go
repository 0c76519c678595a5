package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/yeisme/uploadvault/pkg/cache"
	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/ledger"
	"github.com/yeisme/uploadvault/pkg/internal/model"
	"github.com/yeisme/uploadvault/pkg/internal/storage/db/dbtest"
	"github.com/yeisme/uploadvault/pkg/internal/storage/kv"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	"github.com/yeisme/uploadvault/pkg/pagination"
)

func newLedger(t *testing.T, opts ...ledger.Option) *ledger.Ledger {
	t.Helper()
	return ledger.New(dbtest.New(t), opts...)
}

func mustPost(t *testing.T, l *ledger.Ledger, author string) *model.Post {
	t.Helper()

	post, err := l.CreatePost(context.Background(), author, "post")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	return post
}

// TestCreate_Authorization 测试帖子不存在与非作者创建.
func TestCreate_Authorization(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	post := mustPost(t, l, "alice")

	if _, err := l.Create(ctx, post.ID+100, "txt", 10, "alice"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("unknown post: got %v, want ErrNotFound", err)
	}

	if _, err := l.Create(ctx, post.ID, "txt", 10, "bob"); !errors.Is(err, types.ErrAccessDenied) {
		t.Errorf("non-author: got %v, want ErrAccessDenied", err)
	}

	u, err := l.Create(ctx, post.ID, "txt", 10, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if u.ID == 0 || u.Status != model.StatusInitialized || u.Size != 10 {
		t.Errorf("unexpected record %+v", u)
	}

	rec, err := l.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if rec.Author != "alice" || rec.Extension != "txt" {
		t.Errorf("Get = %+v", rec)
	}

	if _, err := l.Get(ctx, u.ID+100); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Get missing: got %v", err)
	}
}

// TestTrySetStatus 测试合法迁移发生、非法迁移返回 false.
func TestTrySetStatus(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	post := mustPost(t, l, "alice")

	u, err := l.Create(ctx, post.ID, "", 5, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if ok, err := l.TrySetStatus(ctx, u.ID, model.StatusPublishing); err != nil || ok {
		t.Errorf("initialized -> publishing = (%v, %v), want rejected", ok, err)
	}

	if ok, err := l.TrySetStatus(ctx, u.ID, model.StatusAllocated); err != nil || !ok {
		t.Fatalf("initialized -> allocated = (%v, %v)", ok, err)
	}

	if ok, _ := l.TrySetStatus(ctx, u.ID, model.StatusAllocated); ok {
		t.Error("allocated -> allocated should be rejected")
	}

	if ok, err := l.TrySetStatus(ctx, u.ID+100, model.StatusAllocated); err != nil || ok {
		t.Errorf("missing row = (%v, %v), want (false, nil)", ok, err)
	}

	rec, _ := l.Get(ctx, u.ID)
	if rec.Status != model.StatusAllocated {
		t.Errorf("status = %s", rec.Status)
	}
}

// TestTrySetStatusChecked 测试返回迁移前的记录以及不存在时的错误.
func TestTrySetStatusChecked(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	post := mustPost(t, l, "alice")
	u, _ := l.Create(ctx, post.ID, "bin", 5, "alice")

	if _, _, err := l.TrySetStatusChecked(ctx, u.ID+1, model.StatusAllocated); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("missing row: got %v, want ErrNotFound", err)
	}

	prev, ok, err := l.TrySetStatusChecked(ctx, u.ID, model.StatusAllocated)
	if err != nil || !ok {
		t.Fatalf("TrySetStatusChecked = (%v, %v)", ok, err)
	}

	if prev.Status != model.StatusInitialized || prev.Extension != "bin" {
		t.Errorf("prev = %+v, want initialized record", prev)
	}

	prev, ok, err = l.TrySetStatusChecked(ctx, u.ID, model.StatusHidden)
	if err != nil || ok || prev != nil {
		t.Errorf("rejected transition = (%v, %v, %v)", prev, ok, err)
	}
}

// TestTrySetStatus_Concurrent 测试并发的互斥迁移只有一个成功.
func TestTrySetStatus_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	post := mustPost(t, l, "alice")
	u, _ := l.Create(ctx, post.ID, "", 5, "alice")

	if ok, _ := l.TrySetStatus(ctx, u.ID, model.StatusAllocated); !ok {
		t.Fatal("allocate failed")
	}

	const n = 8

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		first error
	)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ok, err := l.TrySetStatus(ctx, u.ID, model.StatusPublishing)

			mu.Lock()
			defer mu.Unlock()

			if err != nil && first == nil {
				first = err
			}

			if ok {
				wins++
			}
		}()
	}

	wg.Wait()

	if first != nil {
		t.Fatalf("unexpected error: %v", first)
	}

	if wins != 1 {
		t.Errorf("%d callers moved to publishing, want exactly 1", wins)
	}
}

// TestCompletePublish 测试发布完成时写入校验和.
func TestCompletePublish(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	post := mustPost(t, l, "alice")
	u, _ := l.Create(ctx, post.ID, "", 5, "alice")

	if ok, _ := l.CompletePublish(ctx, u.ID, "abc"); ok {
		t.Error("initialized -> published should be rejected")
	}

	l.TrySetStatus(ctx, u.ID, model.StatusAllocated)
	l.TrySetStatus(ctx, u.ID, model.StatusPublishing)

	if ok, err := l.CompletePublish(ctx, u.ID, "00000000deadbeef"); err != nil || !ok {
		t.Fatalf("CompletePublish = (%v, %v)", ok, err)
	}

	rec, _ := l.Get(ctx, u.ID)
	if rec.Status != model.StatusPublished || rec.Checksum != "00000000deadbeef" {
		t.Errorf("record = %+v", rec.Upload)
	}
}

// TestListPublished 测试帖子下已公开上传的分页.
func TestListPublished(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	post := mustPost(t, l, "alice")

	for i := 0; i < 5; i++ {
		u, _ := l.Create(ctx, post.ID, "", 1, "alice")
		l.TrySetStatus(ctx, u.ID, model.StatusAllocated)

		if i%2 == 0 {
			l.TrySetStatus(ctx, u.ID, model.StatusPublishing)
			l.CompletePublish(ctx, u.ID, "")
		}
	}

	page, err := l.ListPublished(ctx, post.ID, pagination.At(0, 2))
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}

	if len(page.Items) != 2 || page.TotalItemCount != 3 || page.PageCount != 2 {
		t.Errorf("page 0 = %+v", page)
	}

	last, err := l.ListPublished(ctx, post.ID, pagination.Params{PageSize: 2})
	if err != nil || last.PageID != 1 || len(last.Items) != 1 {
		t.Errorf("last page = (%+v, %v)", last, err)
	}

	if _, err := l.ListPublished(ctx, post.ID, pagination.At(2, 2)); !errors.Is(err, pagination.ErrPageDoesNotExist) {
		t.Errorf("page 2: got %v", err)
	}
}

// TestClaimStale 测试认领过期记录、释放认领与批量隐藏.
func TestClaimStale(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	l := newLedger(t, ledger.WithClock(clock))
	post := mustPost(t, l, "alice")

	old, _ := l.Create(ctx, post.ID, "", 1, "alice")
	l.TrySetStatus(ctx, old.ID, model.StatusAllocated)

	published, _ := l.Create(ctx, post.ID, "", 1, "alice")
	l.TrySetStatus(ctx, published.ID, model.StatusAllocated)
	l.TrySetStatus(ctx, published.ID, model.StatusPublishing)
	l.CompletePublish(ctx, published.ID, "")

	now = now.Add(time.Hour)
	fresh, _ := l.Create(ctx, post.ID, "", 1, "alice")

	count, err := l.WindowCount(ctx, 10)
	if err != nil || count != 1 {
		t.Fatalf("WindowCount = (%d, %v), want 1", count, err)
	}

	page, err := l.ClaimStale(ctx, pagination.At(0, 10), now.Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("ClaimStale: %v", err)
	}

	if len(page.Items) != 1 || page.Items[0].ID != old.ID || page.Items[0].Status != model.StatusHiding {
		t.Fatalf("claimed = %+v, want only the old allocated upload", page.Items)
	}

	claimID := *page.Items[0].ClaimID

	// 刚被认领的记录不会被另一轮重复认领
	again, _ := l.ClaimStale(ctx, pagination.At(0, 10), now.Add(-30*time.Minute))
	if len(again.Items) != 0 {
		t.Errorf("second claim got %d rows, want 0", len(again.Items))
	}

	if n, err := l.MarkHidden(ctx, "other-claim", []int64{old.ID}); err != nil || n != 0 {
		t.Errorf("MarkHidden with foreign claim = (%d, %v)", n, err)
	}

	if n, err := l.MarkHidden(ctx, claimID, []int64{old.ID}); err != nil || n != 1 {
		t.Errorf("MarkHidden = (%d, %v), want 1", n, err)
	}

	for id, want := range map[int64]model.UploadStatus{
		old.ID:       model.StatusHidden,
		published.ID: model.StatusPublished,
		fresh.ID:     model.StatusInitialized,
	} {
		rec, _ := l.Get(ctx, id)
		if rec.Status != want {
			t.Errorf("upload %d status = %s, want %s", id, rec.Status, want)
		}
	}

	if _, err := l.ClaimStale(ctx, pagination.At(5, 10), now); !errors.Is(err, pagination.ErrPageDoesNotExist) {
		t.Errorf("window beyond max id: got %v", err)
	}
}

// TestHidden_ClearsClaim 测试用户撤下途中被清理任务认领时，迁移到 Hidden 会清除认领.
func TestHidden_ClearsClaim(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newLedger(t, ledger.WithClock(func() time.Time { return now }))
	post := mustPost(t, l, "alice")

	u, _ := l.Create(ctx, post.ID, "", 1, "alice")
	l.TrySetStatus(ctx, u.ID, model.StatusAllocated)
	l.TrySetStatus(ctx, u.ID, model.StatusPublishing)
	l.CompletePublish(ctx, u.ID, "")

	if ok, err := l.TrySetStatus(ctx, u.ID, model.StatusHiding); err != nil || !ok {
		t.Fatalf("published -> hiding = (%v, %v)", ok, err)
	}

	// 没有认领的 Hiding 记录会被清理任务立即认领
	page, err := l.ClaimStale(ctx, pagination.At(0, 10), now.Add(-time.Hour))
	if err != nil || len(page.Items) != 1 {
		t.Fatalf("ClaimStale = (%+v, %v)", page.Items, err)
	}

	if ok, err := l.TrySetStatus(ctx, u.ID, model.StatusHidden); err != nil || !ok {
		t.Fatalf("hiding -> hidden = (%v, %v)", ok, err)
	}

	rec, err := l.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if rec.Status != model.StatusHidden || rec.ClaimID != nil || rec.ClaimedAt != nil {
		t.Errorf("record = status %s claim %v claimed_at %v, want hidden without claim", rec.Status, rec.ClaimID, rec.ClaimedAt)
	}

	// 清理任务之后的 MarkHidden 不再作用于该记录
	if n, err := l.MarkHidden(ctx, *page.Items[0].ClaimID, []int64{u.ID}); err != nil || n != 0 {
		t.Errorf("MarkHidden after user hide = (%d, %v), want 0", n, err)
	}
}

// TestReleaseClaim 测试释放后 Hiding 记录可被立即重新认领.
func TestReleaseClaim(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newLedger(t, ledger.WithClock(func() time.Time { return now }))
	post := mustPost(t, l, "alice")
	u, _ := l.Create(ctx, post.ID, "", 1, "alice")

	page, err := l.ClaimStale(ctx, pagination.At(0, 10), now.Add(time.Second))
	if err != nil || len(page.Items) != 1 {
		t.Fatalf("ClaimStale = (%+v, %v)", page.Items, err)
	}

	if err := l.ReleaseClaim(ctx, *page.Items[0].ClaimID, []int64{u.ID}); err != nil {
		t.Fatalf("ReleaseClaim: %v", err)
	}

	// 即使 cutoff 早于创建时间，Hiding 状态本身就是候选条件
	page, err = l.ClaimStale(ctx, pagination.At(0, 10), now.Add(-time.Hour))
	if err != nil || len(page.Items) != 1 {
		t.Errorf("reclaim after release = (%+v, %v)", page.Items, err)
	}
}

// TestPublishedWindow 测试按 id 窗口列出已公开记录.
func TestPublishedWindow(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	post := mustPost(t, l, "alice")

	for i := 0; i < 3; i++ {
		u, _ := l.Create(ctx, post.ID, "", 1, "alice")
		l.TrySetStatus(ctx, u.ID, model.StatusAllocated)
		l.TrySetStatus(ctx, u.ID, model.StatusPublishing)
		l.CompletePublish(ctx, u.ID, "")
	}

	it := pagination.NewIterator(ctx, 2, l.PublishedWindow)

	seen := 0
	for it.Next() {
		seen += len(it.Page().Items)
	}

	if it.Err() != nil || seen != 3 {
		t.Errorf("iterated %d published uploads, err = %v", seen, it.Err())
	}
}

// TestClaimStale_HugePageSize 测试超过 int64 范围的页大小等价于覆盖全表的单个窗口.
func TestClaimStale_HugePageSize(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newLedger(t, ledger.WithClock(func() time.Time { return now }))
	post := mustPost(t, l, "alice")

	var ids []int64

	for range 2 {
		u, _ := l.Create(ctx, post.ID, "", 1, "alice")
		l.TrySetStatus(ctx, u.ID, model.StatusAllocated)
		ids = append(ids, u.ID)
	}

	for _, size := range []uint64{1 << 63, math.MaxUint64} {
		count, err := l.WindowCount(ctx, size)
		if err != nil || count != 1 {
			t.Fatalf("WindowCount(%d) = (%d, %v), want 1", size, count, err)
		}
	}

	page, err := l.ClaimStale(ctx, pagination.At(0, 1<<63), now.Add(time.Second))
	if err != nil {
		t.Fatalf("ClaimStale: %v", err)
	}

	if len(page.Items) != len(ids) || page.PageCount != 1 {
		t.Fatalf("claimed %d rows over %d pages, want %d over 1", len(page.Items), page.PageCount, len(ids))
	}

	if n, err := l.MarkHidden(ctx, *page.Items[0].ClaimID, ids); err != nil || n != int64(len(ids)) {
		t.Errorf("MarkHidden = (%d, %v)", n, err)
	}
}

// TestWindow_EmptyTable 测试空表上显式请求第 0 页返回 ErrPageDoesNotExist.
func TestWindow_EmptyTable(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	if _, err := l.ClaimStale(ctx, pagination.At(0, 10), time.Now()); !errors.Is(err, pagination.ErrPageDoesNotExist) {
		t.Errorf("ClaimStale page 0: got %v, want ErrPageDoesNotExist", err)
	}

	if _, err := l.PublishedWindow(ctx, pagination.At(0, 10)); !errors.Is(err, pagination.ErrPageDoesNotExist) {
		t.Errorf("PublishedWindow page 0: got %v, want ErrPageDoesNotExist", err)
	}

	page, err := l.PublishedWindow(ctx, pagination.Params{PageSize: 10})
	if err != nil || page.PageCount != 0 || len(page.Items) != 0 {
		t.Errorf("PublishedWindow last page = (%+v, %v)", page, err)
	}

	post := mustPost(t, l, "alice")
	if _, err := l.ListPublished(ctx, post.ID, pagination.At(0, 10)); !errors.Is(err, pagination.ErrPageDoesNotExist) {
		t.Errorf("ListPublished page 0 of empty post: got %v, want ErrPageDoesNotExist", err)
	}
}

// TestPostAuthor_Cache 测试作者缓存命中后不再依赖数据库.
func TestPostAuthor_Cache(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		t.Fatalf("NewKVStore: %v", err)
	}

	c := cache.NewCache(store, "test:")
	l := newLedger(t, ledger.WithAuthorCache(c, time.Minute))
	post := mustPost(t, l, "alice")

	author, err := l.PostAuthor(ctx, post.ID)
	if err != nil || author != "alice" {
		t.Fatalf("PostAuthor = (%q, %v)", author, err)
	}

	cached, err := cache.Get[string](ctx, c, fmt.Sprintf("post:author:%d", post.ID))
	if err != nil || cached != "alice" {
		t.Errorf("cached author = (%q, %v)", cached, err)
	}

	if _, err := l.PostAuthor(ctx, post.ID+1); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("unknown post: got %v", err)
	}
}

// TestPostAuthor_CacheExpiry 测试作者缓存过期后重新从数据库加载.
func TestPostAuthor_CacheExpiry(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		t.Fatalf("NewKVStore: %v", err)
	}

	l := newLedger(t, ledger.WithAuthorCache(cache.NewCache(store, "uv:"), time.Millisecond))
	post := mustPost(t, l, "alice")

	u, err := l.Create(ctx, post.ID, "txt", 10, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for range 3 {
		time.Sleep(5 * time.Millisecond)

		rec, err := l.Get(ctx, u.ID)
		if err != nil {
			t.Fatalf("Get after expiry: %v", err)
		}

		if rec.Author != "alice" {
			t.Fatalf("author = %q, want alice", rec.Author)
		}
	}
}
