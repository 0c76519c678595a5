package model_test

import (
	"testing"

	"github.com/yeisme/uploadvault/pkg/internal/model"
)

// TestCanTransitionTo_Initialized 测试任何状态都不能回到 Initialized.
func TestCanTransitionTo_Initialized(t *testing.T) {
	for _, s := range model.AllStatuses {
		if model.CanTransitionTo(s, model.StatusInitialized) {
			t.Errorf("%s -> initialized should be rejected", s)
		}
	}
}

// TestCanTransitionTo_Missing 测试任何状态都可以进入 Missing.
func TestCanTransitionTo_Missing(t *testing.T) {
	for _, s := range model.AllStatuses {
		if !model.CanTransitionTo(s, model.StatusMissing) {
			t.Errorf("%s -> missing should be allowed", s)
		}
	}
}

// TestCanTransitionTo_Table 测试完整的迁移矩阵.
func TestCanTransitionTo_Table(t *testing.T) {
	allowed := map[[2]model.UploadStatus]bool{
		{model.StatusInitialized, model.StatusAllocated}: true,
		{model.StatusWriting, model.StatusAllocated}:     true,
		{model.StatusAllocated, model.StatusWriting}:     true,
		{model.StatusAllocated, model.StatusPublishing}:  true,
		{model.StatusHidden, model.StatusPublishing}:     true,
		{model.StatusPublishing, model.StatusPublished}:  true,
		{model.StatusPublished, model.StatusHiding}:      true,
		{model.StatusHiding, model.StatusHidden}:         true,
	}

	for _, from := range model.AllStatuses {
		for _, to := range model.AllStatuses {
			want := allowed[[2]model.UploadStatus{from, to}] || to == model.StatusMissing

			if got := model.CanTransitionTo(from, to); got != want {
				t.Errorf("CanTransitionTo(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

// TestCanTransitionTo_Unknown 测试未知状态被拒绝.
func TestCanTransitionTo_Unknown(t *testing.T) {
	if model.CanTransitionTo("bogus", model.StatusMissing) {
		t.Error("unknown status should not reach missing")
	}

	if model.CanTransitionTo(model.StatusAllocated, "bogus") {
		t.Error("unknown target should be rejected")
	}
}

// TestReclaimable 测试清理任务可认领的状态集合.
func TestReclaimable(t *testing.T) {
	want := map[model.UploadStatus]bool{
		model.StatusInitialized: true,
		model.StatusAllocated:   true,
		model.StatusWriting:     true,
		model.StatusPublishing:  true,
		model.StatusHiding:      true,
	}

	for _, s := range model.AllStatuses {
		if got := model.Reclaimable(s); got != want[s] {
			t.Errorf("Reclaimable(%s) = %v, want %v", s, got, want[s])
		}
	}

	if n := len(model.ReclaimableStatuses()); n != len(want) {
		t.Errorf("ReclaimableStatuses() returned %d statuses, want %d", n, len(want))
	}
}
