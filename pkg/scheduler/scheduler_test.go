package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/uploadvault/pkg/scheduler"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("condition not met before deadline")
}

// TestRunJobNow 测试立即运行任务并记录成功与失败状态.
func TestRunJobNow(t *testing.T) {
	s, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	t.Cleanup(func() { _ = s.Shutdown() })

	fail := make(chan bool, 1)
	fail <- false

	job := func(context.Context) error {
		if <-fail {
			return errors.New("boom")
		}

		return nil
	}

	if err := s.AddCron(context.Background(), "test.job", "0 0 1 1 *", job); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	if err := s.AddCron(context.Background(), "test.job", "0 0 1 1 *", job); err == nil {
		t.Error("duplicate job name should fail")
	}

	s.Start()

	if err := s.RunJobNow("test.job"); err != nil {
		t.Fatalf("RunJobNow: %v", err)
	}

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("test.job")
		return !info.LastSuccess.IsZero()
	})

	fail <- true

	if err := s.RunJobNow("test.job"); err != nil {
		t.Fatalf("RunJobNow: %v", err)
	}

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("test.job")
		return info.Status == scheduler.StatusError && info.Error == "boom"
	})

	if err := s.RunJobNow("missing"); err == nil {
		t.Error("unknown job should fail")
	}
}

// TestRemoveJobByName 测试移除任务后不再出现在列表中.
func TestRemoveJobByName(t *testing.T) {
	s, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	t.Cleanup(func() { _ = s.Shutdown() })

	noop := func(context.Context) error { return nil }

	for _, name := range []string{"b", "a"} {
		if err := s.AddCron(context.Background(), name, "*/5 * * * *", noop); err != nil {
			t.Fatalf("AddCron(%s): %v", name, err)
		}
	}

	infos := s.GetJobInfos()
	if len(infos) != 2 || infos[0].Name != "a" {
		t.Fatalf("GetJobInfos = %+v", infos)
	}

	if err := s.RemoveJobByName("a"); err != nil {
		t.Fatalf("RemoveJobByName: %v", err)
	}

	if infos := s.GetJobInfos(); len(infos) != 1 || infos[0].Name != "b" {
		t.Errorf("after remove = %+v", infos)
	}

	if err := s.AddCron(context.Background(), "bad", "not a cron", noop); err == nil {
		t.Error("invalid cron expression should fail")
	}
}
