package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/yeisme/uploadvault/pkg/internal/jobs"
	"github.com/yeisme/uploadvault/pkg/internal/service"
	"github.com/yeisme/uploadvault/pkg/internal/storage/storagetest"
	"github.com/yeisme/uploadvault/pkg/scheduler"
)

// TestRegisterCronJobs 测试按配置注册任务并能立即运行.
func TestRegisterCronJobs(t *testing.T) {
	cfg := storagetest.Config(t)
	cfg.Reconciler.Enabled = false

	mgr := storagetest.New(t, cfg)
	svc := service.NewSet(mgr, cfg)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	t.Cleanup(func() { _ = sched.Shutdown() })

	if err := jobs.RegisterCronJobs(context.Background(), sched, svc, cfg); err != nil {
		t.Fatalf("RegisterCronJobs: %v", err)
	}

	infos := sched.GetJobInfos()
	if len(infos) != 1 || infos[0].Name != jobs.JobUploadSweeper {
		t.Fatalf("jobs = %+v, want only %s", infos, jobs.JobUploadSweeper)
	}

	sched.Start()

	if err := sched.RunJobNow(jobs.JobUploadSweeper); err != nil {
		t.Fatalf("RunJobNow: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		info, _ := sched.GetJobInfoByName(jobs.JobUploadSweeper)
		if !info.LastSuccess.IsZero() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("sweeper job did not complete")
}

// TestRegisterCronJobs_Nil 测试缺少依赖时报错.
func TestRegisterCronJobs_Nil(t *testing.T) {
	cfg := storagetest.Config(t)

	if err := jobs.RegisterCronJobs(context.Background(), nil, &service.Set{}, cfg); err == nil {
		t.Error("nil scheduler should fail")
	}
}
