package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	sched := NewCronScheduler("not a cron spec", time.UTC)
	if err := sched.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

func TestCronSchedulerStartStop(t *testing.T) {
	t.Parallel()

	sched := NewCronScheduler("@every 1h", time.UTC)

	if err := sched.Start(context.Background(), func(time.Time) {}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	// A second start while running is a no-op.
	if err := sched.Start(context.Background(), func(time.Time) {}); err != nil {
		t.Fatalf("second Start error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sched.Stop(ctx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	// Stopping again is also a no-op.
	if err := sched.Stop(ctx); err != nil {
		t.Fatalf("second Stop error: %v", err)
	}
}

func TestCronSchedulerNilJob(t *testing.T) {
	t.Parallel()

	sched := NewCronScheduler("@every 1h", nil)
	if err := sched.Start(context.Background(), nil); err != nil {
		t.Fatalf("nil job must be a no-op: %v", err)
	}
}
