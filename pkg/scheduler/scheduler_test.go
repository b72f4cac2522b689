package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/clouddrive/pkg/scheduler"
)

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	l := zerolog.Nop()

	s, err := scheduler.NewScheduler(&l)
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("condition not met in time")
}

func TestAddCronAndRunNow(t *testing.T) {
	s := newScheduler(t)

	var runs atomic.Int32

	err := s.AddCron("demo", "0 3 * * *", func(context.Context) error {
		runs.Add(1)

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AddCron("demo", "0 3 * * *", func(context.Context) error { return nil }); err == nil {
		t.Error("duplicate job name should fail")
	}

	info, err := s.GetJobInfoByName("demo")
	if err != nil || info.Status != scheduler.StatusScheduled || info.NextRun.IsZero() {
		t.Fatalf("info = %+v, err = %v", info, err)
	}

	if err := s.RunNow("demo"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("demo")

		return runs.Load() == 1 && !info.LastSuccess.IsZero()
	})
}

func TestJobErrorIsRecorded(t *testing.T) {
	s := newScheduler(t)

	_ = s.AddCron("failing", "0 3 * * *", func(context.Context) error { return errors.New("boom") })
	_ = s.AddCron("panicking", "0 3 * * *", func(context.Context) error { panic("bad") })

	_ = s.RunNow("failing")
	_ = s.RunNow("panicking")

	waitFor(t, func() bool {
		a, _ := s.GetJobInfoByName("failing")
		b, _ := s.GetJobInfoByName("panicking")

		return a.Status == scheduler.StatusError && a.Error == "boom" && b.Status == scheduler.StatusError
	})
}

func TestUnknownJob(t *testing.T) {
	s := newScheduler(t)

	if err := s.RunNow("missing"); !errors.Is(err, scheduler.ErrJobNotFound) {
		t.Errorf("RunNow err = %v", err)
	}

	if err := s.RemoveJobByName("missing"); !errors.Is(err, scheduler.ErrJobNotFound) {
		t.Errorf("Remove err = %v", err)
	}
}

func TestInvalidCron(t *testing.T) {
	s := newScheduler(t)

	if err := s.AddCron("bad", "not a cron", func(context.Context) error { return nil }); err == nil {
		t.Error("invalid cron should fail")
	}
}

func TestGetJobInfosSorted(t *testing.T) {
	s := newScheduler(t)

	for _, name := range []string{"b", "a", "c"} {
		if err := s.AddCron(name, "0 3 * * *", func(context.Context) error { return nil }); err != nil {
			t.Fatal(err)
		}
	}

	infos := s.GetJobInfos()
	if len(infos) != 3 || infos[0].Name != "a" || infos[2].Name != "c" {
		t.Errorf("infos = %+v", infos)
	}

	if err := s.RemoveJobByName("b"); err != nil {
		t.Fatal(err)
	}

	if len(s.GetJobInfos()) != 2 {
		t.Error("job not removed")
	}
}
