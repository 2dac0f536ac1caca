package scheduler

import (
	"path/filepath"
	"testing"

	"HomeDash/internal/ratelimit"
	"HomeDash/internal/recorder"
	"HomeDash/internal/refresh"
	"HomeDash/internal/state"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"))
	jobs := refresh.NewJobs(store, nil, nil, nil, nil, ratelimit.NewGuard(store, nil), recorder.NewNoopRecorder())
	return NewScheduler(jobs)
}

func TestReschedule_RegistersAllTriggers(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.Reschedule([]int{8, 17}); err != nil {
		t.Fatal(err)
	}
	// two daily net-worth triggers + weather + combined
	if got := s.EntryCount(); got != 4 {
		t.Fatalf("expected 4 entries, got %d", got)
	}
	if got := len(s.cron.Entries()); got != 4 {
		t.Fatalf("expected 4 cron entries, got %d", got)
	}
}

func TestReschedule_AtomicRebuildLeavesNoStaleTriggers(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.Reschedule([]int{6, 12, 18}); err != nil {
		t.Fatal(err)
	}
	if err := s.Reschedule([]int{9}); err != nil {
		t.Fatal(err)
	}

	if got := len(s.cron.Entries()); got != 3 {
		t.Fatalf("expected 3 cron entries after rebuild, got %d", got)
	}
	hours := s.Hours()
	if len(hours) != 1 || hours[0] != 9 {
		t.Fatalf("expected hours [9], got %v", hours)
	}
}

func TestReschedule_SortsHours(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.Reschedule([]int{17, 8, 12}); err != nil {
		t.Fatal(err)
	}
	hours := s.Hours()
	if len(hours) != 3 || hours[0] != 8 || hours[1] != 12 || hours[2] != 17 {
		t.Fatalf("expected sorted hours, got %v", hours)
	}
}

func TestReschedule_RejectsBadHour(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.Reschedule([]int{25}); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
}
