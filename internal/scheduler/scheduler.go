package scheduler

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"HomeDash/internal/refresh"
)

const (
	weatherSpec  = "0 0 * * * *"   // hourly
	combinedSpec = "0 0 */6 * * *" // every six hours
)

// Scheduler manages the cron triggers for the refresh jobs. Reschedule
// rebuilds the full trigger set atomically so no stale trigger survives a
// reconfiguration.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    *refresh.Jobs
	entries []cron.EntryID
	hours   []int
}

// NewScheduler creates a new Scheduler.
func NewScheduler(jobs *refresh.Jobs) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: jobs,
	}
}

// Reschedule replaces all triggers: one daily net-worth refresh per
// configured hour, the hourly weather refresh, and the six-hourly combined
// refresh.
func (s *Scheduler) Reschedule(refreshHours []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = s.entries[:0]

	add := func(spec string, job func()) error {
		id, err := s.cron.AddFunc(spec, job)
		if err != nil {
			return fmt.Errorf("register %q: %w", spec, err)
		}
		s.entries = append(s.entries, id)
		return nil
	}

	hours := append([]int(nil), refreshHours...)
	sort.Ints(hours)
	for _, hr := range hours {
		if err := add(fmt.Sprintf("0 0 %d * * *", hr), s.jobs.NetWorth); err != nil {
			return err
		}
	}
	if err := add(weatherSpec, s.jobs.WeatherRefresh); err != nil {
		return err
	}
	if err := add(combinedSpec, s.jobs.Combined); err != nil {
		return err
	}

	s.hours = hours
	log.Printf("[INFO] scheduler triggers rebuilt: refresh hours %v, %d entries", hours, len(s.entries))
	return nil
}

// Hours returns the currently scheduled refresh hours.
func (s *Scheduler) Hours() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.hours...)
}

// EntryCount returns the number of registered triggers.
func (s *Scheduler) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
