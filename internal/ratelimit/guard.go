// Package ratelimit guards the Robinhood source against its aggressive
// server-side throttling. A sliding-window attempt counter is enough here:
// the protected call runs a few times a day, and skipping a refresh is far
// cheaper than a 24-hour ban.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"HomeDash/internal/model"
	"HomeDash/internal/state"
)

const (
	hourlyLimit     = 2
	dailyLimit      = 10
	attemptWindow   = 24 * time.Hour
	lockoutDuration = 24 * time.Hour
)

// ReminderNotifier creates a durable external reminder so a human learns
// about a lockout. Fire and forget.
type ReminderNotifier interface {
	CreateReminder(ctx context.Context, title, description string, at time.Time) error
}

// Guard tracks attempt timestamps and an optional lockout deadline, both kept
// in the persisted snapshot so restarts don't reset the budget.
type Guard struct {
	store    *state.Store
	notifier ReminderNotifier
	now      func() time.Time
}

// NewGuard creates a Guard. notifier may be nil when no reminder channel is
// configured.
func NewGuard(store *state.Store, notifier ReminderNotifier) *Guard {
	return &Guard{store: store, notifier: notifier, now: time.Now}
}

// Allow reports whether an attempt may proceed. It prunes the attempt history
// to the trailing 24h and clears an expired lockout as a side effect, both
// persisted. On allow the caller must call Record before the network call so
// that even a hanging attempt counts against the budget.
func (g *Guard) Allow() (ok bool, reason string) {
	now := g.now()
	g.store.Update(func(s *model.Snapshot) {
		pruned := s.RHTimestamps[:0]
		for _, ts := range s.RHTimestamps {
			if now.Sub(ts) < attemptWindow {
				pruned = append(pruned, ts)
			}
		}
		s.RHTimestamps = pruned

		if s.RHLockoutUntil != nil {
			if now.Before(*s.RHLockoutUntil) {
				remaining := s.RHLockoutUntil.Sub(now).Round(time.Minute)
				ok, reason = false, fmt.Sprintf("locked out for %d more minutes", int(remaining.Minutes()))
				return
			}
			s.RHLockoutUntil = nil
			s.RobinhoodError = false
		}

		lastHour := 0
		for _, ts := range s.RHTimestamps {
			if now.Sub(ts) < time.Hour {
				lastHour++
			}
		}
		if lastHour >= hourlyLimit {
			ok, reason = false, "hourly limit"
			return
		}
		if len(s.RHTimestamps) >= dailyLimit {
			ok, reason = false, "daily limit"
			return
		}
		ok = true
	})
	return ok, reason
}

// Record registers an attempt at the current time.
func (g *Guard) Record() {
	now := g.now()
	g.store.Update(func(s *model.Snapshot) {
		s.RHTimestamps = append(s.RHTimestamps, now)
	})
}

// TripLockout reacts to an observed 429-class failure: lockout for 24h, mark
// the source errored, and alert a human through the reminder channel. This is
// a deliberate cross-system side effect, not a retry.
func (g *Guard) TripLockout(ctx context.Context) {
	deadline := g.now().Add(lockoutDuration)
	g.store.Update(func(s *model.Snapshot) {
		s.RHLockoutUntil = &deadline
		s.RobinhoodError = true
	})
	log.Printf("[WARN] robinhood rate limited, locked out until %s", deadline.Format(time.RFC3339))

	if g.notifier == nil {
		return
	}
	err := g.notifier.CreateReminder(ctx,
		"Robinhood rate limited",
		fmt.Sprintf("Dashboard hit a 429 from Robinhood; refreshes paused until %s.", deadline.Format(model.TimestampLayout)),
		deadline)
	if err != nil {
		log.Printf("[ERROR] create lockout reminder: %v", err)
	}
}

// SetClock overrides the time source, for tests.
func (g *Guard) SetClock(now func() time.Time) { g.now = now }
