// Package refresh holds the orchestration jobs that pull data from the
// source adapters and reconcile results into the state store. Jobs never
// propagate failure past their own boundary; every run ends by committing
// last_updated and persisting, even when every source failed.
package refresh

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"HomeDash/internal/collector"
	"HomeDash/internal/model"
	"HomeDash/internal/ratelimit"
	"HomeDash/internal/recorder"
	"HomeDash/internal/state"
)

// Jobs bundles the store, adapters and guard behind the scheduled refresh
// entry points. A run mutex serializes job bodies so an overlapping trigger
// waits for the previous job instead of racing it; store reads are never
// held up because the lock is not the store's.
type Jobs struct {
	Store     *state.Store
	Portfolio collector.PortfolioFetcher
	Positions collector.PositionsFetcher
	Weather   collector.WeatherFetcher
	Health    collector.HealthFetcher
	Guard     *ratelimit.Guard
	Recorder  recorder.Recorder

	runMu sync.Mutex
	now   func() time.Time
}

// NewJobs creates the refresh job set.
func NewJobs(store *state.Store, portfolio collector.PortfolioFetcher, positions collector.PositionsFetcher,
	weather collector.WeatherFetcher, health collector.HealthFetcher,
	guard *ratelimit.Guard, rec recorder.Recorder) *Jobs {
	return &Jobs{
		Store:     store,
		Portfolio: portfolio,
		Positions: positions,
		Weather:   weather,
		Health:    health,
		Guard:     guard,
		Recorder:  rec,
		now:       time.Now,
	}
}

// NetWorth refreshes the brokerage and trading-app balances.
func (j *Jobs) NetWorth() {
	j.runMu.Lock()
	defer j.runMu.Unlock()
	j.netWorthStep(context.Background())
}

// WeatherRefresh refreshes the 7-day forecast and rolls the history.
func (j *Jobs) WeatherRefresh() {
	j.runMu.Lock()
	defer j.runMu.Unlock()
	j.weatherStep(context.Background())
}

// HealthRefresh refreshes the weekly health summary.
func (j *Jobs) HealthRefresh() {
	j.runMu.Lock()
	defer j.runMu.Unlock()
	j.healthStep(context.Background())
}

// Combined runs weather, health, and net worth in sequence. The steps are
// independent: one source failing must not keep the others from committing
// their fields.
func (j *Jobs) Combined() {
	j.runMu.Lock()
	defer j.runMu.Unlock()
	log.Printf("[INFO] running combined update")
	ctx := context.Background()
	j.weatherStep(ctx)
	j.healthStep(ctx)
	j.netWorthStep(ctx)
}

func (j *Jobs) netWorthStep(ctx context.Context) {
	log.Printf("[INFO] updating account balances and details")
	portfolio, err := j.Portfolio.FetchPortfolio(ctx)
	if err != nil {
		log.Printf("[ERROR] fetch portfolio: %v", err)
		j.Store.Update(func(s *model.Snapshot) {
			s.Error = true
			s.LastUpdated = j.now().Format(model.TimestampLayout)
		})
		j.record(&recorder.RefreshEvent{Job: "net_worth", Note: err.Error()})
		return
	}

	rh := j.fetchPositions(ctx)

	total := portfolio.TotalNetWorth
	if rh != nil {
		total += rh.Equity
		log.Printf("[INFO] robinhood: %.2f added", rh.Equity)
	}

	today := j.now().Format(model.DateLayout)
	var yesterday float64
	j.Store.Update(func(s *model.Snapshot) {
		details := &model.PortfolioDetails{
			TotalValue:  total,
			Fidelity:    portfolio.FidelityAccounts,
			NonFidelity: portfolio.NonFidelityAccounts,
		}
		if rh != nil {
			// Without a fresh result the list stays empty: stale positions
			// would no longer sum to the committed total.
			details.Robinhood = rh.Positions
		}

		reconcileNetWorth(s, total, today)
		s.PortfolioDetails = details
		s.Error = false
		s.LastUpdated = j.now().Format(model.TimestampLayout)
		if s.Yesterday != nil {
			yesterday = *s.Yesterday
		}
	})

	log.Printf("[INFO] net worth %.2f (delta %+.2f vs yesterday)", total, total-yesterday)
	if err := j.Recorder.RecordNetWorth(&recorder.NetWorthRecord{
		Total:     total,
		Yesterday: yesterday,
		Delta:     total - yesterday,
	}); err != nil {
		log.Printf("[ERROR] record net worth: %v", err)
	}
	j.record(&recorder.RefreshEvent{Job: "net_worth", Success: true})
}

// fetchPositions runs the guarded trading-app fetch. Returns nil when the
// guard denied the attempt or the fetch failed; state flags are updated
// accordingly.
func (j *Jobs) fetchPositions(ctx context.Context) *model.RobinhoodResult {
	if j.Positions == nil {
		return nil
	}
	ok, reason := j.Guard.Allow()
	if !ok {
		log.Printf("[INFO] skipping robinhood: %s", reason)
		return nil
	}
	// Record before the network call so a hung attempt still counts.
	j.Guard.Record()

	rh, err := j.Positions.FetchPositions(ctx)
	if err != nil {
		if errors.Is(err, collector.ErrRateLimited) {
			j.Guard.TripLockout(ctx)
		} else {
			log.Printf("[ERROR] fetch robinhood: %v", err)
			j.Store.Update(func(s *model.Snapshot) {
				s.RobinhoodError = true
			})
		}
		return nil
	}
	j.Store.Update(func(s *model.Snapshot) {
		s.RobinhoodError = false
	})
	return rh
}

func (j *Jobs) weatherStep(ctx context.Context) {
	log.Printf("[INFO] updating weather state")
	forecast, err := j.Weather.FetchWeekly(ctx)
	today := j.now().Format(model.DateLayout)
	j.Store.Update(func(s *model.Snapshot) {
		if err == nil && len(forecast) > 0 {
			shiftWeatherHistory(s, forecast, today)
		}
		s.LastUpdated = j.now().Format(model.TimestampLayout)
	})
	if err != nil {
		log.Printf("[ERROR] fetch weather: %v", err)
		j.record(&recorder.RefreshEvent{Job: "weather", Note: err.Error()})
		return
	}
	j.record(&recorder.RefreshEvent{Job: "weather", Success: true})
}

func (j *Jobs) healthStep(ctx context.Context) {
	log.Printf("[INFO] updating health stats")
	summary, err := j.Health.FetchSummary(ctx)
	j.Store.Update(func(s *model.Snapshot) {
		if err != nil {
			s.HealthStats = nil
		} else {
			s.HealthStats = summary
		}
		s.LastUpdated = j.now().Format(model.TimestampLayout)
	})
	if err != nil {
		log.Printf("[ERROR] fetch health summary: %v", err)
		j.record(&recorder.RefreshEvent{Job: "health", Note: err.Error()})
		return
	}
	j.record(&recorder.RefreshEvent{Job: "health", Success: true})
}

func (j *Jobs) record(evt *recorder.RefreshEvent) {
	if err := j.Recorder.RecordRefresh(evt); err != nil {
		log.Printf("[ERROR] record refresh event: %v", err)
	}
}

// SetClock overrides the time source, for tests.
func (j *Jobs) SetClock(now func() time.Time) { j.now = now }
