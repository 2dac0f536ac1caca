package model

import "time"

// DateLayout is the ISO date format used for day stamps.
const DateLayout = "2006-01-02"

// TimestampLayout is the human-readable format for last_updated.
const TimestampLayout = "2006-01-02 03:04 PM"

// Snapshot is the single persisted aggregate of all dashboard state.
// It is mutated only through state.Store and written to disk as one JSON
// document after every mutation.
type Snapshot struct {
	NetWorth         *float64              `json:"net_worth"`
	Yesterday        *float64              `json:"yesterday"`
	LastUpdated      string                `json:"last_updated,omitempty"`
	Error            bool                  `json:"error"`
	Stamp            string                `json:"stamp,omitempty"`
	PortfolioDetails *PortfolioDetails     `json:"portfolio_details"`
	WeatherForecast  []DayForecast         `json:"weather_forecast"`
	WeatherHistory   []*DayForecast        `json:"weather_history"`
	WeatherStamp     string                `json:"weather_stamp,omitempty"`
	HealthStats      map[string]HealthStat `json:"health_stats"`
	Battery          *int                  `json:"battery"`
	RHTimestamps     []time.Time           `json:"rh_timestamps"`
	RHLockoutUntil   *time.Time            `json:"rh_lockout_until"`
	RobinhoodError   bool                  `json:"robinhood_error"`
}

// WeatherHistorySlots is the fixed length of the rolling weather history
// (yesterday, day before yesterday).
const WeatherHistorySlots = 2

// DefaultSnapshot returns an all-default snapshot as created at first start.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		WeatherForecast: []DayForecast{},
		WeatherHistory:  make([]*DayForecast, WeatherHistorySlots),
		RHTimestamps:    []time.Time{},
	}
}

// Normalize repairs shape defects after loading a persisted snapshot:
// nil slices and a weather history of the wrong length are reset to their
// default shape. Unknown on-disk keys were already dropped by the decoder.
func (s *Snapshot) Normalize() {
	if s.WeatherForecast == nil {
		s.WeatherForecast = []DayForecast{}
	}
	if len(s.WeatherHistory) != WeatherHistorySlots {
		s.WeatherHistory = make([]*DayForecast, WeatherHistorySlots)
	}
	if s.RHTimestamps == nil {
		s.RHTimestamps = []time.Time{}
	}
}

// Clone returns a deep copy so readers never share slices or maps with the
// store's live snapshot.
func (s *Snapshot) Clone() Snapshot {
	out := *s
	out.NetWorth = cloneFloat(s.NetWorth)
	out.Yesterday = cloneFloat(s.Yesterday)
	if s.Battery != nil {
		b := *s.Battery
		out.Battery = &b
	}
	if s.RHLockoutUntil != nil {
		t := *s.RHLockoutUntil
		out.RHLockoutUntil = &t
	}
	if s.PortfolioDetails != nil {
		pd := s.PortfolioDetails.Clone()
		out.PortfolioDetails = &pd
	}
	out.WeatherForecast = append([]DayForecast(nil), s.WeatherForecast...)
	out.WeatherHistory = make([]*DayForecast, len(s.WeatherHistory))
	for i, d := range s.WeatherHistory {
		if d != nil {
			c := *d
			out.WeatherHistory[i] = &c
		}
	}
	if s.HealthStats != nil {
		out.HealthStats = make(map[string]HealthStat, len(s.HealthStats))
		for k, v := range s.HealthStats {
			out.HealthStats[k] = v
		}
	}
	out.RHTimestamps = append([]time.Time(nil), s.RHTimestamps...)
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
