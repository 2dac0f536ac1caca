package collector

import (
	"context"
	"errors"

	"HomeDash/internal/model"
)

// ErrRateLimited marks a 429-class response from a source that enforces
// server-side throttling. Callers distinguish it from generic failure.
var ErrRateLimited = errors.New("source rate limited")

// PortfolioFetcher fetches the detailed brokerage portfolio (the primary
// net-worth source).
type PortfolioFetcher interface {
	FetchPortfolio(ctx context.Context) (*model.FidelityPortfolio, error)
	Name() string
}

// PositionsFetcher fetches equity and positions from the rate-limited
// trading app.
type PositionsFetcher interface {
	FetchPositions(ctx context.Context) (*model.RobinhoodResult, error)
	Name() string
}

// WeatherFetcher fetches the 7-day forecast.
type WeatherFetcher interface {
	FetchWeekly(ctx context.Context) ([]model.DayForecast, error)
	Name() string
}

// HealthFetcher fetches the weekly health metric summary.
type HealthFetcher interface {
	FetchSummary(ctx context.Context) (map[string]model.HealthStat, error)
	Name() string
}

// NewsFetcher fetches headlines for the dashboard news panel.
type NewsFetcher interface {
	FetchNews(ctx context.Context, limit int) ([]model.NewsItem, error)
	Name() string
}

// EventsFetcher fetches calendar events for the dashboard.
type EventsFetcher interface {
	EventsAround(ctx context.Context, days int) ([]model.CalendarEvent, error)
	Upcoming(ctx context.Context, startOffset, days int) ([]model.CalendarEvent, error)
}
