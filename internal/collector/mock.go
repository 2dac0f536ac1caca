package collector

import (
	"context"

	"HomeDash/internal/model"
)

// MockPortfolioFetcher returns controllable fixed data for development and
// testing.
type MockPortfolioFetcher struct {
	Portfolio *model.FidelityPortfolio
	Err       error
}

func (m *MockPortfolioFetcher) Name() string { return "mock-portfolio" }

func (m *MockPortfolioFetcher) FetchPortfolio(context.Context) (*model.FidelityPortfolio, error) {
	return m.Portfolio, m.Err
}

// MockPositionsFetcher returns fixed trading-app data.
type MockPositionsFetcher struct {
	Result *model.RobinhoodResult
	Err    error
	Calls  int
}

func (m *MockPositionsFetcher) Name() string { return "mock-positions" }

func (m *MockPositionsFetcher) FetchPositions(context.Context) (*model.RobinhoodResult, error) {
	m.Calls++
	return m.Result, m.Err
}

// MockWeatherFetcher returns a fixed forecast.
type MockWeatherFetcher struct {
	Forecast []model.DayForecast
	Err      error
}

func (m *MockWeatherFetcher) Name() string { return "mock-weather" }

func (m *MockWeatherFetcher) FetchWeekly(context.Context) ([]model.DayForecast, error) {
	return m.Forecast, m.Err
}

// MockHealthFetcher returns a fixed summary.
type MockHealthFetcher struct {
	Summary map[string]model.HealthStat
	Err     error
}

func (m *MockHealthFetcher) Name() string { return "mock-health" }

func (m *MockHealthFetcher) FetchSummary(context.Context) (map[string]model.HealthStat, error) {
	return m.Summary, m.Err
}
