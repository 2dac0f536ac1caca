// Package web is the HTTP query surface for the dashboard front end. It
// reads state-store snapshots and reshapes them for presentation; the only
// write paths are the battery report and the refresh-hour reconfiguration.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"HomeDash/internal/collector"
	"HomeDash/internal/config"
	"HomeDash/internal/model"
	"HomeDash/internal/scheduler"
	"HomeDash/internal/state"
)

// Server exposes the dashboard JSON API.
type Server struct {
	Addr      string
	Store     *state.Store
	Config    *config.Config
	Scheduler *scheduler.Scheduler
	News      collector.NewsFetcher
	Events    collector.EventsFetcher
	Location  *time.Location
	NewsLimit int

	now func() time.Time
}

// NewServer creates a new web server instance.
func NewServer(addr string, store *state.Store, cfg *config.Config, sched *scheduler.Scheduler,
	news collector.NewsFetcher, events collector.EventsFetcher, loc *time.Location, newsLimit int) *Server {
	return &Server{
		Addr:      addr,
		Store:     store,
		Config:    cfg,
		Scheduler: sched,
		News:      news,
		Events:    events,
		Location:  loc,
		NewsLimit: newsLimit,
		now:       time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Server) SetClock(now func() time.Time) { s.now = now }

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("GET /api/weather", s.handleWeather)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/upcoming_events", s.handleUpcomingEvents)
	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("POST /api/battery", s.handleBattery)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap := s.Store.View()

	var change *float64
	if snap.NetWorth != nil && snap.Yesterday != nil {
		d := *snap.NetWorth - *snap.Yesterday
		change = &d
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"net_worth":    snap.NetWorth,
		"change":       change,
		"last_updated": snap.LastUpdated,
		"error":        snap.Error,
		"battery":      snap.Battery,
		"details":      snap.PortfolioDetails,
	})
}

// handleWeather serves a fixed 5-slot view: two history days followed by a
// three-day forecast window aligned to today even when the stored forecast
// is a day or two stale.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	snap := s.Store.View()
	today := s.now().In(s.Location).Format(model.DateLayout)

	view := make([]*model.DayForecast, 5)
	view[0] = snap.WeatherHistory[0]
	view[1] = snap.WeatherHistory[1]

	start := 0
	if len(snap.WeatherForecast) > 0 && snap.WeatherForecast[0].Date != today {
		for i := range snap.WeatherForecast {
			if snap.WeatherForecast[i].Date == today {
				start = i
				break
			}
		}
	}
	for i := 0; i < 3; i++ {
		if idx := start + i; idx < len(snap.WeatherForecast) {
			d := snap.WeatherForecast[idx]
			view[2+i] = &d
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"forecast": view})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.Store.View()
	if snap.HealthStats == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, snap.HealthStats)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	events, err := s.Events.EventsAround(r.Context(), 2)
	if err != nil {
		log.Printf("[ERROR] fetch calendar: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Could not fetch calendar events"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.Events.Upcoming(r.Context(), 3, 30)
	if err != nil {
		log.Printf("[ERROR] fetch upcoming events: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Could not fetch upcoming events"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	items, err := s.News.FetchNews(r.Context(), s.NewsLimit)
	if err != nil {
		log.Printf("[ERROR] fetch news: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Could not fetch news"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"news": items})
}

func (s *Server) handleBattery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level *int `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Level == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "level must be an integer"})
		return
	}
	if *req.Level < 0 || *req.Level > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "level must be in [0,100]"})
		return
	}
	s.Store.Update(func(snap *model.Snapshot) {
		snap.Battery = req.Level
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hours []int `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Hours == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "hours must be a list of ints 0-23"})
		return
	}
	hours, err := normalizeHours(req.Hours)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	if err := s.Config.SetRefreshHours(hours); err != nil {
		log.Printf("[ERROR] save config: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to save config"})
		return
	}
	if err := s.Scheduler.Reschedule(hours); err != nil {
		log.Printf("[ERROR] reschedule: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to rebuild schedule"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "new_schedule": hours})
}

// normalizeHours validates, dedupes, and sorts the requested refresh hours.
func normalizeHours(in []int) ([]int, error) {
	seen := map[int]bool{}
	out := make([]int, 0, len(in))
	for _, h := range in {
		if h < 0 || h >= 24 {
			return nil, fmt.Errorf("hour %d out of range [0,24)", h)
		}
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("hours must not be empty")
	}
	sort.Ints(out)
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}
