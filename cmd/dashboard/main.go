package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"HomeDash/internal/collector"
	"HomeDash/internal/config"
	"HomeDash/internal/googleapi"
	"HomeDash/internal/ratelimit"
	"HomeDash/internal/recorder"
	"HomeDash/internal/refresh"
	"HomeDash/internal/scheduler"
	"HomeDash/internal/state"
	"HomeDash/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] HomeDash starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Weather.Timezone)
	if err != nil {
		log.Fatalf("[FATAL] load timezone: %v", err)
	}

	// Init state store
	store := state.NewStore(cfg.State.File)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Google API clients share credentials but own separate tokens.
	calTokens := googleapi.NewTokenManager(cfg.Google.CredentialsFile, cfg.Google.CalendarToken,
		cfg.Google.CallbackPort, googleapi.CalendarScope)
	driveTokens := googleapi.NewTokenManager(cfg.Google.CredentialsFile, cfg.Google.DriveToken,
		cfg.Google.CallbackPort, googleapi.DriveScope)
	cal := googleapi.NewCalendar(calTokens, cfg.Google.CalendarID, loc)
	drive := googleapi.NewDrive(driveTokens)

	// Init fetchers
	fidelity := collector.NewFidelityFetcher(cfg.Fidelity.Username, cfg.Fidelity.Password,
		cfg.Fidelity.TOTPSecret, cfg.Fidelity.ProfileDir, cfg.Fidelity.Headless)
	var robinhood collector.PositionsFetcher
	if cfg.Robinhood.Username != "" {
		robinhood = collector.NewRobinhoodFetcher(cfg.Robinhood.Username, cfg.Robinhood.Password,
			cfg.Robinhood.TOTPSecret)
	}
	weather := collector.NewOpenMeteoFetcher(cfg.Weather.Latitude, cfg.Weather.Longitude, cfg.Weather.Timezone)
	health := collector.NewHealthExportFetcher(drive, cfg.Google.HealthFolderID, cfg.State.HealthHistoryFile)
	news := collector.NewRSSFetcher(cfg.News.FeedURL, cfg.News.Source)

	// Init guard and jobs
	guard := ratelimit.NewGuard(store, cal)
	jobs := refresh.NewJobs(store, fidelity, robinhood, weather, health, guard, rec)

	// Init scheduler
	sched := scheduler.NewScheduler(jobs)
	if err := sched.Reschedule(cfg.RefreshHours()); err != nil {
		log.Fatalf("[FATAL] register triggers: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Preload data on server start
	log.Println("[INFO] performing initial data fetch...")
	go jobs.Combined()

	// Start HTTP API
	srv := web.NewServer(cfg.Server.Addr, store, cfg, sched, news, cal, loc, cfg.News.Limit)
	go func() {
		if err := srv.Start(ctx); err != nil {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()
	log.Printf("[INFO] HomeDash is running on %s. Press Ctrl+C to stop.", cfg.Server.Addr)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] HomeDash stopped")
}
