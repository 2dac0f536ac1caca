package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Fidelity struct {
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
		TOTPSecret string `yaml:"totp_secret"`
		Headless   bool   `yaml:"headless"`
		ProfileDir string `yaml:"profile_dir"`
	} `yaml:"fidelity"`
	Robinhood struct {
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
		TOTPSecret string `yaml:"totp_secret"`
	} `yaml:"robinhood"`
	Weather struct {
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
		Timezone  string  `yaml:"timezone"`
	} `yaml:"weather"`
	Google struct {
		CredentialsFile string `yaml:"credentials_file"`
		CalendarToken   string `yaml:"calendar_token"`
		DriveToken      string `yaml:"drive_token"`
		CalendarID      string `yaml:"calendar_id"`
		HealthFolderID  string `yaml:"health_folder_id"`
		CallbackPort    int    `yaml:"callback_port"`
	} `yaml:"google"`
	News struct {
		FeedURL string `yaml:"feed_url"`
		Source  string `yaml:"source"`
		Limit   int    `yaml:"limit"`
	} `yaml:"news"`
	Schedule struct {
		RefreshHours []int `yaml:"refresh_hours"`
	} `yaml:"schedule"`
	State struct {
		File              string `yaml:"file"`
		HealthHistoryFile string `yaml:"health_history_file"`
	} `yaml:"state"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	mu   sync.Mutex
	path string
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{path: path}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FIDELITY_USERNAME"); v != "" {
		cfg.Fidelity.Username = v
	}
	if v := os.Getenv("FIDELITY_PASSWORD"); v != "" {
		cfg.Fidelity.Password = v
	}
	if v := os.Getenv("ROBINHOOD_USERNAME"); v != "" {
		cfg.Robinhood.Username = v
	}
	if v := os.Getenv("ROBINHOOD_PASSWORD"); v != "" {
		cfg.Robinhood.Password = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REFRESH_HOURS"); v != "" {
		var hours []int
		for _, part := range strings.Split(v, ",") {
			if h, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				hours = append(hours, h)
			}
		}
		if len(hours) > 0 {
			cfg.Schedule.RefreshHours = hours
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Weather.Latitude == 0 && cfg.Weather.Longitude == 0 {
		cfg.Weather.Latitude = 41.8781
		cfg.Weather.Longitude = -87.6298
	}
	if cfg.Weather.Timezone == "" {
		cfg.Weather.Timezone = "America/Chicago"
	}
	if cfg.Google.CredentialsFile == "" {
		cfg.Google.CredentialsFile = "google_credentials.json"
	}
	if cfg.Google.CalendarToken == "" {
		cfg.Google.CalendarToken = "data/calendar_token.json"
	}
	if cfg.Google.DriveToken == "" {
		cfg.Google.DriveToken = "data/drive_token.json"
	}
	if cfg.Google.CalendarID == "" {
		cfg.Google.CalendarID = "primary"
	}
	if cfg.Google.CallbackPort == 0 {
		cfg.Google.CallbackPort = 8080
	}
	if cfg.News.FeedURL == "" {
		cfg.News.FeedURL = "http://feeds.bbci.co.uk/news/world/rss.xml"
	}
	if cfg.News.Source == "" {
		cfg.News.Source = "BBC World"
	}
	if cfg.News.Limit == 0 {
		cfg.News.Limit = 5
	}
	if len(cfg.Schedule.RefreshHours) == 0 {
		cfg.Schedule.RefreshHours = []int{8, 17}
	}
	if cfg.State.File == "" {
		cfg.State.File = "data/state.json"
	}
	if cfg.State.HealthHistoryFile == "" {
		cfg.State.HealthHistoryFile = "data/health_data.json"
	}
	if cfg.Fidelity.ProfileDir == "" {
		cfg.Fidelity.ProfileDir = "data/fidelity_profile"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Fidelity.Username == "" || c.Fidelity.Password == "" {
		return fmt.Errorf("fidelity credentials are required")
	}
	for _, hr := range c.Schedule.RefreshHours {
		if hr < 0 || hr > 23 {
			return fmt.Errorf("refresh hour %d out of range [0,24)", hr)
		}
	}
	return nil
}

// SetRefreshHours replaces the refresh hours and writes the config back to
// disk so the schedule survives a restart.
func (c *Config) SetRefreshHours(hours []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Schedule.RefreshHours = hours

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// RefreshHours returns a copy of the configured refresh hours.
func (c *Config) RefreshHours() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.Schedule.RefreshHours...)
}
