package collector

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"HomeDash/internal/model"
)

const (
	healthExportPrefix = "HealthAutoExport-"
	historyDaysToKeep  = 14
)

// healthMetricDef maps an export metric name to its dashboard label.
type healthMetricDef struct {
	Name string
	Unit string
}

var trackedMetrics = map[string]healthMetricDef{
	"apple_exercise_time": {Name: "Exercise", Unit: "min"},
	"resting_heart_rate":  {Name: "Resting HR", Unit: "bpm"},
	"active_energy":       {Name: "Calories", Unit: "kcal"},
	"step_count":          {Name: "Steps", Unit: ""},
}

// ExportDownloader fetches the newest health export document.
type ExportDownloader interface {
	LatestFileContent(ctx context.Context, folderID, namePrefix string) ([]byte, error)
}

// HealthExportFetcher implements HealthFetcher from Apple Health auto-export
// files dropped into a Drive folder. Daily totals are merged into a local
// 14-day history file so a summary survives a bad export.
type HealthExportFetcher struct {
	Drive       ExportDownloader
	FolderID    string
	HistoryFile string
	now         func() time.Time
}

// NewHealthExportFetcher creates a health fetcher.
func NewHealthExportFetcher(drive ExportDownloader, folderID, historyFile string) *HealthExportFetcher {
	return &HealthExportFetcher{
		Drive:       drive,
		FolderID:    folderID,
		HistoryFile: historyFile,
		now:         time.Now,
	}
}

func (f *HealthExportFetcher) Name() string { return "health-export" }

// FetchSummary downloads the latest export, folds it into the history file,
// and returns 7-day averages with week-over-week change per tracked metric.
func (f *HealthExportFetcher) FetchSummary(ctx context.Context) (map[string]model.HealthStat, error) {
	content, err := f.Drive.LatestFileContent(ctx, f.FolderID, healthExportPrefix)
	if err != nil {
		return nil, err
	}

	daily := parseExport(content)
	history := f.loadHistory()
	if len(daily) > 0 {
		history = mergeHistory(history, daily)
		f.saveHistory(history)
	}
	return f.weeklySummary(history), nil
}

// healthExport is the export file structure. Point dates look like
// "2024-01-02 08:15:00 -0600".
type healthExport struct {
	Data struct {
		Metrics []struct {
			Name string `json:"name"`
			Data []struct {
				Date string  `json:"date"`
				Qty  float64 `json:"qty"`
			} `json:"data"`
		} `json:"metrics"`
	} `json:"data"`
}

func parseExport(content []byte) map[string]map[string]float64 {
	var export healthExport
	if err := json.Unmarshal(content, &export); err != nil {
		log.Printf("[WARN] parse health export: %v", err)
		return nil
	}

	type samples map[string][]float64
	byDay := map[string]samples{}
	for _, metric := range export.Data.Metrics {
		if _, tracked := trackedMetrics[metric.Name]; !tracked {
			continue
		}
		for _, point := range metric.Data {
			t, err := time.Parse("2006-01-02 15:04:05 -0700", point.Date)
			if err != nil {
				continue
			}
			day := t.Format(model.DateLayout)
			if byDay[day] == nil {
				byDay[day] = samples{}
			}
			byDay[day][metric.Name] = append(byDay[day][metric.Name], point.Qty)
		}
	}

	daily := map[string]map[string]float64{}
	for day, metrics := range byDay {
		totals := map[string]float64{}
		for name, values := range metrics {
			if len(values) == 0 {
				continue
			}
			if name == "resting_heart_rate" {
				totals[name] = values[len(values)-1]
			} else {
				sum := 0.0
				for _, v := range values {
					sum += v
				}
				totals[name] = math.Round(sum*100) / 100
			}
		}
		if len(totals) > 0 {
			daily[day] = totals
		}
	}
	return daily
}

func (f *HealthExportFetcher) loadHistory() []model.HealthDay {
	data, err := os.ReadFile(f.HistoryFile)
	if err != nil {
		return nil
	}
	var history []model.HealthDay
	if err := json.Unmarshal(data, &history); err != nil {
		log.Printf("[WARN] decode health history: %v", err)
		return nil
	}
	return history
}

func (f *HealthExportFetcher) saveHistory(history []model.HealthDay) {
	data, err := json.MarshalIndent(history, "", "  ")
	if err == nil {
		err = os.WriteFile(f.HistoryFile, data, 0644)
	}
	if err != nil {
		log.Printf("[ERROR] save health history: %v", err)
	}
}

// mergeHistory overlays new daily totals onto the history, keeping the most
// recent historyDaysToKeep days sorted newest first.
func mergeHistory(history []model.HealthDay, daily map[string]map[string]float64) []model.HealthDay {
	byDate := map[string]map[string]float64{}
	for _, day := range history {
		byDate[day.Date] = day.Metrics
	}
	for date, metrics := range daily {
		byDate[date] = metrics
	}

	merged := make([]model.HealthDay, 0, len(byDate))
	for date, metrics := range byDate {
		merged = append(merged, model.HealthDay{Date: date, Metrics: metrics})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date > merged[j].Date })
	if len(merged) > historyDaysToKeep {
		merged = merged[:historyDaysToKeep]
	}
	return merged
}

func (f *HealthExportFetcher) weeklySummary(history []model.HealthDay) map[string]model.HealthStat {
	today := f.now()
	summary := make(map[string]model.HealthStat, len(trackedMetrics))

	for key, def := range trackedMetrics {
		var currentWeek, lastWeek []float64
		for _, day := range history {
			t, err := time.Parse(model.DateLayout, day.Date)
			if err != nil {
				continue
			}
			daysAgo := int(today.Sub(t).Hours() / 24)
			value := day.Metrics[key]
			switch {
			case daysAgo >= 0 && daysAgo < 7:
				currentWeek = append(currentWeek, value)
			case daysAgo >= 7 && daysAgo < 14:
				lastWeek = append(lastWeek, value)
			}
		}

		currentAvg := mean(currentWeek)
		lastAvg := mean(lastWeek)
		change := 0.0
		if lastAvg > 0 {
			change = (currentAvg - lastAvg) / lastAvg * 100
		} else if currentAvg > 0 {
			change = 100
		}

		summary[key] = model.HealthStat{
			Name:   def.Name,
			Unit:   def.Unit,
			Avg:    currentAvg,
			Change: change,
		}
	}
	return summary
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
