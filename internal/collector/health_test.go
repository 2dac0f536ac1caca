package collector

import (
	"testing"
	"time"

	"HomeDash/internal/model"
)

func TestParseExport_AggregatesByDay(t *testing.T) {
	content := []byte(`{
		"data": {"metrics": [
			{"name": "step_count", "data": [
				{"date": "2024-03-01 08:00:00 -0600", "qty": 4000},
				{"date": "2024-03-01 18:00:00 -0600", "qty": 5000},
				{"date": "2024-03-02 09:00:00 -0600", "qty": 7000}
			]},
			{"name": "resting_heart_rate", "data": [
				{"date": "2024-03-01 06:00:00 -0600", "qty": 58},
				{"date": "2024-03-01 22:00:00 -0600", "qty": 55}
			]},
			{"name": "untracked_metric", "data": [
				{"date": "2024-03-01 06:00:00 -0600", "qty": 1}
			]}
		]}
	}`)

	daily := parseExport(content)
	if len(daily) != 2 {
		t.Fatalf("expected 2 days, got %d", len(daily))
	}
	if got := daily["2024-03-01"]["step_count"]; got != 9000 {
		t.Errorf("expected step totals summed to 9000, got %v", got)
	}
	if got := daily["2024-03-01"]["resting_heart_rate"]; got != 55 {
		t.Errorf("expected last resting HR reading, got %v", got)
	}
	if _, ok := daily["2024-03-01"]["untracked_metric"]; ok {
		t.Error("untracked metrics must be dropped")
	}
}

func TestParseExport_BadContent(t *testing.T) {
	if daily := parseExport([]byte(`not json`)); len(daily) != 0 {
		t.Errorf("expected empty result for bad content, got %v", daily)
	}
}

func TestMergeHistory_OverlaysAndTrims(t *testing.T) {
	var history []model.HealthDay
	for d := 1; d <= 15; d++ {
		history = append(history, model.HealthDay{
			Date:    time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC).Format(model.DateLayout),
			Metrics: map[string]float64{"step_count": 1000},
		})
	}
	daily := map[string]map[string]float64{
		"2024-03-15": {"step_count": 9999}, // overwrite
		"2024-03-16": {"step_count": 5000}, // new day
	}

	merged := mergeHistory(history, daily)
	if len(merged) != historyDaysToKeep {
		t.Fatalf("expected history trimmed to %d days, got %d", historyDaysToKeep, len(merged))
	}
	if merged[0].Date != "2024-03-16" {
		t.Fatalf("expected newest first, got %s", merged[0].Date)
	}
	if merged[1].Metrics["step_count"] != 9999 {
		t.Errorf("expected overlay to replace existing day, got %v", merged[1].Metrics)
	}
}

func TestWeeklySummary_AveragesAndChange(t *testing.T) {
	f := NewHealthExportFetcher(nil, "", "")
	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }

	var history []model.HealthDay
	for daysAgo := 0; daysAgo < 14; daysAgo++ {
		steps := 1000.0 // last week
		if daysAgo < 7 {
			steps = 2000.0 // current week
		}
		history = append(history, model.HealthDay{
			Date:    now.AddDate(0, 0, -daysAgo).Format(model.DateLayout),
			Metrics: map[string]float64{"step_count": steps},
		})
	}

	summary := f.weeklySummary(history)
	steps := summary["step_count"]
	if steps.Avg != 2000 {
		t.Fatalf("expected current-week average 2000, got %v", steps.Avg)
	}
	if steps.Change != 100 {
		t.Fatalf("expected +100%% change, got %v", steps.Change)
	}
	if steps.Name != "Steps" {
		t.Errorf("expected metric label, got %q", steps.Name)
	}
}

func TestWeeklySummary_FromZeroBaseline(t *testing.T) {
	f := NewHealthExportFetcher(nil, "", "")
	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }

	history := []model.HealthDay{
		{Date: now.Format(model.DateLayout), Metrics: map[string]float64{"active_energy": 500}},
	}

	summary := f.weeklySummary(history)
	if got := summary["active_energy"].Change; got != 100 {
		t.Errorf("expected 100%% change from zero baseline, got %v", got)
	}
	if got := summary["step_count"].Avg; got != 0 {
		t.Errorf("expected zero average for missing metric, got %v", got)
	}
}
