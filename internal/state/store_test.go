package state

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"HomeDash/internal/model"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path)

	lockout := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	store.Update(func(s *model.Snapshot) {
		nw, yd := 1234.56, 1200.0
		battery := 87
		s.NetWorth = &nw
		s.Yesterday = &yd
		s.Battery = &battery
		s.Stamp = "2024-03-01"
		s.LastUpdated = "2024-03-01 09:00 AM"
		s.WeatherStamp = "2024-03-01"
		s.WeatherForecast = []model.DayForecast{{Date: "2024-03-01", Max: 40, Min: 30, Icon: "sun", Desc: "Clear"}}
		hist := model.DayForecast{Date: "2024-02-29", Max: 38, Min: 29}
		s.WeatherHistory[1] = &hist
		s.HealthStats = map[string]model.HealthStat{
			"step_count": {Name: "Steps", Avg: 9000, Change: -3.5},
		}
		s.PortfolioDetails = &model.PortfolioDetails{
			TotalValue: 1234.56,
			Fidelity:   []model.Account{{Name: "Brokerage", Balance: 1000}},
			Robinhood:  []model.Position{{Symbol: "AAPL", Value: 234.56, Quantity: 1}},
		}
		s.RHTimestamps = []time.Time{time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
		s.RHLockoutUntil = &lockout
		s.RobinhoodError = true
	})

	want := store.View()
	reloaded := NewStore(path).View()
	if !reflect.DeepEqual(want, reloaded) {
		t.Fatalf("round-trip mismatch:\nsaved:    %+v\nreloaded: %+v", want, reloaded)
	}
}

func TestLoadSnapshot_MissingFileYieldsDefaults(t *testing.T) {
	snap := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	if snap.NetWorth != nil || snap.Error {
		t.Errorf("expected default snapshot, got %+v", snap)
	}
	if len(snap.WeatherHistory) != model.WeatherHistorySlots {
		t.Errorf("expected %d history slots, got %d", model.WeatherHistorySlots, len(snap.WeatherHistory))
	}
}

func TestLoadSnapshot_UnknownKeysIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	content := `{"net_worth": 500.5, "some_future_field": {"a": 1}, "another": [1,2,3]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	snap := LoadSnapshot(path)
	if snap.NetWorth == nil || *snap.NetWorth != 500.5 {
		t.Fatalf("expected net_worth 500.5, got %v", snap.NetWorth)
	}
}

func TestLoadSnapshot_WrongLengthHistoryReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	content := `{"net_worth": 100, "weather_history": [null, null, null, null]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	snap := LoadSnapshot(path)
	if len(snap.WeatherHistory) != model.WeatherHistorySlots {
		t.Fatalf("expected history reset to %d slots, got %d", model.WeatherHistorySlots, len(snap.WeatherHistory))
	}
	if snap.NetWorth == nil || *snap.NetWorth != 100 {
		t.Errorf("other fields must survive the reset, got %v", snap.NetWorth)
	}
}

func TestLoadSnapshot_MalformedFileKeepsValidFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	// stamp has the wrong type; the decoder still fills the earlier fields
	content := `{"net_worth": 42.0, "stamp": 12345}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	snap := LoadSnapshot(path)
	if snap.NetWorth == nil || *snap.NetWorth != 42.0 {
		t.Fatalf("expected valid fields kept, got %v", snap.NetWorth)
	}
	if snap.Stamp != "" {
		t.Errorf("expected bad-typed field defaulted, got %q", snap.Stamp)
	}
}

func TestUpdate_PersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path)
	store.Update(func(s *model.Snapshot) {
		b := 55
		s.Battery = &b
	})

	snap := LoadSnapshot(path)
	if snap.Battery == nil || *snap.Battery != 55 {
		t.Fatalf("expected battery persisted to disk, got %v", snap.Battery)
	}
}

func TestView_ReturnsIndependentCopy(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	store.Update(func(s *model.Snapshot) {
		s.WeatherForecast = []model.DayForecast{{Date: "2024-03-01"}}
	})

	view := store.View()
	view.WeatherForecast[0].Date = "mutated"

	if store.View().WeatherForecast[0].Date != "2024-03-01" {
		t.Fatal("View must return a deep copy, not share slices with the store")
	}
}
