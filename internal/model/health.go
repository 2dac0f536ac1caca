package model

// HealthStat is the weekly summary of one tracked health metric.
type HealthStat struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit"`
	Avg    float64 `json:"avg"`
	Change float64 `json:"change"`
}

// HealthDay is one day of raw metric totals kept in the local history file.
type HealthDay struct {
	Date    string             `json:"date"`
	Metrics map[string]float64 `json:"metrics"`
}
