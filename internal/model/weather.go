package model

// DayForecast is one day of weather data, immutable once fetched for a date.
type DayForecast struct {
	Date       string   `json:"date"`
	Max        int      `json:"max"`
	Min        int      `json:"min"`
	Code       int      `json:"code"`
	Icon       string   `json:"icon"`
	Desc       string   `json:"desc"`
	UVIndexMax *float64 `json:"uv_index_max"`
	SnowSum    float64  `json:"snow_sum"`
}
