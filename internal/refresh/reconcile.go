package refresh

import "HomeDash/internal/model"

// reconcileNetWorth applies the day-rollover rule: yesterday is reseeded only
// on the first refresh of a new calendar day, carrying forward the prior
// day's close. On a first-ever run with no prior close, today's total seeds
// yesterday (plain carry-forward variant).
func reconcileNetWorth(s *model.Snapshot, total float64, today string) {
	if s.Stamp != today {
		if s.NetWorth != nil {
			prior := *s.NetWorth
			s.Yesterday = &prior
		} else {
			seed := total
			s.Yesterday = &seed
		}
	} else if s.Yesterday == nil {
		seed := total
		s.Yesterday = &seed
	}
	nw := total
	s.NetWorth = &nw
	s.Stamp = today
}

// shiftWeatherHistory rolls the 2-slot history before overwriting the stored
// forecast. When the stored forecast's leading day no longer matches the
// fetch date, the entry for the previous weather stamp (found anywhere in the
// old forecast, nil if absent) moves into the most-recent slot and the prior
// occupant shifts back one slot, dropping the oldest.
func shiftWeatherHistory(s *model.Snapshot, fresh []model.DayForecast, today string) {
	if len(s.WeatherForecast) > 0 && s.WeatherForecast[0].Date != today {
		var departed *model.DayForecast
		if s.WeatherStamp != "" {
			for i := range s.WeatherForecast {
				if s.WeatherForecast[i].Date == s.WeatherStamp {
					d := s.WeatherForecast[i]
					departed = &d
					break
				}
			}
		}
		s.WeatherHistory[0] = s.WeatherHistory[1]
		s.WeatherHistory[1] = departed
	}
	s.WeatherForecast = fresh
	s.WeatherStamp = today
}
