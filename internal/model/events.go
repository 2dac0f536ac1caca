package model

// CalendarEvent is a single calendar entry shaped for the dashboard.
type CalendarEvent struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Title string `json:"title"`
}

// NewsItem is a single headline from the news feed.
type NewsItem struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}
