package recorder

// NetWorthRecord holds one successful net-worth refresh result.
type NetWorthRecord struct {
	Total     float64
	Yesterday float64
	Delta     float64
}

// RefreshEvent records the outcome of one refresh job run.
type RefreshEvent struct {
	Job     string // "net_worth", "weather", "health"
	Success bool
	Note    string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordNetWorth(rec *NetWorthRecord) error
	RecordRefresh(evt *RefreshEvent) error
	Close() error
}
