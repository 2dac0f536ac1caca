package recorder

// NoopRecorder discards all records. Used when no database is configured.
type NoopRecorder struct{}

// NewNoopRecorder creates a no-op recorder.
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordNetWorth(*NetWorthRecord) error { return nil }
func (n *NoopRecorder) RecordRefresh(*RefreshEvent) error    { return nil }
func (n *NoopRecorder) Close() error                         { return nil }
