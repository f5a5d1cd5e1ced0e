package recorder

import "TimeSeriesML/internal/scaler"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *Run) error                   { return nil }
func (n *NoopRecorder) SaveScalers(_ string, _ scaler.Set) error { return nil }
func (n *NoopRecorder) LoadScalers(_ string) (scaler.Set, error) { return nil, ErrNotFound }
func (n *NoopRecorder) LatestRun(_ string) (*Run, error)         { return nil, ErrNotFound }
func (n *NoopRecorder) Close() error                             { return nil }
