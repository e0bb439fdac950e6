package recorder

import "MathUtils/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordResult(_ *model.Result) error   { return nil }
func (n *NoopRecorder) Recent(_ int) ([]model.Result, error) { return nil, nil }
func (n *NoopRecorder) Close() error                         { return nil }
