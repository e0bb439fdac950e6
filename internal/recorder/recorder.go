package recorder

import "MathUtils/internal/model"

// Recorder persists evaluation history for later inspection.
type Recorder interface {
	RecordResult(res *model.Result) error
	// Recent returns up to limit results, newest first.
	Recent(limit int) ([]model.Result, error)
	Close() error
}
