package batch

import (
	"errors"
	"fmt"
	"os"

	"MathUtils/internal/model"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrArgumentCount    = errors.New("wrong number of arguments")
)

type jobFile struct {
	Jobs []model.Job `yaml:"jobs"`
}

// LoadJobs reads a YAML job file with a top-level "jobs" list.
func LoadJobs(path string) ([]model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	var f jobFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}
	return f.Jobs, nil
}

// Validate checks that job names a known operation with usable arguments.
// An average over no values is valid and evaluates to 0.
func Validate(job model.Job) error {
	switch job.Op {
	case model.OpAverage, model.OpDiscount:
		return nil
	case model.OpMax:
		if len(job.Ints) != 3 {
			return fmt.Errorf("%w: max takes 3 ints, got %d", ErrArgumentCount, len(job.Ints))
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, job.Op)
	}
}
