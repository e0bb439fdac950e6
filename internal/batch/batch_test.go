package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"MathUtils/internal/calculator"
	"MathUtils/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJobs = `
jobs:
  - name: basket
    op: average
    values: [10, 20, 30.5]
  - name: podium
    op: max
    ints: [-5, -1, -10]
  - name: sale
    op: discount
    price: 100
    percent: 10
`

func writeJobs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type captureRecorder struct {
	results []model.Result
	err     error
}

func (c *captureRecorder) RecordResult(res *model.Result) error {
	c.results = append(c.results, *res)
	return c.err
}
func (c *captureRecorder) Recent(int) ([]model.Result, error) { return c.results, nil }
func (c *captureRecorder) Close() error                       { return nil }

func TestLoadJobs(t *testing.T) {
	jobs, err := LoadJobs(writeJobs(t, sampleJobs))
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, model.OpAverage, jobs[0].Op)
	assert.Equal(t, []float64{10, 20, 30.5}, jobs[0].Values)
	assert.Equal(t, []int{-5, -1, -10}, jobs[1].Ints)
	assert.Equal(t, 100.0, jobs[2].Price)
	assert.Equal(t, 10.0, jobs[2].Percent)
}

func TestLoadJobs_Errors(t *testing.T) {
	_, err := LoadJobs(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = LoadJobs(writeJobs(t, "jobs: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse jobs")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(model.Job{Op: model.OpAverage}))
	assert.NoError(t, Validate(model.Job{Op: model.OpDiscount}))
	assert.NoError(t, Validate(model.Job{Op: model.OpMax, Ints: []int{1, 2, 3}}))

	assert.True(t, errors.Is(Validate(model.Job{Op: model.OpMax, Ints: []int{1, 2}}), ErrArgumentCount))
	assert.True(t, errors.Is(Validate(model.Job{Op: "median"}), ErrUnknownOperation))
}

func TestEvaluate(t *testing.T) {
	e := NewEvaluator(calculator.NewCalculator(calculator.RoundHalfUp), nil)

	cases := []struct {
		job  model.Job
		want float64
	}{
		{model.Job{Op: model.OpAverage, Values: []float64{10, 20, 30.5}}, 20.17},
		{model.Job{Op: model.OpAverage}, 0},
		{model.Job{Op: model.OpMax, Ints: []int{1, 2, 3}}, 3},
		{model.Job{Op: model.OpDiscount, Price: 100, Percent: 10}, 90},
	}
	for _, tc := range cases {
		res := e.Evaluate(tc.job)
		assert.True(t, res.OK(), res.Err)
		assert.Equal(t, tc.want, res.Value, "op %s", tc.job.Op)
		assert.Equal(t, calculator.RoundHalfUp, res.Rounding)
		assert.False(t, res.EvaluatedAt.IsZero())
	}

	bad := e.Evaluate(model.Job{Op: model.OpMax, Ints: []int{1}})
	assert.False(t, bad.OK())
	assert.Contains(t, bad.Err, "wrong number of arguments")
}

func TestEvaluate_DecimalRounding(t *testing.T) {
	e := NewEvaluator(calculator.NewCalculator(calculator.RoundDecimal), nil)
	res := e.Evaluate(model.Job{Op: model.OpAverage, Values: []float64{1.005}})
	assert.Equal(t, 1.01, res.Value)
	assert.Equal(t, calculator.RoundDecimal, res.Rounding)
}

func TestRun_RecordsEveryResult(t *testing.T) {
	rec := &captureRecorder{}
	e := NewEvaluator(calculator.NewCalculator(calculator.RoundHalfUp), rec)
	jobs, err := LoadJobs(writeJobs(t, sampleJobs))
	require.NoError(t, err)
	jobs = append(jobs, model.Job{Name: "bogus", Op: "median"})

	results, err := e.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, []float64{20.17, -1, 90}, []float64{results[0].Value, results[1].Value, results[2].Value})
	assert.False(t, results[3].OK())
	assert.Len(t, rec.results, 4)
}

func TestRun_RecorderFailureDoesNotAbort(t *testing.T) {
	rec := &captureRecorder{err: errors.New("disk full")}
	e := NewEvaluator(calculator.NewCalculator(calculator.RoundHalfUp), rec)

	results, err := e.Run(context.Background(), []model.Job{
		{Op: model.OpMax, Ints: []int{5, 5, 5}},
		{Op: model.OpDiscount, Price: 50, Percent: 50},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 25.0, results[1].Value)
}

func TestRun_Cancelled(t *testing.T) {
	e := NewEvaluator(calculator.NewCalculator(calculator.RoundHalfUp), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := e.Run(ctx, []model.Job{{Op: model.OpAverage}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

// waitForReload keeps applying save until onChange delivers a job list
// whose first op is want.
func waitForReload(t *testing.T, changed <-chan []model.Job, want model.Operation, save func()) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case jobs := <-changed:
			// A truncating write can surface as an empty file first.
			if len(jobs) == 1 && jobs[0].Op == want {
				return
			}
		case <-tick.C:
			save()
		case <-deadline:
			t.Fatalf("timed out waiting for reload with op %q", want)
		}
	}
}

func startWatch(t *testing.T, path string) (<-chan []model.Job, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan []model.Job, 64)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(jobs []model.Job) {
			select {
			case changed <- jobs:
			default:
			}
		})
	}()
	stop := func() {
		cancel()
		assert.NoError(t, <-done)
	}
	return changed, stop
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeJobs(t, sampleJobs)
	changed, stop := startWatch(t, path)
	defer stop()

	updated := "jobs:\n  - op: max\n    ints: [1, 2, 3]\n"
	waitForReload(t, changed, model.OpMax, func() {
		require.NoError(t, os.WriteFile(path, []byte(updated), 0644))
	})
}

func TestWatch_SurvivesAtomicSave(t *testing.T) {
	path := writeJobs(t, sampleJobs)
	changed, stop := startWatch(t, path)
	defer stop()

	renameSave := func(content string) func() {
		return func() {
			tmp := path + ".tmp"
			require.NoError(t, os.WriteFile(tmp, []byte(content), 0644))
			require.NoError(t, os.Rename(tmp, path))
		}
	}

	waitForReload(t, changed, model.OpMax, renameSave("jobs:\n  - op: max\n    ints: [1, 2, 3]\n"))
	waitForReload(t, changed, model.OpDiscount, renameSave("jobs:\n  - op: discount\n    price: 10\n"))

	// An in-place write after the rename is still seen.
	waitForReload(t, changed, model.OpAverage, func() {
		require.NoError(t, os.WriteFile(path, []byte("jobs:\n  - op: average\n"), 0644))
	})
}

func TestWatch_IgnoresSiblingFiles(t *testing.T) {
	path := writeJobs(t, sampleJobs)
	changed, stop := startWatch(t, path)
	defer stop()

	sibling := filepath.Join(filepath.Dir(path), "other.yaml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(sibling, []byte("jobs: []\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}
	select {
	case jobs := <-changed:
		t.Fatalf("unexpected reload: %v", jobs)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "jobs.yaml"), func([]model.Job) {})
	assert.Error(t, err)
}
