package batch

import (
	"context"
	"log"
	"time"

	"MathUtils/internal/calculator"
	"MathUtils/internal/model"
	"MathUtils/internal/recorder"
)

// Evaluator runs jobs through a Calculator and records the results.
type Evaluator struct {
	Calc     *calculator.Calculator
	Recorder recorder.Recorder
}

// NewEvaluator creates an Evaluator. A nil recorder disables recording.
func NewEvaluator(calc *calculator.Calculator, rec recorder.Recorder) *Evaluator {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Evaluator{Calc: calc, Recorder: rec}
}

// Evaluate computes a single job. Invalid jobs produce a Result with Err set.
func (e *Evaluator) Evaluate(job model.Job) model.Result {
	res := model.Result{
		Job:         job,
		Rounding:    e.Calc.Mode(),
		EvaluatedAt: time.Now(),
	}
	if err := Validate(job); err != nil {
		res.Err = err.Error()
		return res
	}

	switch job.Op {
	case model.OpAverage:
		res.Value = e.Calc.Average(job.Values)
	case model.OpMax:
		res.Value = float64(e.Calc.Maximum(job.Ints[0], job.Ints[1], job.Ints[2]))
	case model.OpDiscount:
		res.Value = e.Calc.Discount(job.Price, job.Percent)
	}
	return res
}

// Run evaluates jobs in order and records each result. Recording failures
// are logged and do not stop the batch. Run returns early with ctx.Err()
// once ctx is cancelled.
func (e *Evaluator) Run(ctx context.Context, jobs []model.Job) ([]model.Result, error) {
	results := make([]model.Result, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := e.Evaluate(job)
		if !res.OK() {
			log.Printf("[WARN] job %q: %s", job.Name, res.Err)
		}
		if err := e.Recorder.RecordResult(&res); err != nil {
			log.Printf("[ERROR] record result: %v", err)
		}
		results = append(results, res)
	}
	return results, nil
}
