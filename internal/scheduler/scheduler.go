package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"MathUtils/internal/batch"
	"MathUtils/internal/model"

	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned by RunNow when another batch is still running.
var ErrRunInProgress = errors.New("batch run already in progress")

// Scheduler re-evaluates the job file on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Evaluator *batch.Evaluator
	JobsPath  string
	Ctx       context.Context

	running sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, ev *batch.Evaluator, jobsPath string) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Evaluator: ev,
		JobsPath:  jobsPath,
		Ctx:       ctx,
	}
}

// Register adds the batch task under the given six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.batchTask); err != nil {
		return fmt.Errorf("register batch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow reloads the job file and evaluates it immediately.
func (s *Scheduler) RunNow() ([]model.Result, error) {
	jobs, err := batch.LoadJobs(s.JobsPath)
	if err != nil {
		return nil, err
	}
	return s.RunJobs(jobs)
}

// RunJobs evaluates jobs unless another run is in progress.
func (s *Scheduler) RunJobs(jobs []model.Job) ([]model.Result, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	results, err := s.Evaluator.Run(s.Ctx, jobs)
	failed := 0
	for i := range results {
		if !results[i].OK() {
			failed++
		}
	}
	log.Printf("[INFO] batch run: %d jobs, %d evaluated, %d failed", len(jobs), len(results), failed)
	return results, err
}

func (s *Scheduler) batchTask() {
	log.Println("[INFO] running scheduled batch")
	if _, err := s.RunNow(); err != nil {
		log.Printf("[ERROR] scheduled batch: %v", err)
	}
}
