package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"MathUtils/internal/batch"
	"MathUtils/internal/calculator"
	"MathUtils/internal/config"
	"MathUtils/internal/model"
	"MathUtils/internal/recorder"
	"MathUtils/internal/scheduler"
)

const usage = `usage: mathutils [-rounding half_up|decimal] <command> [args]

commands:
  average <x>...            rounded mean of the values (0 when none)
  max <a> <b> <c>           greatest of three integers
  discount <price> <pct>    price reduced by pct percent
  batch [file]              evaluate a job file once
  history [n]               show the last n recorded evaluations
  serve                     evaluate the job file on the configured schedule
`

// errUsage marks argument errors that should print usage and exit 2.
var errUsage = errors.New("usage")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	fs := flag.NewFlagSet("mathutils", flag.ExitOnError)
	rounding := fs.String("rounding", "", "rounding mode override (half_up or decimal)")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *rounding != "" {
		cfg.Rounding = *rounding
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, fs.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
			os.Exit(2)
		}
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	mode, err := cfg.RoundingMode()
	if err != nil {
		return err
	}
	calc := calculator.NewCalculator(mode)
	cmd, args := args[0], args[1:]

	switch cmd {
	case "average":
		values, err := parseFloats(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%.2f\n", calc.Average(values))
		return nil

	case "max":
		if len(args) != 3 {
			return fmt.Errorf("%w: max takes 3 integers", errUsage)
		}
		ints := make([]int, 3)
		for i, a := range args {
			if ints[i], err = strconv.Atoi(a); err != nil {
				return fmt.Errorf("%w: %q is not an integer", errUsage, a)
			}
		}
		fmt.Fprintf(out, "%d\n", calc.Maximum(ints[0], ints[1], ints[2]))
		return nil

	case "discount":
		if len(args) != 2 {
			return fmt.Errorf("%w: discount takes a price and a percentage", errUsage)
		}
		vals, err := parseFloats(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%.2f\n", calc.Discount(vals[0], vals[1]))
		return nil

	case "batch":
		path := cfg.Jobs.File
		if len(args) > 0 {
			path = args[0]
		}
		jobs, err := batch.LoadJobs(path)
		if err != nil {
			return err
		}
		rec := openRecorder(cfg.Database.SQLitePath)
		defer rec.Close()
		results, err := batch.NewEvaluator(calc, rec).Run(ctx, jobs)
		printResults(out, results)
		return err

	case "history":
		n := 10
		if len(args) > 0 {
			if n, err = strconv.Atoi(args[0]); err != nil || n <= 0 {
				return fmt.Errorf("%w: history count must be a positive integer", errUsage)
			}
		}
		if cfg.Database.SQLitePath == "" {
			return errors.New("history requires database.sqlite_path")
		}
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer rec.Close()
		results, err := rec.Recent(n)
		if err != nil {
			return err
		}
		printResults(out, results)
		return nil

	case "serve":
		return serve(ctx, cfg, calc)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func serve(ctx context.Context, cfg *config.Config, calc *calculator.Calculator) error {
	log.Println("[INFO] MathUtils starting...")
	rec := openRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	sched := scheduler.NewScheduler(ctx, batch.NewEvaluator(calc, rec), cfg.Jobs.File)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Background runs must finish before the scheduler stops and rec closes.
	var wg sync.WaitGroup
	defer wg.Wait()

	if cfg.Schedule.Watch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := batch.Watch(ctx, cfg.Jobs.File, func(jobs []model.Job) {
				if _, err := sched.RunJobs(jobs); err != nil {
					log.Printf("[WARN] run after reload: %v", err)
				}
			})
			if err != nil {
				log.Printf("[ERROR] watch job file: %v", err)
			}
		}()
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, evaluating job file now")
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sched.RunNow(); err != nil {
				log.Printf("[ERROR] initial batch: %v", err)
			}
		}()
	}

	log.Printf("[INFO] MathUtils is running (rounding=%s, schedule=%q). Press Ctrl+C to stop.", calc.Mode(), cfg.Schedule.Cron)
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return nil
}

// openRecorder falls back to a NoopRecorder when SQLite is unavailable.
func openRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Printf("[WARN] create database dir failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errUsage, a)
		}
		values[i] = v
	}
	return values, nil
}

func printResults(out io.Writer, results []model.Result) {
	for _, r := range results {
		name := r.Job.Name
		if name == "" {
			name = "-"
		}
		if !r.OK() {
			fmt.Fprintf(out, "%s\t%s\t%s\terror: %s\n", r.EvaluatedAt.Format("2006-01-02 15:04:05"), name, r.Job.Op, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", r.EvaluatedAt.Format("2006-01-02 15:04:05"), name, r.Job.Op,
			strconv.FormatFloat(r.Value, 'f', -1, 64))
	}
}
