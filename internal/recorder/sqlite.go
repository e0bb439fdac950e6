package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"MathUtils/internal/calculator"
	"MathUtils/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists evaluation results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection keeps the busy timeout in effect for every statement.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			job_name  TEXT,
			op        TEXT NOT NULL,
			inputs    TEXT,
			result    REAL,
			rounding  TEXT,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_ts ON evaluations(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordResult(res *model.Result) error {
	inputs, err := json.Marshal(toInputs(res.Job))
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	ts := res.EvaluatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO evaluations
		(timestamp, job_name, op, inputs, result, rounding, error)
		VALUES (?,?,?,?,?,?,?)`,
		ts.Unix(), res.Job.Name, string(res.Job.Op), string(inputs),
		res.Value, string(res.Rounding), res.Err,
	)
	return err
}

func (r *SQLiteRecorder) Recent(limit int) ([]model.Result, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(`SELECT timestamp, inputs, result, rounding, error
		FROM evaluations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []model.Result
	for rows.Next() {
		var (
			ts       int64
			inputs   string
			rounding string
			stored   jobInputs
			res      model.Result
		)
		if err := rows.Scan(&ts, &inputs, &res.Value, &rounding, &res.Err); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		if err := json.Unmarshal([]byte(inputs), &stored); err != nil {
			return nil, fmt.Errorf("decode inputs: %w", err)
		}
		res.Job = stored.job()
		res.Rounding = calculator.RoundingMode(rounding)
		res.EvaluatedAt = time.Unix(ts, 0)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
