package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Common errors
var (
	ErrConnectionFailed = errors.New("database connection failed")
	ErrQueryTimeout     = errors.New("query timeout")
	ErrPoolExhausted    = errors.New("connection pool exhausted")
	ErrNotFound         = errors.New("not found")
)

// Run is one completed algorithm execution
type Run struct {
	ID              string   `json:"id"`
	Algorithm       string   `json:"algorithm"`
	Qubits          int      `json:"qubits"`
	Hidden          string   `json:"hidden"`
	Result          string   `json:"result"`
	Solved          bool     `json:"solved"`
	SamplesAccepted int      `json:"samples_accepted"`
	SamplesRejected int      `json:"samples_rejected"`
	Equations       []string `json:"equations"`
	Error           string   `json:"error,omitempty"`
	DurationMs      int64    `json:"duration_ms"`
	CreatedAt       string   `json:"created_at"`
}

// Stats holds statistics
type Stats struct {
	TotalRuns       int  `json:"total_runs"`
	SolvedRuns      int  `json:"solved_runs"`
	FailedRuns      int  `json:"failed_runs"`
	SamplesAccepted int  `json:"samples_accepted"`
	SamplesRejected int  `json:"samples_rejected"`
	Healthy         bool `json:"healthy"`
}

// HealthStatus represents database health
type HealthStatus struct {
	Connected       bool   `json:"connected"`
	LatencyMs       int64  `json:"latency_ms"`
	OpenConnections int    `json:"open_connections"`
	Error           string `json:"error,omitempty"`
}

// DB wraps database operations
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(1 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		-- One row per completed algorithm execution
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			algorithm TEXT NOT NULL,
			qubits SMALLINT NOT NULL,
			hidden TEXT NOT NULL,
			result TEXT NOT NULL,
			solved BOOLEAN NOT NULL,
			samples_accepted INT NOT NULL,
			samples_rejected INT NOT NULL,
			equations TEXT[] NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_runs_algorithm ON runs(algorithm);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`)
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Health checks database connectivity
func (db *DB) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{}
	start := time.Now()
	err := db.conn.PingContext(ctx)
	status.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Connected = true
	status.OpenConnections = db.conn.Stats().OpenConnections
	return status
}

func (db *DB) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "53300":
			return fmt.Errorf("%w: %v", ErrPoolExhausted, err)
		case "57014":
			return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return err
}

// SaveRun persists a completed run
func (db *DB) SaveRun(ctx context.Context, run *Run) error {
	equations := run.Equations
	if equations == nil {
		equations = []string{}
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO runs
		 (id, algorithm, qubits, hidden, result, solved, samples_accepted, samples_rejected, equations, error, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		run.ID, run.Algorithm, run.Qubits, run.Hidden, run.Result, run.Solved,
		run.SamplesAccepted, run.SamplesRejected, pq.Array(equations),
		run.Error, run.DurationMs)
	return db.wrapError(err)
}

// GetRuns returns the most recent runs, newest first
func (db *DB) GetRuns(ctx context.Context, limit int) ([]Run, error) {
	return db.queryRuns(ctx,
		`SELECT id, algorithm, qubits, hidden, result, solved, samples_accepted, samples_rejected, equations, error, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
}

// GetRunsByAlgorithm returns the most recent runs for one algorithm
func (db *DB) GetRunsByAlgorithm(ctx context.Context, algorithm string, limit int) ([]Run, error) {
	return db.queryRuns(ctx,
		`SELECT id, algorithm, qubits, hidden, result, solved, samples_accepted, samples_rejected, equations, error, duration_ms, created_at
		 FROM runs WHERE algorithm = $1 ORDER BY created_at DESC LIMIT $2`, algorithm, limit)
}

func (db *DB) queryRuns(ctx context.Context, query string, args ...interface{}) ([]Run, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.wrapError(err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var equations []string
		var createdAt time.Time

		if err := rows.Scan(&run.ID, &run.Algorithm, &run.Qubits, &run.Hidden,
			&run.Result, &run.Solved, &run.SamplesAccepted, &run.SamplesRejected,
			pq.Array(&equations), &run.Error, &run.DurationMs, &createdAt); err != nil {
			continue
		}

		run.Equations = equations
		run.CreatedAt = createdAt.Format(time.RFC3339)
		runs = append(runs, run)
	}

	return runs, nil
}

// GetStats returns database statistics
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Healthy: true}

	health := db.Health(ctx)
	if !health.Connected {
		stats.Healthy = false
		return stats, nil
	}

	db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&stats.TotalRuns)
	db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE solved").Scan(&stats.SolvedRuns)
	db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE NOT solved").Scan(&stats.FailedRuns)
	db.conn.QueryRowContext(ctx, "SELECT COALESCE(SUM(samples_accepted), 0) FROM runs").Scan(&stats.SamplesAccepted)
	db.conn.QueryRowContext(ctx, "SELECT COALESCE(SUM(samples_rejected), 0) FROM runs").Scan(&stats.SamplesRejected)

	return stats, nil
}
