package db

import "context"

// Database defines the interface for database operations
type Database interface {
	Close() error
	Health(ctx context.Context) HealthStatus
	SaveRun(ctx context.Context, run *Run) error
	GetRuns(ctx context.Context, limit int) ([]Run, error)
	GetRunsByAlgorithm(ctx context.Context, algorithm string, limit int) ([]Run, error)
	GetStats(ctx context.Context) (*Stats, error)
}

// Ensure both implementations satisfy the interface
var _ Database = (*DB)(nil)
var _ Database = (*MockDB)(nil)
