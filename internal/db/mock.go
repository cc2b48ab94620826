package db

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockDB is an in-memory implementation for demo mode and testing
type MockDB struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMock creates a new mock database
func NewMock() *MockDB {
	return &MockDB{
		runs: make(map[string]Run),
	}
}

// NewMockWithSampleData creates a mock database pre-populated with runs
func NewMockWithSampleData() *MockDB {
	m := NewMock()
	now := time.Now()

	samples := []Run{
		{
			ID:              "c4f7a3e2-9f12-4f0b-8c7d-1a2b3c4d5e6f",
			Algorithm:       "bernstein-vazirani",
			Qubits:          4,
			Hidden:          "1011",
			Result:          "1011",
			Solved:          true,
			SamplesAccepted: 1,
			Equations:       []string{},
			DurationMs:      12,
			CreatedAt:       now.Add(-2 * time.Hour).Format(time.RFC3339),
		},
		{
			ID:              "7d1e5b90-3c44-4a8f-b2e1-9f8e7d6c5b4a",
			Algorithm:       "simon",
			Qubits:          4,
			Hidden:          "1011",
			Result:          "1011",
			Solved:          true,
			SamplesAccepted: 3,
			SamplesRejected: 2,
			Equations:       []string{"0100", "1001", "1110"},
			DurationMs:      87,
			CreatedAt:       now.Add(-1 * time.Hour).Format(time.RFC3339),
		},
		{
			ID:              "2a9c8d7e-6f5b-4a3c-9d8e-7f6a5b4c3d2e",
			Algorithm:       "grover",
			Qubits:          3,
			Hidden:          "101",
			Result:          "101",
			Solved:          true,
			SamplesAccepted: 16,
			SamplesRejected: 1,
			Equations:       []string{},
			DurationMs:      45,
			CreatedAt:       now.Add(-30 * time.Minute).Format(time.RFC3339),
		},
	}

	for _, run := range samples {
		m.runs[run.ID] = run
	}
	return m
}

// Close is a no-op for the mock
func (m *MockDB) Close() error {
	return nil
}

// Health always reports healthy
func (m *MockDB) Health(ctx context.Context) HealthStatus {
	return HealthStatus{
		Connected: true,
		LatencyMs: 0,
	}
}

// SaveRun stores a run in memory
func (m *MockDB) SaveRun(ctx context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *run
	if stored.CreatedAt == "" {
		stored.CreatedAt = time.Now().Format(time.RFC3339)
	}
	if _, exists := m.runs[stored.ID]; !exists {
		m.runs[stored.ID] = stored
	}
	return nil
}

// GetRuns returns the most recent runs, newest first
func (m *MockDB) GetRuns(ctx context.Context, limit int) ([]Run, error) {
	return m.filterRuns(limit, func(Run) bool { return true })
}

// GetRunsByAlgorithm returns the most recent runs for one algorithm
func (m *MockDB) GetRunsByAlgorithm(ctx context.Context, algorithm string, limit int) ([]Run, error) {
	return m.filterRuns(limit, func(r Run) bool { return r.Algorithm == algorithm })
}

func (m *MockDB) filterRuns(limit int, keep func(Run) bool) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := []Run{}
	for _, run := range m.runs {
		if keep(run) {
			runs = append(runs, run)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt > runs[j].CreatedAt
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetStats returns statistics over the stored runs
func (m *MockDB) GetStats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{Healthy: true}
	for _, run := range m.runs {
		stats.TotalRuns++
		if run.Solved {
			stats.SolvedRuns++
		} else {
			stats.FailedRuns++
		}
		stats.SamplesAccepted += run.SamplesAccepted
		stats.SamplesRejected += run.SamplesRejected
	}
	return stats, nil
}
