package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"qvm-workbench/internal/backend"
	"qvm-workbench/internal/db"
	"qvm-workbench/internal/logger"
	"qvm-workbench/internal/notify"
	"qvm-workbench/internal/runner"
)

func newTestMux(t *testing.T) (*http.ServeMux, *db.MockDB) {
	t.Helper()
	mock := db.NewMockWithSampleData()
	log := logger.New(50)
	run := runner.New(mock, log, backend.NewReference(1), notify.New("", ""))
	mux := http.NewServeMux()
	NewHandler(run, mock, log).RegisterRoutes(mux)
	return mux, mock
}

func TestHandleStats(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stats GlobalStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if !stats.DatabaseHealthy {
		t.Error("mock database should report healthy")
	}
	if stats.TotalRuns != 3 || stats.SolvedRuns != 3 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if len(stats.Sessions) == 0 {
		t.Error("expected session stats")
	}
	if !stats.Notifications {
		t.Error("notifications should default to enabled")
	}
}

func TestHandleHealth(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if health.Status != "healthy" || !health.Database.Connected {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestHandleRuns(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs?limit=2", nil))

	var runs []db.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs?algorithm=simon", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(runs) != 1 || runs[0].Algorithm != "simon" {
		t.Errorf("algorithm filter failed: %+v", runs)
	}
}

func TestHandleAlgorithms(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/algorithms", nil))

	var infos []AlgorithmInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(infos) != 6 {
		t.Errorf("got %d algorithms, want 6", len(infos))
	}
}

func TestHandleStartStopRequirePost(t *testing.T) {
	mux, _ := newTestMux(t)

	for _, path := range []string{"/api/start", "/api/stop", "/api/notify/toggle"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: status = %d, want 405", path, rec.Code)
		}
	}
}

func TestHandleNotifyToggle(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/notify/toggle?enabled=false", nil))

	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp["notifications"] {
		t.Error("toggle should have disabled notifications")
	}
}

func TestHandleStartAndStopSession(t *testing.T) {
	mux, mock := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/start?algorithm=deutsch", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/stop?algorithm=deutsch", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", rec.Code)
	}

	// Sanity: the mock stays reachable throughout
	if _, err := mock.GetStats(context.Background()); err != nil {
		t.Errorf("GetStats failed: %v", err)
	}
}

func TestHandleLogs(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/logs", nil))

	var entries []logger.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	// Runner initialization logs one line per session
	if len(entries) == 0 {
		t.Error("expected log entries")
	}
}
