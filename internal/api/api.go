package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"qvm-workbench/internal/config"
	"qvm-workbench/internal/db"
	"qvm-workbench/internal/logger"
	"qvm-workbench/internal/runner"
)

// GlobalStats represents overall statistics
type GlobalStats struct {
	Sessions        []runner.SessionStats `json:"sessions"`
	TotalRuns       int                   `json:"total_runs"`
	SolvedRuns      int                   `json:"solved_runs"`
	FailedRuns      int                   `json:"failed_runs"`
	SamplesAccepted int                   `json:"samples_accepted"`
	SamplesRejected int                   `json:"samples_rejected"`
	Notifications   bool                  `json:"notifications"`
	DatabaseHealthy bool                  `json:"database_healthy"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status   string          `json:"status"`
	Database db.HealthStatus `json:"database"`
	Sessions []SessionHealth `json:"sessions"`
}

// SessionHealth represents health for one algorithm session
type SessionHealth struct {
	Algorithm  string `json:"algorithm"`
	Running    bool   `json:"running"`
	ErrorCount int    `json:"error_count"`
}

// AlgorithmInfo describes one configured demonstration
type AlgorithmInfo struct {
	Name       string `json:"name"`
	Qubits     int    `json:"qubits"`
	Ancilla    int    `json:"ancilla"`
	Hidden     string `json:"hidden,omitempty"`
	Payload    string `json:"payload,omitempty"`
	MaxSamples int    `json:"max_samples,omitempty"`
	Shots      int    `json:"shots,omitempty"`
	Enabled    bool   `json:"enabled"`
}

// Handler holds HTTP handler dependencies
type Handler struct {
	runner *runner.Runner
	db     db.Database
	logger *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(r *runner.Runner, database db.Database, log *logger.Logger) *Handler {
	return &Handler{
		runner: r,
		db:     database,
		logger: log,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/runs", h.handleRuns)
	mux.HandleFunc("/api/algorithms", h.handleAlgorithms)
	mux.HandleFunc("/api/notify/toggle", h.handleNotifyToggle)
	mux.HandleFunc("/api/start", h.handleStart)
	mux.HandleFunc("/api/stop", h.handleStop)
	mux.HandleFunc("/api/logs", h.handleLogs)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dbStats, err := h.db.GetStats(ctx)

	stats := GlobalStats{
		Sessions:        h.runner.GetSessionStats(),
		Notifications:   h.runner.IsNotifyEnabled(),
		DatabaseHealthy: true,
	}

	if err != nil {
		h.logger.Warn("Failed to get stats: %v", err)
		stats.DatabaseHealthy = false
	} else if dbStats != nil {
		stats.TotalRuns = dbStats.TotalRuns
		stats.SolvedRuns = dbStats.SolvedRuns
		stats.FailedRuns = dbStats.FailedRuns
		stats.SamplesAccepted = dbStats.SamplesAccepted
		stats.SamplesRejected = dbStats.SamplesRejected
		stats.DatabaseHealthy = dbStats.Healthy
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbHealth := h.db.Health(ctx)

	var sessionHealths []SessionHealth
	for _, st := range h.runner.GetSessionStats() {
		sessionHealths = append(sessionHealths, SessionHealth{
			Algorithm:  st.Algorithm,
			Running:    st.Running,
			ErrorCount: st.ErrorCount,
		})
	}

	status := "healthy"
	if !dbHealth.Connected {
		status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:   status,
		Database: dbHealth,
		Sessions: sessionHealths,
	})
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	var runs []db.Run
	var err error
	if algorithm := r.URL.Query().Get("algorithm"); algorithm != "" {
		runs, err = h.db.GetRunsByAlgorithm(ctx, algorithm, limit)
	} else {
		runs, err = h.db.GetRuns(ctx, limit)
	}
	if err != nil {
		h.logger.Error("Failed to get runs: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

func (h *Handler) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	var infos []AlgorithmInfo
	for _, cfg := range config.DefaultAlgorithms() {
		infos = append(infos, AlgorithmInfo{
			Name:       cfg.Name,
			Qubits:     cfg.Qubits,
			Ancilla:    cfg.Ancilla,
			Hidden:     cfg.Hidden,
			Payload:    cfg.Payload,
			MaxSamples: cfg.MaxSamples,
			Shots:      cfg.Shots,
			Enabled:    cfg.Enabled,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

func (h *Handler) handleNotifyToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabled := r.URL.Query().Get("enabled")
	if enabled == "" {
		current := h.runner.IsNotifyEnabled()
		h.runner.SetNotifyEnabled(!current)
	} else if enabled == "true" || enabled == "1" {
		h.runner.SetNotifyEnabled(true)
	} else {
		h.runner.SetNotifyEnabled(false)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"notifications": h.runner.IsNotifyEnabled(),
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	algorithm := r.URL.Query().Get("algorithm")
	if algorithm == "" {
		h.runner.StartAll()
		h.logger.Info("Started all sessions")
	} else {
		h.runner.StartSession(algorithm)
		h.logger.Info("Started session: %s", algorithm)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	algorithm := r.URL.Query().Get("algorithm")
	if algorithm == "" {
		h.runner.StopAll()
		h.logger.Info("Stopped all sessions")
	} else {
		h.runner.StopSession(algorithm)
		h.logger.Info("Stopped session: %s", algorithm)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "stopped"})
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.logger.Entries())
}
