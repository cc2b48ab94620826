package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"qvm-workbench/internal/backend"
	"qvm-workbench/internal/bitvec"
	"qvm-workbench/internal/config"
	"qvm-workbench/internal/db"
	"qvm-workbench/internal/gf2"
	"qvm-workbench/internal/logger"
	"qvm-workbench/internal/notify"
	"qvm-workbench/internal/oracle"
	"qvm-workbench/internal/retry"
)

// ResultEvent is sent when a run finishes
type ResultEvent struct {
	Run        db.Run
	Degenerate bool
}

// SessionStats holds statistics for a single algorithm session
type SessionStats struct {
	Algorithm  string `json:"algorithm"`
	Qubits     int    `json:"qubits"`
	Runs       int    `json:"runs"`
	Solved     int    `json:"solved"`
	Failed     int    `json:"failed"`
	Running    bool   `json:"running"`
	ErrorCount int    `json:"error_count"`
	LastResult string `json:"last_result,omitempty"`
	Backend    string `json:"backend"`
}

// Session drives repeated runs of a single algorithm
type Session struct {
	config   config.AlgorithmConfig
	running  bool
	stopChan chan struct{}
	mu       sync.Mutex
	stats    SessionStats
	errCount int
	breaker  *retry.CircuitBreaker
}

// Runner coordinates algorithm sessions against one backend
type Runner struct {
	db            db.Database
	logger        *logger.Logger
	notifier      *notify.Notifier
	backend       backend.Backend
	sessions      map[string]*Session // keyed by algorithm name
	mu            sync.RWMutex
	resultChan    chan ResultEvent
	notifyEnabled bool
	retryCfg      retry.Config
}

// New creates a new Runner
func New(database db.Database, log *logger.Logger, be backend.Backend, notifier *notify.Notifier) *Runner {
	r := &Runner{
		db:            database,
		logger:        log,
		notifier:      notifier,
		backend:       be,
		sessions:      make(map[string]*Session),
		resultChan:    make(chan ResultEvent, 100),
		notifyEnabled: true,
		retryCfg:      retry.DefaultConfig(),
	}

	// Result processors run saves and notifications off the hot path
	for i := 0; i < 3; i++ {
		go r.processResults()
	}

	for _, cfg := range config.DefaultAlgorithms() {
		if !cfg.Enabled {
			continue
		}
		r.sessions[cfg.Name] = &Session{
			config:   cfg,
			stopChan: make(chan struct{}),
			stats:    SessionStats{Algorithm: cfg.Name, Qubits: cfg.Qubits, Backend: be.Name()},
			breaker:  retry.NewCircuitBreaker(5, 30*time.Second),
		}
		log.Info("[%s] Initialized session (n=%d)", cfg.Name, cfg.Qubits)
	}

	return r
}

// StartAll starts all algorithm sessions
func (r *Runner) StartAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := range r.sessions {
		r.startLocked(name)
	}
}

// StopAll stops all algorithm sessions
func (r *Runner) StopAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := range r.sessions {
		r.stopLocked(name)
	}
}

// StartSession starts the session for one algorithm
func (r *Runner) StartSession(name string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.startLocked(name)
}

// StopSession stops the session for one algorithm
func (r *Runner) StopSession(name string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.stopLocked(name)
}

func (r *Runner) startLocked(name string) {
	sess, ok := r.sessions[name]
	if !ok {
		return
	}

	sess.mu.Lock()
	if sess.running {
		sess.mu.Unlock()
		return
	}
	sess.running = true
	sess.stopChan = make(chan struct{})
	sess.mu.Unlock()

	go r.runLoop(sess)
}

func (r *Runner) stopLocked(name string) {
	sess, ok := r.sessions[name]
	if !ok {
		return
	}

	sess.mu.Lock()
	if !sess.running {
		sess.mu.Unlock()
		return
	}
	sess.running = false
	close(sess.stopChan)
	sess.mu.Unlock()
}

// GetSessionStats returns statistics for all sessions
func (r *Runner) GetSessionStats() []SessionStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats []SessionStats
	for _, sess := range r.sessions {
		sess.mu.Lock()
		st := sess.stats
		st.Running = sess.running
		st.ErrorCount = sess.errCount
		sess.mu.Unlock()
		stats = append(stats, st)
	}
	return stats
}

// SetNotifyEnabled enables/disables push notifications
func (r *Runner) SetNotifyEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifyEnabled = enabled
}

// IsNotifyEnabled returns whether push notifications are enabled
func (r *Runner) IsNotifyEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notifyEnabled
}

func (r *Runner) runLoop(sess *Session) {
	name := sess.config.Name
	r.logger.Info("[%s] Session started", name)

	interval := time.Duration(sess.config.IntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	for {
		select {
		case <-sess.stopChan:
			r.logger.Info("[%s] Session stopped", name)
			return
		default:
		}

		if !sess.breaker.Allow() {
			time.Sleep(5 * time.Second)
			continue
		}

		event, err := r.executeRun(context.Background(), sess.config)
		if err != nil {
			sess.breaker.RecordFailure()
			sess.mu.Lock()
			sess.errCount++
			failures := sess.errCount
			sess.stats.Failed++
			sess.stats.Runs++
			sess.mu.Unlock()
			r.logger.Error("[%s] Run failed: %v", name, err)

			if sess.breaker.IsOpen() {
				r.logger.Warn("[%s] Circuit open after %d failures", name, failures)
				if r.IsNotifyEnabled() {
					if err := r.notifier.NotifyBackendDown(r.backend.Name(), failures); err != nil {
						r.logger.Warn("[NOTIFY] Failed to send notification: %v", err)
					}
				}
			}

			time.Sleep(2 * time.Second)
			continue
		}

		sess.breaker.RecordSuccess()
		sess.mu.Lock()
		sess.stats.Runs++
		if event.Run.Solved {
			sess.stats.Solved++
		} else {
			sess.stats.Failed++
		}
		sess.stats.LastResult = event.Run.Result
		sess.mu.Unlock()

		select {
		case r.resultChan <- event:
		default:
			r.logger.Warn("Result queue full")
		}

		select {
		case <-sess.stopChan:
			r.logger.Info("[%s] Session stopped", name)
			return
		case <-time.After(interval):
		}
	}
}

// executeRun performs one complete demonstration and reports it as a
// ResultEvent. Backend errors bubble up so the loop can trip the
// circuit breaker; a run that completes with the wrong answer is not
// an error, just an unsolved run.
func (r *Runner) executeRun(ctx context.Context, cfg config.AlgorithmConfig) (ResultEvent, error) {
	start := time.Now()

	var event ResultEvent
	var err error
	switch cfg.Name {
	case backend.AlgoDeutsch, backend.AlgoDeutschJozsa, backend.AlgoBernsteinVazirani:
		event, err = r.runAffine(ctx, cfg)
	case backend.AlgoSimon:
		event, err = r.runSimon(ctx, cfg)
	case backend.AlgoGrover:
		event, err = r.runGrover(ctx, cfg)
	case backend.AlgoSuperdense:
		event, err = r.runSuperdense(ctx, cfg)
	default:
		return ResultEvent{}, fmt.Errorf("%w: %q", backend.ErrUnknownAlgorithm, cfg.Name)
	}
	if err != nil {
		return ResultEvent{}, err
	}

	hidden := cfg.Hidden
	if cfg.Name == backend.AlgoSuperdense {
		hidden = cfg.Payload
	}
	event.Run.ID = uuid.NewString()
	event.Run.Algorithm = cfg.Name
	event.Run.Qubits = cfg.Qubits
	event.Run.Hidden = hidden
	event.Run.DurationMs = time.Since(start).Milliseconds()
	return event, nil
}

func (r *Runner) measure(ctx context.Context, prog *backend.Program) (bitvec.Vector, error) {
	return retry.DoWithResult(ctx, r.retryCfg, func() (bitvec.Vector, error) {
		return r.backend.Measure(ctx, prog)
	})
}

// runAffine covers the Deutsch family: one query, and the measured
// register equals the hidden mask (all zeros for a constant oracle).
func (r *Runner) runAffine(ctx context.Context, cfg config.AlgorithmConfig) (ResultEvent, error) {
	s, err := bitvec.Parse(cfg.Hidden)
	if err != nil {
		return ResultEvent{}, err
	}

	mat, err := oracle.Synthesize(cfg.Qubits, 1, oracle.AffineTable(s, cfg.Bias))
	if err != nil {
		return ResultEvent{}, err
	}

	prog := &backend.Program{
		Algorithm: cfg.Name,
		Qubits:    cfg.Qubits,
		Ancilla:   1,
		Oracle:    mat.Rows(),
	}

	result, err := r.measure(ctx, prog)
	if err != nil {
		return ResultEvent{}, err
	}

	run := db.Run{
		Result:          result.String(),
		Solved:          result == s,
		SamplesAccepted: 1,
	}
	if run.Solved {
		verdict := "balanced"
		if s.IsZero() {
			verdict = "constant"
		}
		r.logger.Info("[%s] Oracle is %s (measured %s)", cfg.Name, verdict, result)
	}
	return ResultEvent{Run: run}, nil
}

// runSimon feeds measurements into an incremental GF(2) system until
// it pins the period down to a single candidate or the sampling budget
// runs out.
func (r *Runner) runSimon(ctx context.Context, cfg config.AlgorithmConfig) (ResultEvent, error) {
	s, err := bitvec.Parse(cfg.Hidden)
	if err != nil {
		return ResultEvent{}, err
	}

	table, err := oracle.PeriodicTable(s)
	if err != nil {
		return ResultEvent{}, err
	}
	mat, err := oracle.Synthesize(cfg.Qubits, cfg.Ancilla, table)
	if err != nil {
		return ResultEvent{}, err
	}

	prog := &backend.Program{
		Algorithm: cfg.Name,
		Qubits:    cfg.Qubits,
		Ancilla:   cfg.Ancilla,
		Oracle:    mat.Rows(),
	}

	system, err := gf2.NewSystem(cfg.Qubits)
	if err != nil {
		return ResultEvent{}, err
	}

	budget := cfg.MaxSamples
	if budget <= 0 {
		budget = 64
	}

	accepted, rejected := 0, 0
	for i := 0; i < budget && !system.Sufficient(); i++ {
		z, err := r.measure(ctx, prog)
		if err != nil {
			return ResultEvent{}, err
		}

		added, err := system.AddSample(z)
		if err != nil {
			return ResultEvent{}, err
		}
		if added {
			accepted++
		} else {
			rejected++
		}
	}

	equations := make([]string, 0, system.Rank())
	for _, row := range system.Rows() {
		equations = append(equations, row.String())
	}

	run := db.Run{
		SamplesAccepted: accepted,
		SamplesRejected: rejected,
		Equations:       equations,
	}

	recovered, err := system.Solve()
	switch {
	case errors.Is(err, gf2.ErrUnderdetermined):
		run.Error = fmt.Sprintf("rank %d after %d samples", system.Rank(), budget)
		r.logger.Warn("[%s] Budget exhausted: %s", cfg.Name, run.Error)
	case errors.Is(err, gf2.ErrDegenerate):
		run.Error = "system is degenerate"
		r.logger.Warn("[%s] Degenerate system; the oracle is not two-to-one", cfg.Name)
		return ResultEvent{Run: run, Degenerate: true}, nil
	case err != nil:
		return ResultEvent{}, err
	default:
		run.Result = recovered.String()
		run.Solved = recovered == s
		r.logger.Info("[%s] Recovered period %s from %d samples (%d rejected)",
			cfg.Name, recovered, accepted, rejected)
	}
	return ResultEvent{Run: run}, nil
}

// runGrover takes a majority vote over repeated amplified measurements.
func (r *Runner) runGrover(ctx context.Context, cfg config.AlgorithmConfig) (ResultEvent, error) {
	marked, err := bitvec.Parse(cfg.Hidden)
	if err != nil {
		return ResultEvent{}, err
	}

	search, err := oracle.SearchOracle(marked)
	if err != nil {
		return ResultEvent{}, err
	}

	prog := &backend.Program{
		Algorithm:  cfg.Name,
		Qubits:     cfg.Qubits,
		Ancilla:    1,
		Oracle:     search.Rows(),
		Diffusion:  oracle.Diffusion(cfg.Qubits).Rows(),
		Iterations: backend.OptimalGroverIterations(cfg.Qubits),
	}

	shots := cfg.Shots
	if shots <= 0 {
		shots = 16
	}

	counts := make(map[bitvec.Vector]int)
	for i := 0; i < shots; i++ {
		out, err := r.measure(ctx, prog)
		if err != nil {
			return ResultEvent{}, err
		}
		counts[out]++
	}

	var best bitvec.Vector
	bestCount := -1
	for out, c := range counts {
		if c > bestCount || (c == bestCount && out.Uint() < best.Uint()) {
			best, bestCount = out, c
		}
	}

	run := db.Run{
		Result:          best.String(),
		Solved:          best == marked,
		SamplesAccepted: counts[marked],
		SamplesRejected: shots - counts[marked],
	}
	if run.Solved {
		r.logger.Info("[%s] Found %s in %d/%d shots", cfg.Name, best, bestCount, shots)
	}
	return ResultEvent{Run: run}, nil
}

// runSuperdense sends two classical bits through one qubit and checks
// they come back intact.
func (r *Runner) runSuperdense(ctx context.Context, cfg config.AlgorithmConfig) (ResultEvent, error) {
	payload, err := bitvec.Parse(cfg.Payload)
	if err != nil {
		return ResultEvent{}, err
	}

	prog := &backend.Program{
		Algorithm: cfg.Name,
		Qubits:    cfg.Qubits,
		Payload:   cfg.Payload,
	}

	result, err := r.measure(ctx, prog)
	if err != nil {
		return ResultEvent{}, err
	}

	run := db.Run{
		Result:          result.String(),
		Solved:          result == payload,
		SamplesAccepted: 1,
	}
	return ResultEvent{Run: run}, nil
}

// processResults handles finished runs
func (r *Runner) processResults() {
	for event := range r.resultChan {
		r.handleResult(event)
	}
}

func (r *Runner) handleResult(event ResultEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.db.SaveRun(ctx, &event.Run); err != nil {
		r.logger.Error("[%s] Failed to save run: %v", event.Run.Algorithm, err)
	}

	if !r.IsNotifyEnabled() {
		return
	}

	switch {
	case event.Degenerate:
		if err := r.notifier.NotifyDegenerate(event.Run.Algorithm); err != nil {
			r.logger.Warn("[NOTIFY] Failed to send notification: %v", err)
		}
	case event.Run.Solved && (event.Run.Algorithm == backend.AlgoSimon ||
		event.Run.Algorithm == backend.AlgoBernsteinVazirani):
		if err := r.notifier.NotifySolved(event.Run.Algorithm, event.Run.Result,
			event.Run.SamplesAccepted); err != nil {
			r.logger.Warn("[NOTIFY] Failed to send notification: %v", err)
		}
	}
}
