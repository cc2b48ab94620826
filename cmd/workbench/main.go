package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"qvm-workbench/internal/api"
	"qvm-workbench/internal/backend"
	"qvm-workbench/internal/config"
	"qvm-workbench/internal/db"
	"qvm-workbench/internal/logger"
	"qvm-workbench/internal/notify"
	"qvm-workbench/internal/runner"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Load()
	appLogger := logger.New(500)

	// Initialize database
	var database db.Database
	var err error

	if cfg.DatabaseURL == "" {
		appLogger.Warn("DATABASE_URL not set - running in demo mode")
		database = db.NewMockWithSampleData()
	} else {
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Database error: %v", err)
		}
		appLogger.Info("Connected to database")
	}
	defer database.Close()

	// Initialize notifier
	notifier := notify.New(cfg.PushoverAppToken, cfg.PushoverUserKey)
	if notifier.IsEnabled() {
		appLogger.Info("Pushover notifications enabled")
	}

	// Initialize backend
	var be backend.Backend
	if cfg.QVMURL == "" {
		appLogger.Warn("QVM_URL not set - using the reference backend")
		be = backend.NewReference(cfg.Seed)
	} else {
		be, err = backend.Dial(cfg.QVMURL)
		if err != nil {
			log.Fatalf("Backend error: %v", err)
		}
		appLogger.Info("Connected to QVM at %s", cfg.QVMURL)
	}
	defer be.Close()

	// Initialize runner
	run := runner.New(database, appLogger, be, notifier)

	// Initialize API
	handler := api.NewHandler(run, database, appLogger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	// Auto-start sessions
	go func() {
		time.Sleep(2 * time.Second)
		appLogger.Info("Auto-starting sessions...")
		run.StartAll()
	}()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		appLogger.Info("Shutting down...")
		run.StopAll()
		os.Exit(0)
	}()

	// Start HTTP server
	addrs := strings.Split(cfg.BindAddrs, ",")
	for i, addr := range addrs[:len(addrs)-1] {
		listenAddr := fmt.Sprintf("%s:%s", strings.TrimSpace(addr), cfg.Port)
		appLogger.Info("Starting server on %s", listenAddr)
		go func(la string, idx int) {
			if err := http.ListenAndServe(la, mux); err != nil {
				log.Printf("Listener %d error: %v", idx, err)
			}
		}(listenAddr, i)
	}

	lastAddr := fmt.Sprintf("%s:%s", strings.TrimSpace(addrs[len(addrs)-1]), cfg.Port)
	appLogger.Info("Starting server on %s", lastAddr)
	log.Fatal(http.ListenAndServe(lastAddr, mux))
}
