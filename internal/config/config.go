package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL      string
	QVMURL           string
	Port             string
	BindAddrs        string
	PushoverAppToken string
	PushoverUserKey  string
	Seed             int64
}

// AlgorithmConfig defines one black-box demonstration to run
type AlgorithmConfig struct {
	Name        string
	Qubits      int    // control register width n
	Ancilla     int    // target register width m
	Hidden      string // dot-product mask, Simon period or Grover marked string
	Bias        uint8  // affine bias for the Deutsch family
	Payload     string // classical bits for superdense coding
	MaxSamples  int    // sampling budget for Simon
	Shots       int    // repeated measurements for Grover
	IntervalSec int    // pacing between runs
	Enabled     bool
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		QVMURL:           os.Getenv("QVM_URL"),
		Port:             os.Getenv("PORT"),
		BindAddrs:        os.Getenv("BIND_ADDRS"),
		PushoverAppToken: os.Getenv("PUSHOVER_APP_TOKEN"),
		PushoverUserKey:  os.Getenv("PUSHOVER_USER_KEY"),
		Seed:             1,
	}

	if s := os.Getenv("WORKBENCH_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			cfg.Seed = v
		}
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.BindAddrs == "" {
		cfg.BindAddrs = "0.0.0.0"
	}

	return cfg
}

// DefaultAlgorithms returns the demonstrations the workbench cycles through
func DefaultAlgorithms() []AlgorithmConfig {
	return []AlgorithmConfig{
		{Name: "deutsch", Qubits: 1, Ancilla: 1, Hidden: "1", Bias: 1, IntervalSec: 30, Enabled: true},
		{Name: "deutsch-jozsa", Qubits: 3, Ancilla: 1, Hidden: "110", IntervalSec: 30, Enabled: true},
		{Name: "bernstein-vazirani", Qubits: 4, Ancilla: 1, Hidden: "1011", IntervalSec: 30, Enabled: true},
		{Name: "simon", Qubits: 4, Ancilla: 4, Hidden: "1011", MaxSamples: 64, IntervalSec: 30, Enabled: true},
		{Name: "grover", Qubits: 3, Ancilla: 1, Hidden: "101", Shots: 16, IntervalSec: 30, Enabled: true},
		{Name: "superdense", Qubits: 2, Payload: "10", IntervalSec: 60, Enabled: true},
	}
}

// AlgorithmByName looks up an algorithm configuration
func AlgorithmByName(name string) *AlgorithmConfig {
	for _, cfg := range DefaultAlgorithms() {
		if cfg.Name == name {
			return &cfg
		}
	}
	return nil
}
