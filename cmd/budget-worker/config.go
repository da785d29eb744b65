package main

import (
	"os"

	"budget/internal/config"
	applog "budget/internal/log"
)

// loadConfig reads the environment and exits when the worker cannot run
// with it.
func loadConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}
