package main

import (
	"context"
	"os"
	"time"

	"budget/internal/backend"
	"budget/internal/cache"
	"budget/internal/cli"
	"budget/internal/core"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
	"budget/internal/middleware/ratelimit"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger.Logger).Create(ctx, backendCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.ErrorContext(context.Background(), "Backend cleanup failed", "error", err)
		}
	}()

	svcs := backend.NewServices(store, nil)

	// Materialize whatever came due while the server was down.
	report, err := svcs.Recurring.CatchUp(ctx, core.Today())
	if err != nil {
		logger.ErrorContext(ctx, "Startup catch-up failed", "error", err)
	} else if len(report.Failed) > 0 {
		logger.WarnContext(ctx, "Startup catch-up skipped series", "failed", report.Failed)
	}

	deps := apphttp.Deps{
		Transactions:   svcs.Transactions,
		Goals:          svcs.Goals,
		Categories:     svcs.Categories,
		Recurring:      svcs.Recurring,
		AdvisorTimeout: cfg.AdvisorTimeout,
		Ready:          store.Ready,
		Limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		Logger:         logger,
	}
	go deps.Limiter.Run(ctx)

	if cfg.AdvisorEnabled() {
		adv, suggestions, err := cli.NewAdvisor(ctx, cfg)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to initialize advisor", "error", err)
			os.Exit(1)
		}
		deps.Advisor = adv
		go cache.NewManager(suggestions).Run(ctx, 10*time.Minute)
		logger.InfoContext(ctx, "Advisor enabled",
			"analysis_model", cfg.AnalysisModel,
			"suggestion_model", cfg.SuggestionModel)
	} else {
		logger.InfoContext(ctx, "Advisor disabled - no GEMINI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)
	srv.ReadTimeout = 10 * time.Second
	// Analysis requests may run up to the advisor timeout.
	srv.WriteTimeout = cfg.AdvisorTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	logger.InfoContext(ctx, "Starting budget server",
		"port", cfg.Port,
		"backend", store.Type,
		"events", store.Publisher != nil)
	if err := cli.Serve(ctx, &srv.Server, cfg.ShutdownTimeout); err != nil {
		logger.ErrorContext(context.Background(), "Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
}
