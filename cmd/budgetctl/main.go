package main

import (
	"context"
	"fmt"
	"os"

	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/config"
	applog "budget/internal/log"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "budgetctl",
		Short: "Operate the budget store from the command line",
		Long: `budgetctl runs recurring catch-up, prints summaries and manages goals
and categories against the store configured by the environment.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")

	root.AddCommand(catchUpCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(goalsCmd())
	root.AddCommand(categoriesCmd())
	return root
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is an opened backend with its services.
type session struct {
	cfg      *config.Config
	logger   *applog.Logger
	store    *backend.Result
	services *backend.Services
}

func (s *session) Close() error {
	return s.store.Close()
}

// openSession loads configuration and opens the configured backend.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	logger := cli.SetupLogger(level, applog.ComponentCLI)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := backend.NewFactory(logger.Logger).Create(cmd.Context(), backendCfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	return &session{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		services: backend.NewServices(store, nil),
	}, nil
}
