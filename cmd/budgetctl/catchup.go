package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"budget/internal/core"
	"budget/internal/services"

	"github.com/spf13/cobra"
)

func catchUpCmd() *cobra.Command {
	var (
		asOf  string
		every time.Duration
	)

	cmd := &cobra.Command{
		Use:   "catchup",
		Short: "Materialize recurring transactions that are due",
		Long: `Create every occurrence of every recurring series due on or before the
given date (today by default) and advance each series' next due date.

With --every the pass repeats on that interval, always up to the current
day, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var date core.Date
			if asOf != "" {
				d, err := core.ParseDate(asOf)
				if err != nil {
					return err
				}
				date = d
			}
			if every > 0 && asOf != "" {
				return fmt.Errorf("--every and --as-of cannot be combined")
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if every <= 0 {
				if date.IsZero() {
					date = core.Today()
				}
				return catchUpOnce(cmd.Context(), cmd.OutOrStdout(), s.services.Recurring, date)
			}

			s.logger.InfoContext(cmd.Context(), "Recurring catch-up scheduled", "interval", every)
			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				if err := catchUpOnce(cmd.Context(), cmd.OutOrStdout(), s.services.Recurring, core.Today()); err != nil {
					s.logger.ErrorContext(cmd.Context(), "Periodic catch-up failed", "error", err)
				}
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "catch up to this date (YYYY-MM-DD)")
	cmd.Flags().DurationVar(&every, "every", 0, "repeat the pass on this interval until interrupted")
	return cmd
}

func catchUpOnce(ctx context.Context, out io.Writer, p *services.RecurringProcessor, date core.Date) error {
	report, err := p.CatchUp(ctx, date)
	if err != nil {
		return fmt.Errorf("catch up: %w", err)
	}
	fmt.Fprintf(out, "as of %s: %d created, %d series advanced\n", report.AsOf, report.Created, report.Updated)
	for _, id := range report.Failed {
		fmt.Fprintf(out, "skipped series %s\n", id)
	}
	return nil
}
