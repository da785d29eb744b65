package main

import (
	"fmt"
	"text/tabwriter"

	"budget/internal/core"

	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print income, expenses and spending by category for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := core.Today()
			if year == 0 {
				year = today.Year()
			}
			if month == 0 {
				month = today.Month()
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid month %d", month)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			txs, summary, err := s.services.Transactions.List(cmd.Context(), core.MonthFilter(year, month))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintf(w, "Month\t%04d-%02d\n", year, month)
			fmt.Fprintf(w, "Income\t%s\n", summary.Income)
			fmt.Fprintf(w, "Expenses\t%s\n", summary.Expenses)
			fmt.Fprintf(w, "Balance\t%s\n", summary.Balance)
			if byCat := core.SpendingByCategory(txs); len(byCat) > 0 {
				fmt.Fprintln(w)
				for _, c := range byCat {
					fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Amount)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	return cmd
}
