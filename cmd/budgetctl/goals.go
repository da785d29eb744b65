package main

import (
	"fmt"
	"text/tabwriter"

	"budget/internal/core"
	"budget/internal/services"

	"github.com/spf13/cobra"
)

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage savings goals",
	}
	cmd.AddCommand(listGoalsCmd())
	cmd.AddCommand(addGoalCmd())
	cmd.AddCommand(contributeCmd())
	cmd.AddCommand(completeGoalCmd())
	return cmd
}

func listGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals with their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			goals, err := s.services.Goals.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals found. Use 'budgetctl goals add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tName\tSaved\tTarget\tProgress\tMonthly\tStatus")
			for _, g := range goals {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
					g.ID, g.Name, g.CurrentAmount, g.TargetAmount, g.Progress, g.RequiredMonthly, g.Status)
			}
			return nil
		},
	}
}

func addGoalCmd() *cobra.Command {
	var (
		target   string
		date     string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a savings goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseDecimalToCents(target)
			if err != nil {
				return fmt.Errorf("target %q: %w", target, err)
			}
			targetDate, err := core.ParseDate(date)
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := s.services.Goals.Create(cmd.Context(), services.NewGoal{
				Name:         args[0],
				TargetAmount: core.Money{Cents: cents},
				TargetDate:   targetDate,
				Priority:     core.Priority(priority),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created goal %s\n", g.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "target amount, e.g. 1500.00")
	cmd.Flags().StringVar(&date, "date", "", "target date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&priority, "priority", string(core.PriorityMedium), "low, medium or high")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func contributeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <id> <amount>",
		Short: "Add money to a goal and record it as a savings expense",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseDecimalToCents(args[1])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[1], err)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := s.services.Goals.Contribute(cmd.Context(), args[0], core.Money{Cents: cents})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s of %s\n", g.Name, g.CurrentAmount, g.TargetAmount)
			return nil
		},
	}
}

func completeGoalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a goal as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := s.services.Goals.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s completed\n", g.Name)
			return nil
		},
	}
}
