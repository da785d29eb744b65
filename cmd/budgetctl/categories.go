package main

import (
	"fmt"
	"strings"

	"budget/internal/cli"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage transaction categories",
		Long: `List and add categories. A child category is stored as "Parent:Child".
Categories can also be imported from the Categories tab of the configured
Google spreadsheet.`,
	}
	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(importCategoriesCmd())
	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories grouped by parent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			tree, err := s.services.Categories.Tree(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range tree.TopLevel {
				fmt.Fprintln(out, c)
			}
			for _, g := range tree.Grouped {
				fmt.Fprintln(out, g.Name)
				for _, sub := range g.Subcategories {
					fmt.Fprintf(out, "  %s\n", strings.TrimPrefix(sub, g.Name+":"))
				}
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category, optionally under a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			added, err := s.services.Categories.Add(cmd.Context(), args[0], parent)
			if err != nil {
				return err
			}
			if !added {
				return fmt.Errorf("category %q already exists or is empty", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "category added")
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "parent category")
	return cmd
}

func importCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import categories from the Google spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			sheets, err := cli.NewSheetsClient(cmd.Context(), s.cfg)
			if err != nil {
				return err
			}
			added, err := s.services.Categories.Import(cmd.Context(), sheets)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d categories imported\n", added)
			return nil
		},
	}
}
