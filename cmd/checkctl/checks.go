package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"paybatch/internal/core/entity"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/ledger"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Inspect and update issued checks",
	}
	cmd.AddCommand(newCheckShowCmd(), newCheckSetStateCmd(), newCheckStatsCmd())
	return cmd
}

func printCheck(cmd *cobra.Command, c *ledger.IssuedCheck) {
	cmd.Printf("%-36s %-9s %-10d %-17s %-14s %s\n",
		c.ID, c.Category, c.Number, c.State, c.Amount.StringFixed(2), c.Beneficiary)
}

func newCheckShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <category> <number>",
		Short: "Show the issued check with a number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := checkrange.ParseCategory(args[0])
			if err != nil {
				return err
			}
			number, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid check number %q: %w", args[1], err)
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				c, err := s.svc.Ledger.GetByNumber(ctx, cat, number)
				if err != nil {
					return err
				}
				printCheck(cmd, c)
				return nil
			})
		},
	}
}

func newCheckSetStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-state <check-id> <state>",
		Short: "Move an issued check to confirmed_issue, loaded_in_system or unused",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := entity.ParseID(args[0])
			if err != nil {
				return fmt.Errorf("invalid check id %q: %w", args[0], err)
			}
			to, err := ledger.ParseState(args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				c, err := s.svc.Ledger.Transition(ctx, id, to)
				if err != nil {
					return err
				}
				printCheck(cmd, c)
				return nil
			})
		},
	}
}

func newCheckStatsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count issued checks per state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cat checkrange.Category
			if category != "" {
				var err error
				if cat, err = checkrange.ParseCategory(category); err != nil {
					return err
				}
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				rows, err := s.svc.Ledger.CountByState(ctx, cat)
				if err != nil {
					return err
				}
				for _, r := range rows {
					cmd.Printf("%-17s %d\n", r.State, r.Count)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	return cmd
}
