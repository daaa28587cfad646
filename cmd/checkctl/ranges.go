package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"paybatch/internal/core/entity"
	"paybatch/internal/domain/checkrange"
)

func newRangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Manage check number ranges",
	}
	cmd.AddCommand(newRangeCreateCmd(), newRangeListCmd(), newRangeUsageCmd(),
		newRangeToggleCmd("activate", true), newRangeToggleCmd("deactivate", false))
	return cmd
}

func newRangeCreateCmd() *cobra.Command {
	var (
		category   string
		priority   int
		start, end int64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a check book range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := checkrange.ParseCategory(category)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				r, err := s.svc.Allocator.CreateRange(ctx, cat, priority, start, end)
				if err != nil {
					return err
				}
				cmd.Printf("created %s range %d-%d (priority %d) id=%s\n", r.Category, r.Start, r.End, r.Priority, r.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "common or deferred")
	cmd.Flags().IntVar(&priority, "priority", 1, "fallover order within the category, lower first")
	cmd.Flags().Int64Var(&start, "start", 0, "first check number")
	cmd.Flags().Int64Var(&end, "end", 0, "last check number")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newRangeListCmd() *cobra.Command {
	var (
		category string
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ranges with their usage",
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
				ranges, err := s.svc.Allocator.List(ctx, cat, all)
				if err != nil {
					return err
				}
				printRanges(cmd, ranges)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive ranges")
	return cmd
}

func printRanges(cmd *cobra.Command, ranges []*checkrange.NumberRange) {
	if len(ranges) == 0 {
		cmd.Println("no ranges")
		return
	}
	cmd.Printf("%-36s %-9s %-4s %-10s %-10s %-10s %-9s %-6s\n",
		"RANGE_ID", "CATEGORY", "PRIO", "START", "END", "NEXT", "AVAILABLE", "ACTIVE")
	for _, r := range ranges {
		cmd.Printf("%-36s %-9s %-4d %-10d %-10d %-10d %-9d %-6t\n",
			r.ID, r.Category, r.Priority, r.Start, r.End, r.Cursor, r.AvailableCount(), r.Active)
	}
}

func newRangeUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage <category>",
		Short: "Summarize capacity of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := checkrange.ParseCategory(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				u, err := s.svc.Allocator.Usage(ctx, cat)
				if err != nil {
					return err
				}
				cmd.Printf("%s: %d used, %d available of %d (%.1f%%) in %d active ranges\n",
					cat, u.Used, u.Available, u.TotalCapacity, u.PercentUsed, u.ActiveRanges)
				return nil
			})
		},
	}
}

func newRangeToggleCmd(name string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <range-id>",
		Short: fmt.Sprintf("%s a range", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := entity.ParseID(args[0])
			if err != nil {
				return fmt.Errorf("invalid range id %q: %w", args[0], err)
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				toggle := s.svc.Allocator.Deactivate
				if active {
					toggle = s.svc.Allocator.Activate
				}
				r, err := toggle(ctx, id)
				if err != nil {
					return err
				}
				printRanges(cmd, []*checkrange.NumberRange{r})
				return nil
			})
		},
	}
}
