package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newReferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Manage payment references",
	}
	cmd.AddCommand(newReferenceCreateCmd(), newReferenceNextCmd(), newReferenceListCmd())
	return cmd
}

func newReferenceCreateCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <code>",
		Short: "Create a reference, e.g. LABSE0000118",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				r, err := s.svc.References.Create(ctx, args[0], description)
				if err != nil {
					return err
				}
				cmd.Printf("created reference %s id=%s\n", r.Code, r.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "free text description")
	return cmd
}

func newReferenceNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <prefix>",
		Short: "Print the next free code for a 5-letter prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				code, err := s.svc.References.NextCode(ctx, args[0])
				if err != nil {
					return err
				}
				cmd.Println(code)
				return nil
			})
		},
	}
}

func newReferenceListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				refs, err := s.svc.References.List(ctx, all)
				if err != nil {
					return err
				}
				cmd.Printf("%-36s %-12s %-6s %s\n", "REFERENCE_ID", "CODE", "ACTIVE", "DESCRIPTION")
				for _, r := range refs {
					cmd.Printf("%-36s %-12s %-6t %s\n", r.ID, r.Code, r.Active, r.Description)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive references")
	return cmd
}
