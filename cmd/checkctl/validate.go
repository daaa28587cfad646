package main

import (
	"github.com/spf13/cobra"

	"paybatch/internal/core/checkdigit"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check CUIT/CUIL and CBU check digits",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "tax-id <cuit>",
			Short: "Validate a CUIT or CUIL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := checkdigit.ValidateTaxID(args[0])
				if err != nil {
					return err
				}
				cmd.Printf("valid %s\n", id.Formatted())
				return nil
			},
		},
		&cobra.Command{
			Use:   "account-code <cbu>",
			Short: "Validate a 22-digit CBU",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				code, err := checkdigit.ValidateBankAccountCode(args[0])
				if err != nil {
					return err
				}
				cmd.Printf("valid %s\n", code.Formatted())
				return nil
			},
		},
	)
	return cmd
}
