package main

import (
	"time"

	"github.com/spf13/cobra"

	"paybatch/internal/config"
	"paybatch/internal/domain/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		operatorID string
		name       string
		roles      []string
		ttl        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator access token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			jwtCfg := auth.JWTConfig{
				Secret:         cfg.Auth.JWTSecret,
				Issuer:         cfg.Auth.Issuer,
				AccessTokenTTL: cfg.Auth.AccessTokenTTL,
			}
			if ttl > 0 {
				jwtCfg.AccessTokenTTL = ttl
			}

			token, expiresAt, err := auth.NewJWTService(jwtCfg).IssueToken(operatorID, name, roles)
			if err != nil {
				return err
			}
			cmd.Println(token)
			cmd.PrintErrf("expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&operatorID, "id", "", "operator id")
	cmd.Flags().StringVar(&name, "name", "", "operator display name")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleOperator}, "operator or admin, repeatable")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from config)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
