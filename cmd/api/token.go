package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-ops/config"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/pkg/auth"
)

// tokenCmd mints an access token signed with the configured secret, for
// local testing against a running server.
func tokenCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetInt64("user-id")
			roleName, _ := cmd.Flags().GetString("role")

			role, err := model.ParseRole(roleName)
			if err != nil {
				return err
			}
			if userID <= 0 {
				return fmt.Errorf("user-id must be positive")
			}

			cfg, err := config.LoadConfig(*configFile)
			if err != nil {
				return err
			}
			signed, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL()).
				GenerateAccessToken(model.Identity{UserID: userID, Role: role})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().Int64("user-id", 0, "user id to place in the token subject")
	cmd.Flags().String("role", "admin", "role claim: patient, doctor, admin or lab")
	return cmd
}
