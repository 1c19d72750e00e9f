package main

import (
	"fmt"

	"github.com/spf13/cobra"

	httpapi "github.com/garyjia/event-finance/internal/interfaces/http"
)

var (
	flagUser string
	flagRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user and role",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&flagUser, "user", "u", "", "User ID placed in the sub claim")
	tokenCmd.Flags().StringVarP(&flagRole, "role", "r", "", "Role placed in the role claim")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	issuer, err := httpapi.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	token, err := issuer.Issue(flagUser, flagRole)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
