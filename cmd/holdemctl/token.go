package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"holdem-server/internal/config"
	"holdem-server/internal/jwt"
)

func newTokenCmd() *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a credential for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user-id is required")
			}

			cfg := config.Instance()
			keys, err := jwt.LoadKeys(cfg.JWT.PublicKey, cfg.JWT.PrivateKey)
			if err != nil {
				return err
			}

			token, err := keys.Sign(userID, ttl)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "User to sign the credential for")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "How long the credential is valid, 0 never expires")

	return cmd
}
