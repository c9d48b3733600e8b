package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/grey-ledger/internal/auth"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		userID string
		email  string
		perms  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed API token for development",
		Example: `  ledgerctl token --email ops@example.com --perms view,create
  ledgerctl token --user 7d6f... --perms all --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("--user: %w", err)
				}
				id = parsed
			}

			granted, err := auth.ParsePermissions(perms)
			if err != nil {
				return fmt.Errorf("--perms: %w", err)
			}
			if ttl <= 0 {
				ttl = a.cfg.TokenTTL
			}

			token, err := auth.GenerateToken(id, email, granted, a.cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (default: random)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&perms, "perms", "view", "comma-separated permissions or \"all\"")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default TOKEN_TTL)")
	return cmd
}
