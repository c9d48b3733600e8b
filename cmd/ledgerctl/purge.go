package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/grey-ledger/internal/repository"
)

func newPurgeIdempotencyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-idempotency",
		Short: "Delete expired cached idempotent responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.conn(cmd)
			if err != nil {
				return err
			}
			n, err := repository.NewIdempotencyRepository(db).PurgeExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			slog.Info("expired idempotency keys purged", "rows", n)
			return nil
		},
	}
}
