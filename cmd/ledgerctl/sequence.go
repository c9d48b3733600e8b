package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/repository"
	"github.com/josh-kwaku/grey-ledger/internal/service"
)

func newNextNumberCommand(a *app) *cobra.Command {
	var peek bool

	cmd := &cobra.Command{
		Use:       "next-number <kind>",
		Short:     "Allocate the next document number of a kind",
		Example:   "  ledgerctl next-number invoice\n  ledgerctl next-number invoice --peek",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"invoice", "expense", "purchase_order", "asset", "project"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := domain.SequenceKind(args[0])
			if !kind.IsValid() {
				return fmt.Errorf("unknown sequence kind %q", args[0])
			}

			db, err := a.conn(cmd)
			if err != nil {
				return err
			}
			allocator := service.NewSequenceAllocator(repository.NewSequenceRepository(db), repository.NewDB(db), a.cfg)

			if peek {
				number, err := allocator.Peek(cmd.Context(), kind)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), number)
				return nil
			}

			issued, err := allocator.Next(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), issued.Number)
			return nil
		},
	}
	cmd.Flags().BoolVar(&peek, "peek", false, "print the next number without allocating it")
	return cmd
}
