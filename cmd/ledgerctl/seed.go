package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/grey-ledger/internal/chart"
	"github.com/josh-kwaku/grey-ledger/internal/repository"
	"github.com/josh-kwaku/grey-ledger/internal/service"
)

func newSeedChartCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-chart",
		Short: "Create the chart of accounts from a YAML file",
		Long: `Create every account in the chart file, parents first. Codes that
already exist are skipped, so the command can be re-run safely. Without
--file the built-in default chart is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := chart.Default()
			if file != "" {
				c, err = chart.LoadFile(file)
			}
			if err != nil {
				return err
			}

			db, err := a.conn(cmd)
			if err != nil {
				return err
			}
			accounts := service.NewAccountService(repository.NewAccountRepository(db), repository.NewDB(db))

			result, err := accounts.SeedChart(cmd.Context(), c.Seeds(), nil)
			if err != nil {
				return err
			}
			slog.Info("chart seeded", "chart", c.Name, "created", len(result.Created), "skipped", len(result.Skipped))

			out := cmd.OutOrStdout()
			for _, code := range result.Created {
				fmt.Fprintf(out, "created %s\n", code)
			}
			for _, code := range result.Skipped {
				fmt.Fprintf(out, "skipped %s\n", code)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "chart YAML file (default: built-in chart)")
	return cmd
}
