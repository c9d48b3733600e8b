package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/repository"
	"github.com/josh-kwaku/grey-ledger/internal/service/ledger"
	"github.com/josh-kwaku/grey-ledger/internal/service/report"
)

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print financial statements",
	}

	var asOf, start, end string

	reports := func(cmd *cobra.Command) (*report.Service, error) {
		db, err := a.conn(cmd)
		if err != nil {
			return nil, err
		}
		accounts := repository.NewAccountRepository(db)
		balances := repository.NewBalanceRepository(db)
		calc := ledger.NewBalanceCalculator(balances, accounts)
		return report.NewService(accounts, calc, repository.NewBudgetRepository(db), balances), nil
	}

	trial := &cobra.Command{
		Use:   "trial-balance",
		Short: "Debit and credit columns for every account with a balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay("as-of", asOf, today())
			if err != nil {
				return err
			}
			svc, err := reports(cmd)
			if err != nil {
				return err
			}
			tb, err := svc.TrialBalance(cmd.Context(), date)
			if err != nil {
				return err
			}
			return renderTrialBalance(cmd.OutOrStdout(), tb)
		},
	}
	trial.Flags().StringVar(&asOf, "as-of", "", "report date, YYYY-MM-DD (default today)")

	sheet := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Assets against liabilities and equity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay("as-of", asOf, today())
			if err != nil {
				return err
			}
			svc, err := reports(cmd)
			if err != nil {
				return err
			}
			bs, err := svc.BalanceSheet(cmd.Context(), date)
			if err != nil {
				return err
			}
			return renderBalanceSheet(cmd.OutOrStdout(), bs)
		},
	}
	sheet.Flags().StringVar(&asOf, "as-of", "", "report date, YYYY-MM-DD (default today)")

	pnl := &cobra.Command{
		Use:   "pnl",
		Short: "Revenue, expenses and net income for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := today()
			from, err := parseDay("start", start, time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
			if err != nil {
				return err
			}
			to, err := parseDay("end", end, now)
			if err != nil {
				return err
			}
			svc, err := reports(cmd)
			if err != nil {
				return err
			}
			p, err := svc.ProfitAndLoss(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			return renderProfitAndLoss(cmd.OutOrStdout(), p)
		},
	}
	pnl.Flags().StringVar(&start, "start", "", "period start, YYYY-MM-DD (default January 1)")
	pnl.Flags().StringVar(&end, "end", "", "period end, YYYY-MM-DD (default today)")

	cmd.AddCommand(trial, sheet, pnl)
	return cmd
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func parseDay(flag, s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", flag, s)
	}
	return t, nil
}
