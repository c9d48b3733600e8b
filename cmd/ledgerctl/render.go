package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/service/report"
)

var (
	printer = message.NewPrinter(language.English)
	title   = cases.Title(language.English)
)

// money renders 1234567.5 as 1,234,567.50.
func money(d decimal.Decimal) string {
	return printer.Sprintf("%v", number.Decimal(d.Round(domain.AmountScale).InexactFloat64(),
		number.Scale(domain.AmountScale)))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func renderTrialBalance(w io.Writer, tb *report.TrialBalance) error {
	fmt.Fprintf(w, "Trial Balance as of %s\n\n", tb.AsOf.Format(domain.DateLayout))

	tw := newTable(w)
	fmt.Fprintln(tw, "Code\tAccount\tType\tDebit\tCredit\t")
	for _, l := range tb.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			l.Account.Code, l.Account.Name, title.String(string(l.Account.Type)),
			blankZero(l.Debit), blankZero(l.Credit))
	}
	fmt.Fprintf(tw, "\tTotal\t\t%s\t%s\t\n", money(tb.TotalDebit), money(tb.TotalCredit))
	if err := tw.Flush(); err != nil {
		return err
	}

	if !tb.Balanced {
		fmt.Fprintf(w, "\nOUT OF BALANCE by %s\n", money(tb.TotalDebit.Sub(tb.TotalCredit).Abs()))
	}
	return nil
}

func renderBalanceSheet(w io.Writer, bs *report.BalanceSheet) error {
	fmt.Fprintf(w, "Balance Sheet as of %s\n\n", bs.AsOf.Format(domain.DateLayout))

	tw := newTable(w)
	writeSection(tw, "Assets", bs.Assets)
	writeSection(tw, "Liabilities", bs.Liabilities)
	writeSection(tw, "Equity", bs.Equity)
	fmt.Fprintf(tw, "\tTotal Liabilities and Equity\t%s\t\n", money(bs.TotalLiabilitiesAndEquity))
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, warning := range bs.Warnings {
		fmt.Fprintf(w, "\nwarning: %s\n", warning)
	}
	return nil
}

func renderProfitAndLoss(w io.Writer, p *report.ProfitAndLoss) error {
	fmt.Fprintf(w, "Profit and Loss %s to %s\n\n",
		p.Start.Format(domain.DateLayout), p.End.Format(domain.DateLayout))

	tw := newTable(w)
	writeSection(tw, "Revenue", p.Revenue)
	writeSection(tw, "Expenses", p.Expenses)
	fmt.Fprintf(tw, "\tNet Income\t%s\t\n", money(p.NetIncome))
	return tw.Flush()
}

func writeSection(tw io.Writer, heading string, s report.Section) {
	fmt.Fprintf(tw, "%s\t\t\t\n", heading)
	for _, ab := range s.Accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", ab.Account.Code, ab.Account.Name, money(ab.Balance))
	}
	fmt.Fprintf(tw, "\tTotal %s\t%s\t\n", title.String(heading), money(s.Total))
	fmt.Fprintln(tw, "\t\t\t")
}

func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money(d)
}
