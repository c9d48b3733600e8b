package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

// BalanceRepository aggregates journal items. It returns raw debit and credit
// sums only; the sign rule is applied by the caller.
type BalanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

const windowPredicate = `($2::date IS NULL OR e.entry_date >= $2::date)
	  AND ($3::date IS NULL OR e.entry_date <= $3::date)
	  AND (e.is_posted OR $4)`

func (r *BalanceRepository) Totals(ctx context.Context, accountID int64, w domain.Window, includeUnposted bool) (domain.Totals, error) {
	var t domain.Totals
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(i.debit_amount), 0), COALESCE(SUM(i.credit_amount), 0)
		FROM journal_items i
		JOIN journal_entries e ON e.id = i.journal_entry_id
		WHERE i.account_id = $1 AND `+windowPredicate,
		accountID, dateArg(w.Start), dateArg(w.End), includeUnposted,
	).Scan(&t.Debit, &t.Credit)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("Totals: %w", err)
	}
	return t, nil
}

// TotalsByAccount sums every account in ids (all accounts when ids is empty).
// Accounts without matching items are absent from the result.
func (r *BalanceRepository) TotalsByAccount(ctx context.Context, ids []int64, w domain.Window, includeUnposted bool) (map[int64]domain.Totals, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.account_id, SUM(i.debit_amount), SUM(i.credit_amount)
		FROM journal_items i
		JOIN journal_entries e ON e.id = i.journal_entry_id
		WHERE (COALESCE(cardinality($1::bigint[]), 0) = 0 OR i.account_id = ANY($1::bigint[]))
		  AND `+windowPredicate+`
		GROUP BY i.account_id`,
		pq.Array(ids), dateArg(w.Start), dateArg(w.End), includeUnposted,
	)
	if err != nil {
		return nil, fmt.Errorf("TotalsByAccount: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]domain.Totals)
	for rows.Next() {
		var (
			id int64
			t  domain.Totals
		)
		if err := rows.Scan(&id, &t.Debit, &t.Credit); err != nil {
			return nil, fmt.Errorf("TotalsByAccount: scan: %w", err)
		}
		out[id] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TotalsByAccount: rows: %w", err)
	}
	return out, nil
}

// Lines returns an account's items in replay order: entry date, entry id, line.
func (r *BalanceRepository) Lines(ctx context.Context, accountID int64, w domain.Window, includeUnposted bool) ([]domain.LedgerLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.entry_date, e.reference, e.description, e.is_posted,
			i.id, i.line_no, i.account_id, i.description, i.debit_amount, i.credit_amount
		FROM journal_items i
		JOIN journal_entries e ON e.id = i.journal_entry_id
		WHERE i.account_id = $1 AND `+windowPredicate+`
		ORDER BY e.entry_date, e.id, i.line_no`,
		accountID, dateArg(w.Start), dateArg(w.End), includeUnposted,
	)
	if err != nil {
		return nil, fmt.Errorf("Lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.LedgerLine
	for rows.Next() {
		var l domain.LedgerLine
		if err := rows.Scan(
			&l.EntryID, &l.EntryDate, &l.Reference, &l.EntryDescription, &l.IsPosted,
			&l.ItemID, &l.LineNo, &l.AccountID, &l.Description, &l.Debit, &l.Credit,
		); err != nil {
			return nil, fmt.Errorf("Lines: scan: %w", err)
		}
		l.EntryDate = domain.TruncateDay(l.EntryDate)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Lines: rows: %w", err)
	}
	return lines, nil
}

// MonthlyTotalsByType groups posted activity by calendar month and account type.
func (r *BalanceRepository) MonthlyTotalsByType(ctx context.Context, w domain.Window, types []domain.AccountType) ([]domain.MonthlyTypeTotals, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT date_trunc('month', e.entry_date)::date AS month, a.account_type,
			SUM(i.debit_amount), SUM(i.credit_amount)
		FROM journal_items i
		JOIN journal_entries e ON e.id = i.journal_entry_id
		JOIN accounts a ON a.id = i.account_id
		WHERE a.account_type = ANY($1::text[]) AND `+windowPredicate+`
		GROUP BY month, a.account_type
		ORDER BY month, a.account_type`,
		pq.Array(names), dateArg(w.Start), dateArg(w.End), false,
	)
	if err != nil {
		return nil, fmt.Errorf("MonthlyTotalsByType: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlyTypeTotals
	for rows.Next() {
		var m domain.MonthlyTypeTotals
		if err := rows.Scan(&m.Month, &m.Type, &m.Debit, &m.Credit); err != nil {
			return nil, fmt.Errorf("MonthlyTotalsByType: scan: %w", err)
		}
		m.Month = domain.TruncateDay(m.Month)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MonthlyTotalsByType: rows: %w", err)
	}
	return out, nil
}
