package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// SeedAccount inserts an active top-level account and returns it.
func SeedAccount(t *testing.T, db *sql.DB, code, name string, typ domain.AccountType) *domain.Account {
	t.Helper()

	a := &domain.Account{
		Code:      code,
		Name:      name,
		Type:      typ,
		IsActive:  true,
		CreatedBy: &SystemUserID,
	}
	err := db.QueryRow(
		`INSERT INTO accounts (code, name, account_type, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.Code, a.Name, string(a.Type), a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		t.Fatalf("seed account %s: %v", code, err)
	}
	return a
}

// Line is one side of a fixture entry; exactly one of Debit or Credit is set.
type Line struct {
	AccountID int64
	Debit     string
	Credit    string
}

// SeedPostedEntry writes a posted journal entry directly, bypassing the
// service layer. Items are inserted before the header flips to posted.
func SeedPostedEntry(t *testing.T, db *sql.DB, date time.Time, reference string, lines ...Line) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		`INSERT INTO journal_entries (entry_date, reference, created_by)
		 VALUES ($1, $2, $3) RETURNING id`,
		date.Format(domain.DateLayout), reference, SystemUserID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed entry %s: %v", reference, err)
	}

	for i, l := range lines {
		_, err := db.Exec(
			`INSERT INTO journal_items (journal_entry_id, line_no, account_id, debit_amount, credit_amount)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, i+1, l.AccountID, amountArg(l.Debit), amountArg(l.Credit),
		)
		if err != nil {
			t.Fatalf("seed item %d of %s: %v", i+1, reference, err)
		}
	}

	if _, err := db.Exec(
		`UPDATE journal_entries SET is_posted = TRUE, posted_at = now(), posted_by = $1 WHERE id = $2`,
		SystemUserID, id,
	); err != nil {
		t.Fatalf("post entry %s: %v", reference, err)
	}
	return id
}

func amountArg(s string) string {
	if s == "" {
		return "0"
	}
	return decimal.RequireFromString(s).StringFixed(domain.AmountScale)
}

func Date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
