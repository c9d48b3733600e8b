package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

const accountColumns = `id, code, name, description, account_type, parent_id,
	is_active, created_by, created_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE code = $1`, code,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByCode: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByCode: %w", err)
	}
	return a, nil
}

// List returns accounts ordered by code. Empty filter fields match everything.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var types []string
	for _, t := range filter.Types {
		types = append(types, string(t))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE (COALESCE(cardinality($1::text[]), 0) = 0 OR account_type = ANY($1::text[]))
		  AND (COALESCE(cardinality($2::bigint[]), 0) = 0 OR id = ANY($2::bigint[]))
		  AND (NOT $3 OR is_active)
		ORDER BY code`,
		pq.Array(types), pq.Array(filter.IDs), filter.ActiveOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO accounts (code, name, description, account_type, parent_id, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		account.Code, account.Name, account.Description, account.Type,
		account.ParentID, account.IsActive, account.CreatedBy,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "accounts_code_key"):
			return fmt.Errorf("Create: %w", domain.ErrDuplicateCode)
		case isForeignKeyViolation(err):
			return fmt.Errorf("Create: %w", domain.ErrInvalidParent)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

// Update rewrites the editable attributes. Code and type are fixed after creation.
func (r *AccountRepository) Update(ctx context.Context, tx *sql.Tx, account *domain.Account) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET name = $1, description = $2, parent_id = $3, is_active = $4
		WHERE id = $5`,
		account.Name, account.Description, account.ParentID, account.IsActive, account.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("Update: %w", domain.ErrInvalidParent)
		}
		return fmt.Errorf("Update: %w", err)
	}
	return expectOneRow(res, "Update")
}

func (r *AccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = $1 WHERE id = $2`, active, id,
	)
	if err != nil {
		return fmt.Errorf("SetActive: %w", err)
	}
	return expectOneRow(res, "SetActive")
}

// ParentLinks maps every account that has a parent to that parent.
func (r *AccountRepository) ParentLinks(ctx context.Context, tx *sql.Tx) (map[int64]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, parent_id FROM accounts WHERE parent_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("ParentLinks: %w", err)
	}
	defer rows.Close()

	links := make(map[int64]int64)
	for rows.Next() {
		var id, parent int64
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, fmt.Errorf("ParentLinks: scan: %w", err)
		}
		links[id] = parent
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParentLinks: rows: %w", err)
	}
	return links, nil
}

func (r *AccountRepository) HasItems(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_items WHERE account_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("HasItems: %w", err)
	}
	return exists, nil
}

func (r *AccountRepository) HasChildren(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE parent_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("HasChildren: %w", err)
	}
	return exists, nil
}

func (r *AccountRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		// Remaining references (budget lines, or rows committed after our checks).
		if isForeignKeyViolation(err) {
			return fmt.Errorf("Delete: %w", domain.ErrAccountInUse)
		}
		return fmt.Errorf("Delete: %w", err)
	}
	return expectOneRow(res, "Delete")
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func scanAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return accounts, nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var (
		a        domain.Account
		parentID sql.NullInt64
	)
	err := s.Scan(
		&a.ID, &a.Code, &a.Name, &a.Description, &a.Type, &parentID,
		&a.IsActive, &a.CreatedBy, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		a.ParentID = &parentID.Int64
	}
	return &a, nil
}

// LockTree serializes hierarchy edits for the rest of the transaction so two
// concurrent reparentings cannot close a cycle between them.
func (r *AccountRepository) LockTree(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('accounts.parent_id'))`); err != nil {
		return fmt.Errorf("LockTree: %w", err)
	}
	return nil
}
