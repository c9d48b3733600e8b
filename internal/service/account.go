package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

const (
	maxCodeLen = 20
	maxNameLen = 128
)

type AccountService struct {
	accounts accountRepository
	tx       txRunner
}

func NewAccountService(accounts accountRepository, tx txRunner) *AccountService {
	return &AccountService{accounts: accounts, tx: tx}
}

type CreateAccountParams struct {
	Code        string
	Name        string
	Description string
	Type        domain.AccountType
	ParentID    *int64
	CreatedBy   *uuid.UUID
}

func (p *CreateAccountParams) normalize() {
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
}

func (p CreateAccountParams) Validate() error {
	if err := validateCodeName(p.Code, p.Name); err != nil {
		return err
	}
	if !p.Type.IsValid() {
		return domain.NewValidationError("type", "must be one of asset, liability, equity, revenue, expense")
	}
	return nil
}

func validateCodeName(code, name string) error {
	switch {
	case code == "":
		return domain.NewValidationError("code", "required")
	case utf8.RuneCountInString(code) > maxCodeLen:
		return domain.NewValidationError("code", "must be at most %d characters", maxCodeLen)
	case name == "":
		return domain.NewValidationError("name", "required")
	case utf8.RuneCountInString(name) > maxNameLen:
		return domain.NewValidationError("name", "must be at most %d characters", maxNameLen)
	}
	return nil
}

func (s *AccountService) CreateAccount(ctx context.Context, params CreateAccountParams) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	params.normalize()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	_, err := s.accounts.GetByCode(ctx, params.Code)
	if err == nil {
		return nil, fmt.Errorf("CreateAccount: %w: %s", domain.ErrDuplicateCode, params.Code)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("CreateAccount: check code: %w", err)
	}

	if params.ParentID != nil {
		if _, err := s.accounts.GetByID(ctx, *params.ParentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("CreateAccount: %w: parent %d does not exist", domain.ErrInvalidParent, *params.ParentID)
			}
			return nil, fmt.Errorf("CreateAccount: check parent: %w", err)
		}
	}

	account := &domain.Account{
		Code:        params.Code,
		Name:        params.Name,
		Description: params.Description,
		Type:        params.Type,
		ParentID:    params.ParentID,
		IsActive:    true,
		CreatedBy:   params.CreatedBy,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_id", account.ID,
		"code", account.Code,
		"type", account.Type,
	)
	return account, nil
}

// UpdateAccountParams is a partial update: nil fields are left as they are.
// ClearParent moves the account to the root and cannot be combined with
// ParentID.
type UpdateAccountParams struct {
	Name        *string
	Description *string
	ParentID    *int64
	ClearParent bool
}

func (p *UpdateAccountParams) normalize() {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
}

func (p UpdateAccountParams) Validate(id int64) error {
	if p.Name != nil {
		if *p.Name == "" {
			return domain.NewValidationError("name", "required")
		}
		if utf8.RuneCountInString(*p.Name) > maxNameLen {
			return domain.NewValidationError("name", "must be at most %d characters", maxNameLen)
		}
	}
	if p.ParentID != nil && p.ClearParent {
		return domain.NewValidationError("parent_id", "cannot both set and clear the parent")
	}
	if p.ParentID != nil && *p.ParentID == id {
		return fmt.Errorf("%w: account cannot be its own parent", domain.ErrInvalidParent)
	}
	return nil
}

// UpdateAccount edits name, description and parent. Code and type are fixed.
func (s *AccountService) UpdateAccount(ctx context.Context, id int64, params UpdateAccountParams) (*domain.Account, error) {
	params.normalize()
	if err := params.Validate(id); err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}

	var account *domain.Account
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.accounts.LockTree(ctx, tx); err != nil {
			return err
		}

		var err error
		account, err = s.accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if params.ParentID != nil {
			if _, err := s.accounts.GetForUpdate(ctx, tx, *params.ParentID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: parent %d does not exist", domain.ErrInvalidParent, *params.ParentID)
				}
				return err
			}
			links, err := s.accounts.ParentLinks(ctx, tx)
			if err != nil {
				return err
			}
			if domain.IsDescendant(links, id, *params.ParentID) {
				return fmt.Errorf("%w: parent %d is a descendant of %d", domain.ErrInvalidParent, *params.ParentID, id)
			}
		}

		if params.Name != nil {
			account.Name = *params.Name
		}
		if params.Description != nil {
			account.Description = *params.Description
		}
		switch {
		case params.ClearParent:
			account.ParentID = nil
		case params.ParentID != nil:
			account.ParentID = params.ParentID
		}
		return s.accounts.Update(ctx, tx, account)
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account updated", "account_id", id, "parent_id", account.ParentID)
	return account, nil
}

// DeactivateAccount hides the account from new drafts. History is untouched.
func (s *AccountService) DeactivateAccount(ctx context.Context, id int64) error {
	if err := s.accounts.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("DeactivateAccount: %w", err)
	}
	logging.FromContext(ctx).Info("account deactivated", "account_id", id)
	return nil
}

func (s *AccountService) ReactivateAccount(ctx context.Context, id int64) error {
	if err := s.accounts.SetActive(ctx, id, true); err != nil {
		return fmt.Errorf("ReactivateAccount: %w", err)
	}
	logging.FromContext(ctx).Info("account reactivated", "account_id", id)
	return nil
}

// DeleteAccount removes an account that has never been used and has no children.
func (s *AccountService) DeleteAccount(ctx context.Context, id int64) error {
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.accounts.GetForUpdate(ctx, tx, id); err != nil {
			return err
		}

		used, err := s.accounts.HasItems(ctx, tx, id)
		if err != nil {
			return err
		}
		if used {
			return domain.ErrAccountInUse
		}

		children, err := s.accounts.HasChildren(ctx, tx, id)
		if err != nil {
			return err
		}
		if children {
			return domain.ErrAccountHasChildren
		}

		return s.accounts.Delete(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account deleted", "account_id", id)
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	for _, t := range filter.Types {
		if !t.IsValid() {
			return nil, fmt.Errorf("ListAccounts: %w", domain.NewValidationError("type", "unknown account type %q", t))
		}
	}
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) ListByType(ctx context.Context, t domain.AccountType) ([]domain.Account, error) {
	accounts, err := s.ListAccounts(ctx, domain.AccountFilter{Types: []domain.AccountType{t}})
	if err != nil {
		return nil, fmt.Errorf("ListByType: %w", err)
	}
	return accounts, nil
}

// GetTree returns the whole chart as a forest, ordered by code at every level.
func (s *AccountService) GetTree(ctx context.Context) ([]*domain.AccountNode, error) {
	accounts, err := s.accounts.List(ctx, domain.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("GetTree: %w", err)
	}
	return domain.BuildTree(accounts), nil
}

type SeedAccount struct {
	Code        string
	Name        string
	Description string
	Type        domain.AccountType
	ParentCode  string
}

type SeedResult struct {
	Created []string
	Skipped []string
}

// SeedChart creates the given accounts in order, skipping codes that already
// exist. A parent must appear earlier in the list or already be in the chart.
func (s *AccountService) SeedChart(ctx context.Context, accounts []SeedAccount, createdBy *uuid.UUID) (*SeedResult, error) {
	result := &SeedResult{}
	ids := make(map[string]int64)

	for _, sa := range accounts {
		existing, err := s.accounts.GetByCode(ctx, strings.TrimSpace(sa.Code))
		if err == nil {
			ids[existing.Code] = existing.ID
			result.Skipped = append(result.Skipped, existing.Code)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return result, fmt.Errorf("SeedChart: %s: %w", sa.Code, err)
		}

		params := CreateAccountParams{
			Code:        sa.Code,
			Name:        sa.Name,
			Description: sa.Description,
			Type:        sa.Type,
			CreatedBy:   createdBy,
		}
		if sa.ParentCode != "" {
			parentID, ok := ids[sa.ParentCode]
			if !ok {
				parent, err := s.accounts.GetByCode(ctx, sa.ParentCode)
				if err != nil {
					return result, fmt.Errorf("SeedChart: %s: parent %s: %w", sa.Code, sa.ParentCode, domain.ErrInvalidParent)
				}
				parentID = parent.ID
			}
			params.ParentID = &parentID
		}

		account, err := s.CreateAccount(ctx, params)
		if err != nil {
			return result, fmt.Errorf("SeedChart: %w", err)
		}
		ids[account.Code] = account.ID
		result.Created = append(result.Created, account.Code)
	}
	return result, nil
}
