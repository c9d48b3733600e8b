package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

// mockTx runs fn without a real transaction; repositories in these tests
// ignore the tx argument.
type mockTx struct {
	calls int
}

func (m *mockTx) WithTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	m.calls++
	return fn(nil)
}

type mockAccountRepo struct {
	accounts map[int64]*domain.Account
	nextID   int64
	used     map[int64]bool
	deleted  []int64
}

func newMockAccountRepo(accounts ...domain.Account) *mockAccountRepo {
	m := &mockAccountRepo{accounts: make(map[int64]*domain.Account), used: make(map[int64]bool)}
	for i := range accounts {
		a := accounts[i]
		m.accounts[a.ID] = &a
		if a.ID > m.nextID {
			m.nextID = a.ID
		}
	}
	return m
}

func (m *mockAccountRepo) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) GetByCode(_ context.Context, code string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.Code == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockAccountRepo) List(_ context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	want := make(map[int64]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		want[id] = true
	}
	var out []domain.Account
	for _, a := range m.accounts {
		if len(want) > 0 && !want[a.ID] {
			continue
		}
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockAccountRepo) Create(_ context.Context, a *domain.Account) error {
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *mockAccountRepo) GetForUpdate(ctx context.Context, _ *sql.Tx, id int64) (*domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *mockAccountRepo) Update(_ context.Context, _ *sql.Tx, a *domain.Account) error {
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *mockAccountRepo) SetActive(_ context.Context, id int64, active bool) error {
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsActive = active
	return nil
}

func (m *mockAccountRepo) LockTree(context.Context, *sql.Tx) error { return nil }

func (m *mockAccountRepo) ParentLinks(context.Context, *sql.Tx) (map[int64]int64, error) {
	links := make(map[int64]int64)
	for _, a := range m.accounts {
		if a.ParentID != nil {
			links[a.ID] = *a.ParentID
		}
	}
	return links, nil
}

func (m *mockAccountRepo) HasItems(_ context.Context, _ *sql.Tx, id int64) (bool, error) {
	return m.used[id], nil
}

func (m *mockAccountRepo) HasChildren(_ context.Context, _ *sql.Tx, id int64) (bool, error) {
	for _, a := range m.accounts {
		if a.ParentID != nil && *a.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccountRepo) Delete(_ context.Context, _ *sql.Tx, id int64) error {
	delete(m.accounts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func ptr[T any](v T) *T { return &v }
