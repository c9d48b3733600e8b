package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists every classification in chart order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

type NormalSide string

const (
	NormalDebit  NormalSide = "debit"
	NormalCredit NormalSide = "credit"
)

// NormalSide panics on an unknown type; callers validate with IsValid first.
func (t AccountType) NormalSide() NormalSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalDebit
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return NormalCredit
	}
	panic("domain: unknown account type " + string(t))
}

// Signed turns raw debit and credit totals into a balance in the account's
// natural direction. Every balance in the system goes through here.
func (t AccountType) Signed(debit, credit decimal.Decimal) decimal.Decimal {
	if t.NormalSide() == NormalDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// IsBalanceSheet reports whether the type carries a balance across periods.
func (t AccountType) IsBalanceSheet() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity:
		return true
	}
	return false
}

type Account struct {
	ID          int64
	Code        string
	Name        string
	Description string
	Type        AccountType
	ParentID    *int64
	IsActive    bool
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
}

type AccountNode struct {
	Account
	Children []*AccountNode
}

// BuildTree arranges accounts into a forest ordered by code at every level.
// Accounts whose parent is not in the input are treated as roots.
func BuildTree(accounts []Account) []*AccountNode {
	nodes := make(map[int64]*AccountNode, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &AccountNode{Account: a}
	}

	var roots []*AccountNode
	for _, a := range accounts {
		n := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*AccountNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Code < nodes[j].Code })
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// IsDescendant reports whether candidate sits below id in the parent chain
// described by parents (child id -> parent id).
func IsDescendant(parents map[int64]int64, id, candidate int64) bool {
	seen := make(map[int64]bool)
	for cur := candidate; ; {
		p, ok := parents[cur]
		if !ok {
			return false
		}
		if p == id {
			return true
		}
		if seen[p] {
			return false
		}
		seen[p] = true
		cur = p
	}
}

type AccountFilter struct {
	Types      []AccountType
	IDs        []int64
	ActiveOnly bool
}
