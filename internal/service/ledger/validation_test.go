package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

func TestDraftParams_Validate(t *testing.T) {
	valid := func() DraftParams {
		return DraftParams{
			Date:  day("2024-01-15"),
			Items: []ItemParams{debit(cashID, "100"), credit(revenueID, "100")},
		}
	}

	tests := []struct {
		name      string
		mutate    func(p *DraftParams)
		wantField string
	}{
		{name: "valid", mutate: func(*DraftParams) {}},
		{name: "unbalanced draft is allowed", mutate: func(p *DraftParams) { p.Items[1].Credit = dec("90") }},
		{name: "missing date", mutate: func(p *DraftParams) { p.Date = day("0001-01-01") }, wantField: "date"},
		{name: "long reference", mutate: func(p *DraftParams) { p.Reference = strings.Repeat("r", 65) }, wantField: "reference"},
		{name: "multi-byte reference within limit", mutate: func(p *DraftParams) { p.Reference = strings.Repeat("é", 64) }},
		{name: "multi-byte reference over limit", mutate: func(p *DraftParams) { p.Reference = strings.Repeat("é", 65) }, wantField: "reference"},
		{name: "no items", mutate: func(p *DraftParams) { p.Items = nil }, wantField: "items"},
		{name: "missing account", mutate: func(p *DraftParams) { p.Items[0].AccountID = 0 }, wantField: "items[0].account_id"},
		{name: "negative debit", mutate: func(p *DraftParams) { p.Items[0].Debit = dec("-1") }, wantField: "items[0].debit"},
		{name: "three decimals", mutate: func(p *DraftParams) { p.Items[1].Credit = dec("1.001") }, wantField: "items[1].credit"},
		{name: "debit beyond storable range", mutate: func(p *DraftParams) { p.Items[0].Debit = dec("1000000000000000") }, wantField: "items[0].debit"},
		{name: "both sides zero", mutate: func(p *DraftParams) { p.Items[1].Credit = dec("0") }, wantField: "items[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestCheckBalanced(t *testing.T) {
	item := func(d, c string) domain.JournalItem {
		return domain.JournalItem{DebitAmount: dec(d), CreditAmount: dec(c)}
	}

	tests := []struct {
		name    string
		items   []domain.JournalItem
		wantErr error
	}{
		{name: "balanced", items: []domain.JournalItem{item("100", "0"), item("0", "100")}},
		{name: "balanced across several lines", items: []domain.JournalItem{item("60.10", "0"), item("39.90", "0"), item("0", "100.00")}},
		{name: "off by one cent", items: []domain.JournalItem{item("100", "0"), item("0", "99.99")}, wantErr: domain.ErrUnbalancedEntry},
		{name: "no items", items: nil, wantErr: domain.ErrValidation},
		{name: "zero total", items: []domain.JournalItem{item("0", "0")}, wantErr: domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkBalanced(&domain.JournalEntry{ID: 9, Items: tt.items})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
