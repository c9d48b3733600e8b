package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceKind_FormatNumber(t *testing.T) {
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		kind SequenceKind
		seq  int64
		want string
	}{
		{SequenceInvoice, 7, "INV-20240115-007"},
		{SequenceExpense, 1, "EXP-20240115-001"},
		{SequencePurchaseOrder, 1234, "PO-20240115-1234"},
		{SequenceAsset, 7, "FA-202401-0007"},
		{SequenceProject, 12, "PRJ-202401-0012"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			key, err := tt.kind.PeriodKey(at)
			require.NoError(t, err)
			got, err := tt.kind.FormatNumber(key, tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSequenceKind_Unknown(t *testing.T) {
	kind := SequenceKind("receipt")
	assert.False(t, kind.IsValid())

	_, err := kind.PeriodKey(time.Now())
	assert.ErrorIs(t, err, ErrUnknownSequence)

	_, err = kind.FormatNumber("20240101", 1)
	assert.ErrorIs(t, err, ErrUnknownSequence)
}

func TestParseDocumentNumber(t *testing.T) {
	n, err := ParseDocumentNumber("FA-202401-0007")
	require.NoError(t, err)
	assert.Equal(t, SequenceAsset, n.Kind)
	assert.Equal(t, "202401", n.PeriodKey)
	assert.Equal(t, int64(7), n.Seq)

	n, err = ParseDocumentNumber("INV-20240115-1001")
	require.NoError(t, err)
	assert.Equal(t, SequenceInvoice, n.Kind)
	assert.Equal(t, int64(1001), n.Seq)

	for _, bad := range []string{"INV-2024-001", "INV-20241399-001", "INV-20240115-0", "INV20240115001"} {
		_, err := ParseDocumentNumber(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}

	_, err = ParseDocumentNumber("RCT-20240115-001")
	assert.ErrorIs(t, err, ErrUnknownSequence)
}
