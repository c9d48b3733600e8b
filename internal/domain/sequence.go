package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type SequenceKind string

const (
	SequenceInvoice       SequenceKind = "invoice"
	SequenceExpense       SequenceKind = "expense"
	SequencePurchaseOrder SequenceKind = "purchase_order"
	SequenceAsset         SequenceKind = "asset"
	SequenceProject       SequenceKind = "project"
)

type sequenceFormat struct {
	prefix  string
	layout  string
	digits  int
	monthly bool
}

var sequenceFormats = map[SequenceKind]sequenceFormat{
	SequenceInvoice:       {prefix: "INV", layout: "20060102", digits: 3},
	SequenceExpense:       {prefix: "EXP", layout: "20060102", digits: 3},
	SequencePurchaseOrder: {prefix: "PO", layout: "20060102", digits: 3},
	SequenceAsset:         {prefix: "FA", layout: "200601", digits: 4, monthly: true},
	SequenceProject:       {prefix: "PRJ", layout: "200601", digits: 4, monthly: true},
}

func (k SequenceKind) IsValid() bool {
	_, ok := sequenceFormats[k]
	return ok
}

func (k SequenceKind) Prefix() string {
	return sequenceFormats[k].prefix
}

// PeriodKey is the date part that scopes a counter; numbering restarts at 1
// for every new key.
func (k SequenceKind) PeriodKey(at time.Time) (string, error) {
	f, ok := sequenceFormats[k]
	if !ok {
		return "", fmt.Errorf("PeriodKey: %w: %q", ErrUnknownSequence, k)
	}
	return at.UTC().Format(f.layout), nil
}

// FormatNumber renders e.g. INV-20240115-007 or FA-202401-0007. Sequence
// values wider than the pad keep all their digits.
func (k SequenceKind) FormatNumber(periodKey string, seq int64) (string, error) {
	f, ok := sequenceFormats[k]
	if !ok {
		return "", fmt.Errorf("FormatNumber: %w: %q", ErrUnknownSequence, k)
	}
	if seq < 1 {
		return "", NewValidationError("seq", "must be positive")
	}
	return fmt.Sprintf("%s-%s-%0*d", f.prefix, periodKey, f.digits, seq), nil
}

type DocumentNumber struct {
	Kind      SequenceKind
	PeriodKey string
	Seq       int64
}

func ParseDocumentNumber(number string) (*DocumentNumber, error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return nil, NewValidationError("number", "must look like PREFIX-DATE-SEQ")
	}
	for kind, f := range sequenceFormats {
		if f.prefix != parts[0] {
			continue
		}
		if len(parts[1]) != len(f.layout) {
			return nil, NewValidationError("number", "date part must be %d digits", len(f.layout))
		}
		if _, err := time.Parse(f.layout, parts[1]); err != nil {
			return nil, NewValidationError("number", "invalid date part")
		}
		seq, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || seq < 1 {
			return nil, NewValidationError("number", "invalid sequence part")
		}
		return &DocumentNumber{Kind: kind, PeriodKey: parts[1], Seq: seq}, nil
	}
	return nil, fmt.Errorf("ParseDocumentNumber: %w: prefix %q", ErrUnknownSequence, parts[0])
}

type IssuedNumber struct {
	Number    string
	Kind      SequenceKind
	PeriodKey string
	Seq       int64
	IssuedAt  time.Time
}
