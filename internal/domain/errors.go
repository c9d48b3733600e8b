package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateCode        = errors.New("account code already exists")
	ErrInvalidParent        = errors.New("invalid parent account")
	ErrAccountInUse         = errors.New("account has journal activity")
	ErrAccountHasChildren   = errors.New("account has child accounts")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrEntryAlreadyPosted   = errors.New("journal entry already posted")
	ErrEntryNotPosted       = errors.New("journal entry is not posted")
	ErrEntryAlreadyReversed = errors.New("journal entry already reversed")
	ErrUnbalancedEntry      = errors.New("journal entry is unbalanced")
	ErrSequenceConflict     = errors.New("document number conflict")
	ErrUnknownSequence      = errors.New("unknown document sequence")
)

// ValidationError reports malformed or missing input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type UnbalancedEntryError struct {
	EntryID     int64
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("entry %d: debits %s != credits %s",
		e.EntryID, e.TotalDebit.StringFixed(AmountScale), e.TotalCredit.StringFixed(AmountScale))
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrUnbalancedEntry }
