package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type unbalancedDetails struct {
	EntryID     int64  `json:"entry_id"`
	TotalDebit  string `json:"total_debit"`
	TotalCredit string `json:"total_credit"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps service errors onto the API error catalogue.
// Typed errors contribute their fields as details.
func RespondDomainError(w http.ResponseWriter, err error) {
	var (
		validation *domain.ValidationError
		unbalanced *domain.UnbalancedEntryError
	)
	switch {
	case errors.As(err, &validation):
		RespondValidationError(w, []FieldError{{Field: validation.Field, Message: validation.Message}})
		return
	case errors.As(err, &unbalanced):
		RespondAppError(w, ErrUnbalancedEntry, unbalancedDetails{
			EntryID:     unbalanced.EntryID,
			TotalDebit:  unbalanced.TotalDebit.StringFixed(domain.AmountScale),
			TotalCredit: unbalanced.TotalCredit.StringFixed(domain.AmountScale),
		})
		return
	}

	var appErr *AppError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrValidation):
		appErr = ErrValidationFailed
	case errors.Is(err, domain.ErrDuplicateCode):
		appErr = ErrDuplicateCode
	case errors.Is(err, domain.ErrInvalidParent):
		appErr = ErrInvalidParent
	case errors.Is(err, domain.ErrAccountInUse):
		appErr = ErrAccountInUse
	case errors.Is(err, domain.ErrAccountHasChildren):
		appErr = ErrAccountHasChildren
	case errors.Is(err, domain.ErrAccountInactive):
		appErr = ErrAccountInactive
	case errors.Is(err, domain.ErrEntryAlreadyPosted):
		appErr = ErrEntryAlreadyPosted
	case errors.Is(err, domain.ErrEntryNotPosted):
		appErr = ErrEntryNotPosted
	case errors.Is(err, domain.ErrEntryAlreadyReversed):
		appErr = ErrEntryAlreadyReversed
	case errors.Is(err, domain.ErrUnbalancedEntry):
		appErr = ErrUnbalancedEntry
	case errors.Is(err, domain.ErrSequenceConflict):
		appErr = ErrSequenceConflict
	case errors.Is(err, domain.ErrUnknownSequence):
		appErr = ErrUnknownSequence
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
