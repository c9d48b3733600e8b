package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrForbidden        = &AppError{http.StatusForbidden, "FORBIDDEN", "Missing permission for this action"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrDuplicateCode        = &AppError{http.StatusConflict, "DUPLICATE_CODE", "Account code already exists"}
	ErrInvalidParent        = &AppError{http.StatusUnprocessableEntity, "INVALID_PARENT", "Invalid parent account"}
	ErrAccountInUse         = &AppError{http.StatusConflict, "ACCOUNT_IN_USE", "Account has journal activity"}
	ErrAccountHasChildren   = &AppError{http.StatusConflict, "ACCOUNT_HAS_CHILDREN", "Account has child accounts"}
	ErrAccountInactive      = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_INACTIVE", "Account is inactive"}
	ErrEntryAlreadyPosted   = &AppError{http.StatusConflict, "ENTRY_ALREADY_POSTED", "Journal entry is posted and cannot be changed"}
	ErrEntryNotPosted       = &AppError{http.StatusUnprocessableEntity, "ENTRY_NOT_POSTED", "Only posted entries can be reversed"}
	ErrEntryAlreadyReversed = &AppError{http.StatusConflict, "ENTRY_ALREADY_REVERSED", "Journal entry has already been reversed"}
	ErrUnbalancedEntry      = &AppError{http.StatusUnprocessableEntity, "UNBALANCED_ENTRY", "Total debits must equal total credits"}
	ErrSequenceConflict     = &AppError{http.StatusServiceUnavailable, "SEQUENCE_CONFLICT", "Could not allocate a document number, please retry"}
	ErrUnknownSequence      = &AppError{http.StatusNotFound, "UNKNOWN_SEQUENCE", "Unknown document sequence"}

	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
