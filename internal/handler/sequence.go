package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type sequenceAllocator interface {
	Next(ctx context.Context, kind domain.SequenceKind) (*domain.IssuedNumber, error)
	Peek(ctx context.Context, kind domain.SequenceKind) (string, error)
}

type SequenceHandler struct {
	sequences sequenceAllocator
}

func NewSequenceHandler(sequences sequenceAllocator) *SequenceHandler {
	return &SequenceHandler{sequences: sequences}
}

type issuedNumberDTO struct {
	Number    string    `json:"number"`
	Kind      string    `json:"kind"`
	PeriodKey string    `json:"period_key"`
	Seq       int64     `json:"seq"`
	IssuedAt  time.Time `json:"issued_at"`
}

type peekNumberDTO struct {
	Kind       string `json:"kind"`
	NextNumber string `json:"next_number"`
}

// Peek serves GET /sequences/{kind}. The number is not reserved.
func (h *SequenceHandler) Peek(w http.ResponseWriter, r *http.Request) {
	kind := domain.SequenceKind(r.PathValue("kind"))
	if !kind.IsValid() {
		RespondAppError(w, ErrUnknownSequence, nil)
		return
	}

	number, err := h.sequences.Peek(r.Context(), kind)
	if err != nil {
		logging.FromContext(r.Context()).Warn("document number peek failed", "kind", kind, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, peekNumberDTO{Kind: string(kind), NextNumber: number})
}

// Next serves POST /sequences/{kind}.
func (h *SequenceHandler) Next(w http.ResponseWriter, r *http.Request) {
	kind := domain.SequenceKind(r.PathValue("kind"))
	if !kind.IsValid() {
		RespondAppError(w, ErrUnknownSequence, nil)
		return
	}

	n, err := h.sequences.Next(r.Context(), kind)
	if err != nil {
		logging.FromContext(r.Context()).Warn("document number allocation failed", "kind", kind, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, issuedNumberDTO{
		Number:    n.Number,
		Kind:      string(n.Kind),
		PeriodKey: n.PeriodKey,
		Seq:       n.Seq,
		IssuedAt:  n.IssuedAt,
	})
}
