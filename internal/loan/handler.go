package loan

import (
	"context"
	"net/http"

	"github.com/codeup/novabook/internal/transport"
)

type ServiceAPI interface {
	CreateLoan(ctx context.Context, dto CreateLoanDTO) (*Loan, error)
	ReturnLoan(ctx context.Context, id int64, dto ReturnLoanDTO) (*Loan, error)
	DeleteLoan(ctx context.Context, id int64) error
	GetLoan(ctx context.Context, id int64) (*Loan, error)
	ListLoans(ctx context.Context, status Status) ([]*Loan, error)
	ListPartnerLoans(ctx context.Context, partnerID int64) ([]*Loan, error)
	IsBookOnLoan(ctx context.Context, bookID int64) (bool, error)
	Assess(l *Loan) Assessment
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ListLoans handles GET /loans?status=all|open|overdue
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	status, appErr := ParseStatus(r.URL.Query().Get("status"))
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	loans, err := h.Service.ListLoans(r.Context(), status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.toResponse(loans))
}

// ListPartnerLoans handles GET /partners/{id}/loans
func (h *Handler) ListPartnerLoans(w http.ResponseWriter, r *http.Request) {
	partnerID, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	loans, err := h.Service.ListPartnerLoans(r.Context(), partnerID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.toResponse(loans))
}

// BookLoanStatus handles GET /books/{id}/loan-status
func (h *Handler) BookLoanStatus(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	onLoan, err := h.Service.IsBookOnLoan(r.Context(), bookID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BookLoanStatus{BookID: bookID, OnLoan: onLoan})
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	l, err := h.Service.GetLoan(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.view(l))
}

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var dto CreateLoanDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	l, err := h.Service.CreateLoan(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, h.view(l))
}

// ReturnLoan handles POST /loans/{id}/return. The body is optional.
func (h *Handler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto ReturnLoanDTO
	if r.ContentLength > 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	}

	l, err := h.Service.ReturnLoan(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.view(l))
}

func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteLoan(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) view(l *Loan) *LoanResponse {
	return &LoanResponse{Loan: l, Assessment: h.Service.Assess(l)}
}

func (h *Handler) toResponse(loans []*Loan) LoansResponse {
	out := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		out[i] = h.view(l)
	}
	return LoansResponse{Loans: out, Total: len(out)}
}
