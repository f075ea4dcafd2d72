package book

import (
	"context"
	"net/http"

	"github.com/codeup/novabook/internal/transport"
)

type ServiceAPI interface {
	CreateBook(ctx context.Context, dto CreateBookDTO) (*Book, error)
	GetBook(ctx context.Context, id int64) (*Book, error)
	ListBooks(ctx context.Context, filter ListFilter) ([]*Book, error)
	UpdateBook(ctx context.Context, id int64, dto UpdateBookDTO) (*Book, error)
	DeleteBook(ctx context.Context, id int64) error
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

// ListBooks handles GET /books?available=true&q=term
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		AvailableOnly: h.QueryBool(r, "available"),
		Query:         r.URL.Query().Get("q"),
	}

	books, err := h.Service.ListBooks(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BooksResponse{Books: books, Total: len(books)})
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	b, err := h.Service.GetBook(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var dto CreateBookDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	b, err := h.Service.CreateBook(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateBookDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	b, err := h.Service.UpdateBook(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteBook(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
