package partner

import (
	"context"
	"net/http"

	"github.com/codeup/novabook/internal/transport"
)

type ServiceAPI interface {
	CreatePartner(ctx context.Context, dto CreatePartnerDTO) (*Partner, error)
	GetPartner(ctx context.Context, id int64) (*Partner, error)
	FindByEmail(ctx context.Context, email string) (*Partner, error)
	ListPartners(ctx context.Context, activeOnly bool) ([]*Partner, error)
	UpdatePartner(ctx context.Context, id int64, dto UpdatePartnerDTO) (*Partner, error)
	ActivatePartner(ctx context.Context, id int64) (*Partner, error)
	DeactivatePartner(ctx context.Context, id int64) (*Partner, error)
	DeletePartner(ctx context.Context, id int64) error
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

// ListPartners handles GET /partners?active=true. With ?email= it returns the
// single matching partner instead.
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		p, err := h.Service.FindByEmail(r.Context(), email)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, PartnersResponse{Partners: []*Partner{p}, Total: 1})
		return
	}

	partners, err := h.Service.ListPartners(r.Context(), h.QueryBool(r, "active"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PartnersResponse{Partners: partners, Total: len(partners)})
}

func (h *Handler) GetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.GetPartner(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var dto CreatePartnerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.CreatePartner(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePartner(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdatePartnerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.UpdatePartner(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ActivatePartner(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.ActivatePartner)
}

func (h *Handler) DeactivatePartner(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.DeactivatePartner)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) (*Partner, error)) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := apply(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePartner(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeletePartner(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
