package user

import (
	"context"
	"net/http"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error)
	ChangePassword(ctx context.Context, id int64, dto ChangePasswordDTO) error
	DeleteUser(ctx context.Context, actorID, id int64) error
	AssignRole(ctx context.Context, userID int64, dto AssignRoleDTO) (*User, error)
	RemoveRole(ctx context.Context, userID int64, role string) (*User, error)
	ListRoles(ctx context.Context) ([]*Role, error)
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

// GetCurrentUser handles GET /me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	u, err := h.Service.GetUser(r.Context(), session.UserID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// ChangeOwnPassword handles PUT /me/password
func (h *Handler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	var dto ChangePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), session.UserID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: users, Total: len(users)})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.CreateUser(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.UpdateUser(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), session.UserID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignRole handles POST /users/{id}/roles
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto AssignRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.AssignRole(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// RemoveRole handles DELETE /users/{id}/roles/{role}
func (h *Handler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.RemoveRole(r.Context(), id, chi.URLParam(r, "role"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}
