package auth

import (
	"net"
	"net/http"
	"strings"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/transport"
	"github.com/codeup/novabook/pkg/logger"
)

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

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto, clientIP(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// RefreshToken handles POST /auth/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /auth/logout. Tokens are stateless, so this only checks
// that the caller presented a valid one; clients drop their copy.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	claims, err := h.Service.ValidateAccessToken(token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("user logged out", "user_id", claims.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware puts the session of a valid bearer token into the request
// context and rejects the request otherwise.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, internal.NewUnauthorizedError("Missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithSession(r.Context(), claims.Session())
		ctx = logger.With(ctx, "user_id", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
