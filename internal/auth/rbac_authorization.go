package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/transport"
)

type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer RoleAuthorizer
	logger     *slog.Logger
}

func NewRBACAuthorization(authorizer RoleAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
		logger:      logger,
	}
}

type roleCheck func(ctx context.Context, roles []string) (bool, error)

func (ra *RBACAuthorization) gate(name string, check roleCheck) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := internal.SessionFromContext(r.Context())
			if !ok {
				ra.logger.Warn("authorization check failed: no session in context", "path", r.URL.Path)
				ra.HandleServiceError(w, internal.ErrInvalidToken)
				return
			}

			allowed, err := check(r.Context(), session.Roles)
			if err != nil {
				ra.logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", session.UserID, "gate", name)
				ra.HandleServiceError(w, internal.NewInternalError("authorization check failed", err))
				return
			}

			if !allowed {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", session.UserID,
					"gate", name,
					"user_roles", session.Roles)
				ra.HandleServiceError(w, internal.ErrInsufficientRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles admits sessions holding at least one of roles.
func (ra *RBACAuthorization) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return ra.gate("roles", func(ctx context.Context, have []string) (bool, error) {
		return ra.authorizer.HasAnyRole(ctx, have, roles...)
	})
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.gate("admin", ra.authorizer.IsAdminCtx)
}

func (ra *RBACAuthorization) RequireStaff() func(http.Handler) http.Handler {
	return ra.gate("staff", ra.authorizer.IsStaffCtx)
}
