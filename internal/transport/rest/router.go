package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/auth"
	"github.com/codeup/novabook/internal/book"
	"github.com/codeup/novabook/internal/loan"
	"github.com/codeup/novabook/internal/partner"
	"github.com/codeup/novabook/internal/report"
	"github.com/codeup/novabook/internal/transport/middleware"
	"github.com/codeup/novabook/internal/transport/swagger"
	"github.com/codeup/novabook/internal/user"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Book    *book.Handler
	Partner *partner.Handler
	Loan    *loan.Handler
	Report  *report.Handler
	RBAC    *auth.RBACAuthorization
}

type RouterConfig struct {
	AllowedOrigins string
	Metrics        internal.MetricsConfig
	OpenAPIPath    string
}

func RegisterAllRoutes(router chi.Router, db *sql.DB, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.WithLogger(logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(splitOrigins(cfg.AllowedOrigins)))
	router.Use(middleware.Metrics)
	router.Use(middleware.RequestLogger)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	openAPIPath := cfg.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/me", h.User.GetCurrentUser)
				pr.Put("/me/password", h.User.ChangeOwnPassword)

				pr.Group(func(ar chi.Router) {
					ar.Use(h.RBAC.RequireAdmin())
					ar.Route("/users", func(ur chi.Router) {
						ur.Get("/", h.User.ListUsers)
						ur.Post("/", h.User.CreateUser)
						ur.Get("/{id}", h.User.GetUser)
						ur.Put("/{id}", h.User.UpdateUser)
						ur.Delete("/{id}", h.User.DeleteUser)
						ur.Post("/{id}/roles", h.User.AssignRole)
						ur.Delete("/{id}/roles/{role}", h.User.RemoveRole)
					})
					ar.Get("/roles", h.User.ListRoles)
				})
			}

			if h.Report != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(h.RBAC.RequireAdmin())
					ar.Post("/books/import", h.Report.ImportBooks)
				})
			}

			pr.Group(func(sr chi.Router) {
				sr.Use(h.RBAC.RequireStaff())
				registerCatalogRoutes(sr, h)
			})
		})
	})
}

// registerCatalogRoutes mounts the routes open to every staff role.
func registerCatalogRoutes(r chi.Router, h Handlers) {
	if h.Book != nil {
		r.Get("/books", h.Book.ListBooks)
		r.Post("/books", h.Book.CreateBook)
		r.Get("/books/{id}", h.Book.GetBook)
		r.Put("/books/{id}", h.Book.UpdateBook)
		r.Delete("/books/{id}", h.Book.DeleteBook)
	}

	if h.Partner != nil {
		r.Get("/partners", h.Partner.ListPartners)
		r.Post("/partners", h.Partner.CreatePartner)
		r.Get("/partners/{id}", h.Partner.GetPartner)
		r.Put("/partners/{id}", h.Partner.UpdatePartner)
		r.Delete("/partners/{id}", h.Partner.DeletePartner)
		r.Patch("/partners/{id}/activate", h.Partner.ActivatePartner)
		r.Patch("/partners/{id}/deactivate", h.Partner.DeactivatePartner)
	}

	if h.Loan != nil {
		r.Get("/loans", h.Loan.ListLoans)
		r.Post("/loans", h.Loan.CreateLoan)
		r.Get("/loans/{id}", h.Loan.GetLoan)
		r.Post("/loans/{id}/return", h.Loan.ReturnLoan)
		r.Delete("/loans/{id}", h.Loan.DeleteLoan)
		r.Get("/partners/{id}/loans", h.Loan.ListPartnerLoans)
		r.Get("/books/{id}/loan-status", h.Loan.BookLoanStatus)
	}

	if h.Report != nil {
		r.Get("/reports/{kind}", h.Report.ExportReport)
	}
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
