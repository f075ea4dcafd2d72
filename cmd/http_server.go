package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codeup/novabook/internal/auth"
	"github.com/codeup/novabook/internal/book"
	"github.com/codeup/novabook/internal/loan"
	"github.com/codeup/novabook/internal/partner"
	"github.com/codeup/novabook/internal/report"
	"github.com/codeup/novabook/internal/transport"
	"github.com/codeup/novabook/internal/transport/rest"
	"github.com/codeup/novabook/internal/user"
)

var withScheduler bool

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer(cmd.Context())
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run the overdue scan scheduler (overrides library.overdue_scan_enabled)")
}

func startHTTPServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	router := chi.NewRouter()
	setupRoutes(router, deps)

	cfg := deps.Config.Server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Logger.Info("starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		deps.Logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if withScheduler || deps.Config.Library.OverdueScanEnabled {
		scheduler := loan.NewOverdueScheduler(deps.Loans, deps.Config.Library.OverdueScanSchedule, deps.Logger.With("component", "scheduler"))
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		deps.Logger.Error("server stopped with error", "error", err)
		return err
	}
	deps.Logger.Info("server stopped")
	return nil
}

func setupRoutes(router chi.Router, deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)

	handlers := rest.Handlers{
		Auth:    auth.NewHandler(base, deps.Auth),
		User:    user.NewHandler(base, deps.Users),
		Book:    book.NewHandler(base, deps.Books),
		Partner: partner.NewHandler(base, deps.Partner),
		Loan:    loan.NewHandler(base, deps.Loans),
		Report:  report.NewHandler(base, deps.Reports),
		RBAC:    auth.NewRBACAuthorization(auth.NewRoleChecker(), deps.Logger),
	}

	rest.RegisterAllRoutes(router, deps.SQLX.DB, handlers, rest.RouterConfig{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		Metrics:        deps.Config.Observability.Metrics,
	}, deps.Logger)
}
