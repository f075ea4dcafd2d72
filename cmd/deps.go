package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/auth"
	authPostgres "github.com/codeup/novabook/internal/auth/postgres"
	"github.com/codeup/novabook/internal/book"
	bookPostgres "github.com/codeup/novabook/internal/book/postgres"
	"github.com/codeup/novabook/internal/core/events"
	"github.com/codeup/novabook/internal/loan"
	loanPostgres "github.com/codeup/novabook/internal/loan/postgres"
	"github.com/codeup/novabook/internal/partner"
	partnerPostgres "github.com/codeup/novabook/internal/partner/postgres"
	"github.com/codeup/novabook/internal/report"
	reportPostgres "github.com/codeup/novabook/internal/report/postgres"
	"github.com/codeup/novabook/internal/user"
	userPostgres "github.com/codeup/novabook/internal/user/postgres"
	"github.com/codeup/novabook/pkg/logger"
)

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	SQLX   *sqlx.DB
	Bus    *events.EventBus
	Logger *slog.Logger

	Auth    *auth.Service
	Users   *user.Service
	Books   *book.Service
	Partner *partner.Service
	Loans   *loan.Service
	Reports *report.Service
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Init(cfg.App.Env, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	gdb, sdb, err := initDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.SubscribeLoanAudit(bus, lg.With("component", "audit"))

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	limiter := auth.NewLoginLimiter(cfg.Security.MaxLoginAttempts, cfg.Security.LoginWindow)

	books := book.NewService(bookPostgres.NewBookRepository(gdb), cfg.Library.MinPublicationYear, lg.With("component", "book"))
	loans := loan.NewService(loanPostgres.NewLoanRepository(gdb), cfg.Library, bus, lg.With("component", "loan"))

	return &Dependencies{
		Config: cfg,
		DB:     gdb,
		SQLX:   sdb,
		Bus:    bus,
		Logger: lg,

		Auth:    auth.NewService(authPostgres.NewRepository(gdb), tokens, limiter, lg.With("component", "auth")),
		Users:   user.NewService(userPostgres.NewUserRepository(gdb), cfg.Security, lg.With("component", "user")),
		Books:   books,
		Partner: partner.NewService(partnerPostgres.NewPartnerRepository(gdb), lg.With("component", "partner")),
		Loans:   loans,
		Reports: report.NewService(reportPostgres.NewReader(sdb), books, loans.Policy(), lg.With("component", "report")),
	}, nil
}

// Close waits briefly for in-flight event handlers, then releases the pool.
func (d *Dependencies) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Bus.Drain(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := d.SQLX.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}
