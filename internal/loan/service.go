package loan

import (
	"context"
	"log/slog"
	"time"

	"github.com/codeup/novabook/internal"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	"github.com/codeup/novabook/internal/core/dberr"
	"github.com/codeup/novabook/internal/core/events"
	"github.com/codeup/novabook/internal/observability/metrics"
)

// CreateOptions are the lending limits checked inside the create transaction.
// MaxOpenPerPartner 0 disables the limit.
type CreateOptions struct {
	MaxOpenPerPartner int
}

type RepositoryAPI interface {
	Create(ctx context.Context, l *loanDatamodel.Loan, opts CreateOptions) error
	Return(ctx context.Context, id int64, returnDate time.Time) (*loanDatamodel.Loan, error)
	Delete(ctx context.Context, id int64) (*loanDatamodel.Loan, error)
	GetByID(ctx context.Context, id int64) (*loanDatamodel.Loan, error)
	List(ctx context.Context) ([]*loanDatamodel.Loan, error)
	ListOpen(ctx context.Context) ([]*loanDatamodel.Loan, error)
	ListByPartner(ctx context.Context, partnerID int64) ([]*loanDatamodel.Loan, error)
	ListOverdue(ctx context.Context, cutoff time.Time) ([]*loanDatamodel.Loan, error)
	HasOpenLoan(ctx context.Context, bookID int64) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo    RepositoryAPI
	policy  Policy
	maxOpen int
	bus     Publisher
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, cfg internal.LibraryConfig, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		policy:  Policy{LoanPeriodDays: cfg.LoanPeriodDays, FinePerDay: cfg.FinePerDay},
		maxOpen: cfg.MaxBooksPerPartner,
		bus:     bus,
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock replaces the time source that decides "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) Today() time.Time {
	return DateOf(s.now())
}

func (s *Service) CreateLoan(ctx context.Context, dto CreateLoanDTO) (*Loan, error) {
	today := s.Today()
	loanDate, appErr := dto.Validate(today)
	if appErr != nil {
		s.logger.Warn("loan validation failed", "error", appErr.GetDetailedMessage())
		return nil, appErr
	}

	onLoan, err := s.repo.HasOpenLoan(ctx, dto.BookID)
	if err != nil {
		s.logger.Error("failed to check open loans", "error", err, "book_id", dto.BookID)
		return nil, err
	}
	if onLoan {
		return nil, internal.ErrBookUnavailable.ForEntity(dberr.EntityBook, dto.BookID)
	}

	data := &loanDatamodel.Loan{
		BookID:    dto.BookID,
		PartnerID: dto.PartnerID,
		LoanDate:  loanDate,
	}
	if err := s.repo.Create(ctx, data, CreateOptions{MaxOpenPerPartner: s.maxOpen}); err != nil {
		s.logger.Warn("failed to create loan", "error", err, "book_id", dto.BookID, "partner_id", dto.PartnerID)
		return nil, err
	}

	metrics.ObserveLoanOperation("created")
	s.publish(ctx, events.NewLoanCreatedEvent(data.ID, data.BookID, data.PartnerID, data.LoanDate))
	s.logger.Info("loan created",
		"loan_id", data.ID,
		"book_id", data.BookID,
		"partner_id", data.PartnerID,
		"loan_date", data.LoanDate.Format(time.DateOnly))

	return s.GetLoan(ctx, data.ID)
}

func (s *Service) ReturnLoan(ctx context.Context, id int64, dto ReturnLoanDTO) (*Loan, error) {
	returnDate, appErr := dto.Validate(s.Today())
	if appErr != nil {
		return nil, appErr
	}

	data, err := s.repo.Return(ctx, id, returnDate)
	if err != nil {
		s.logger.Warn("failed to return loan", "error", err, "loan_id", id)
		return nil, err
	}

	l := FromDataModel(data)
	overdueDays := l.OverdueDays(returnDate, s.policy.LoanPeriodDays)
	fine := l.Fine(returnDate, s.policy.LoanPeriodDays, s.policy.FinePerDay)

	metrics.ObserveLoanOperation("returned")
	metrics.ObserveFine(fine)
	s.publish(ctx, events.NewLoanReturnedEvent(l.ID, l.BookID, l.PartnerID, returnDate, overdueDays, fine))
	s.logger.Info("loan returned",
		"loan_id", l.ID,
		"book_id", l.BookID,
		"return_date", returnDate.Format(time.DateOnly),
		"overdue_days", overdueDays,
		"fine", fine)

	return s.GetLoan(ctx, id)
}

func (s *Service) DeleteLoan(ctx context.Context, id int64) error {
	data, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Warn("failed to delete loan", "error", err, "loan_id", id)
		return err
	}

	metrics.ObserveLoanOperation("deleted")
	s.publish(ctx, events.NewLoanDeletedEvent(data.ID, data.BookID, data.Returned))
	s.logger.Info("loan deleted", "loan_id", id, "book_id", data.BookID, "was_returned", data.Returned)
	return nil
}

func (s *Service) GetLoan(ctx context.Context, id int64) (*Loan, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(data), nil
}

func (s *Service) ListLoans(ctx context.Context, status Status) ([]*Loan, error) {
	var (
		data []*loanDatamodel.Loan
		err  error
	)
	switch status {
	case StatusOpen:
		data, err = s.repo.ListOpen(ctx)
	case StatusOverdue:
		data, err = s.repo.ListOverdue(ctx, s.policy.OverdueCutoff(s.Today()))
	default:
		data, err = s.repo.List(ctx)
	}
	if err != nil {
		s.logger.Error("failed to list loans", "error", err, "status", status)
		return nil, err
	}
	return FromDataModelSlice(data), nil
}

func (s *Service) ListPartnerLoans(ctx context.Context, partnerID int64) ([]*Loan, error) {
	data, err := s.repo.ListByPartner(ctx, partnerID)
	if err != nil {
		s.logger.Error("failed to list partner loans", "error", err, "partner_id", partnerID)
		return nil, err
	}
	return FromDataModelSlice(data), nil
}

func (s *Service) IsBookOnLoan(ctx context.Context, bookID int64) (bool, error) {
	return s.repo.HasOpenLoan(ctx, bookID)
}

// Assess evaluates l against the configured policy as of today.
func (s *Service) Assess(l *Loan) Assessment {
	return s.policy.Assess(l, s.Today())
}

// ScanOverdue lists the currently overdue loans, refreshes the overdue gauge
// and publishes one loan.overdue event per loan.
func (s *Service) ScanOverdue(ctx context.Context) ([]*Loan, error) {
	loans, err := s.ListLoans(ctx, StatusOverdue)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	metrics.SetOverdue(len(loans))
	for _, l := range loans {
		s.publish(ctx, events.NewLoanOverdueEvent(
			l.ID, l.BookID, l.PartnerID,
			l.OverdueDays(today, s.policy.LoanPeriodDays),
			l.Fine(today, s.policy.LoanPeriodDays, s.policy.FinePerDay),
		))
	}

	s.logger.Info("overdue scan completed", "overdue_loans", len(loans), "as_of", today.Format(time.DateOnly))
	return loans, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
