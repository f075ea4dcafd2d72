package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/book"
	"github.com/codeup/novabook/internal/core/dberr"
	"github.com/codeup/novabook/internal/loan"
	"github.com/codeup/novabook/internal/observability/metrics"
)

// ReaderAPI is the read side the exports run on. OverdueLoans returns the
// open loans dated before cutoff.
type ReaderAPI interface {
	Books(ctx context.Context) ([]BookRow, error)
	Partners(ctx context.Context) ([]PartnerRow, error)
	Loans(ctx context.Context) ([]LoanRow, error)
	OverdueLoans(ctx context.Context, cutoff time.Time) ([]LoanRow, error)
}

// BookCreator registers one imported book with the usual validation.
type BookCreator interface {
	CreateBook(ctx context.Context, dto book.CreateBookDTO) (*book.Book, error)
}

type Service struct {
	reader ReaderAPI
	books  BookCreator
	policy loan.Policy
	now    func() time.Time
	logger *slog.Logger
}

func NewService(reader ReaderAPI, books BookCreator, policy loan.Policy, logger *slog.Logger) *Service {
	return &Service{
		reader: reader,
		books:  books,
		policy: policy,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Export writes the CSV report for kind to w.
func (s *Service) Export(ctx context.Context, kind Kind, w io.Writer) error {
	today := loan.DateOf(s.now())

	var err error
	switch kind {
	case KindBooks:
		var rows []BookRow
		if rows, err = s.reader.Books(ctx); err == nil {
			err = WriteBooks(w, rows)
		}
	case KindPartners:
		var rows []PartnerRow
		if rows, err = s.reader.Partners(ctx); err == nil {
			err = WritePartners(w, rows)
		}
	case KindLoans:
		var rows []LoanRow
		if rows, err = s.reader.Loans(ctx); err == nil {
			err = WriteLoans(w, rows, s.policy, today)
		}
	case KindOverdue:
		var rows []LoanRow
		if rows, err = s.reader.OverdueLoans(ctx, s.policy.OverdueCutoff(today)); err == nil {
			err = WriteOverdue(w, rows, s.policy, today)
		}
	default:
		_, appErr := ParseKind(string(kind))
		return appErr
	}

	if err != nil {
		s.logger.Error("failed to export report", "kind", kind, "error", err)
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		return internal.NewInternalError("failed to write report", err)
	}
	s.logger.Info("report exported", "kind", kind)
	return nil
}

// ExportToFile writes the report into dir under a timestamped name and
// returns the file path.
func (s *Service) ExportToFile(ctx context.Context, kind Kind, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(dir, kind.Filename(s.now()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}

	if err := s.Export(ctx, kind, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}
	return path, nil
}

// ImportBooks registers every valid row of a book CSV. Rows whose ISBN is
// already catalogued are skipped; any other rejection is reported per row.
func (s *Service) ImportBooks(ctx context.Context, r io.Reader) (*ImportResult, error) {
	dtos, parseErrs, err := ParseBookCSV(r)
	if err != nil {
		return nil, internal.NewValidationError("could not read CSV file", internal.ErrCodeValidationFailed).WithCause(err)
	}

	result := &ImportResult{Errors: parseErrs}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	failed := len(parseErrs)

	for _, dto := range dtos {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("book import cancelled", "error", err, "imported", result.Imported)
			return nil, dberr.Translate(err, dberr.EntityBook, 0)
		}
		result.TotalProcessed++

		_, err := s.books.CreateBook(ctx, dto)
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, internal.ErrDuplicateISBN):
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Book with ISBN %s already exists - skipped", dto.ISBN))
		case internal.IsType(err, internal.ErrorTypeValidation):
			failed++
			appErr, _ := internal.IsAppError(err)
			result.Errors = append(result.Errors, fmt.Sprintf("Book %q: %s", dto.Title, appErr.GetDetailedMessage()))
		default:
			s.logger.Error("book import aborted", "error", err, "imported", result.Imported)
			return nil, err
		}
	}

	metrics.ObserveImport(result.Imported, result.Skipped, failed)
	s.logger.Info("book import finished",
		"processed", result.TotalProcessed,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", failed,
	)
	return result, nil
}
