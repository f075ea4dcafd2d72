package book

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codeup/novabook/internal"
	bookDatamodel "github.com/codeup/novabook/internal/core/datamodel/book"
	"github.com/codeup/novabook/internal/core/common/validation"
	"github.com/codeup/novabook/internal/core/dberr"
)

type ListFilter struct {
	AvailableOnly bool
	Query         string
}

type RepositoryAPI interface {
	Create(ctx context.Context, b *bookDatamodel.Book) error
	GetByID(ctx context.Context, id int64) (*bookDatamodel.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*bookDatamodel.Book, error)
	List(ctx context.Context, filter ListFilter) ([]*bookDatamodel.Book, error)
	Update(ctx context.Context, b *bookDatamodel.Book) error
	Delete(ctx context.Context, id int64) error
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
}

type Service struct {
	repo    RepositoryAPI
	minYear int
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, minYear int, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		minYear: minYear,
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock replaces the time source used for the publication year bound.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateBook(ctx context.Context, dto CreateBookDTO) (*Book, error) {
	dto.Normalize()
	if appErr := dto.Validate(s.minYear, s.now()); appErr != nil {
		s.logger.Warn("book validation failed", "error", appErr.GetDetailedMessage(), "isbn", dto.ISBN)
		return nil, appErr
	}
	dto.ISBN = validation.NormalizeISBN(dto.ISBN)

	exists, err := s.repo.ExistsByISBN(ctx, dto.ISBN)
	if err != nil {
		s.logger.Error("failed to check isbn", "error", err, "isbn", dto.ISBN)
		return nil, err
	}
	if exists {
		return nil, internal.ErrDuplicateISBN
	}

	data := ToDataModel(NewBook(dto))
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.Error("failed to create book", "error", err, "isbn", dto.ISBN)
		return nil, err
	}

	s.logger.Info("book created", "book_id", data.ID, "isbn", data.ISBN, "title", data.Title)
	return FromDataModel(data), nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (*Book, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(data), nil
}

func (s *Service) ListBooks(ctx context.Context, filter ListFilter) ([]*Book, error) {
	data, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list books", "error", err)
		return nil, err
	}
	return FromDataModelSlice(data), nil
}

func (s *Service) UpdateBook(ctx context.Context, id int64, dto UpdateBookDTO) (*Book, error) {
	dto.Normalize()
	if appErr := dto.Validate(s.minYear, s.now()); appErr != nil {
		return nil, appErr
	}
	dto.ISBN = validation.NormalizeISBN(dto.ISBN)

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.ISBN != dto.ISBN {
		other, err := s.repo.GetByISBN(ctx, dto.ISBN)
		switch {
		case err == nil && other.ID != id:
			return nil, internal.ErrDuplicateISBN.ForEntity(dberr.EntityBook, id)
		case err != nil && !errors.Is(err, internal.ErrBookNotFound):
			return nil, err
		}
	}

	current.Title = dto.Title
	current.Author = dto.Author
	current.ISBN = dto.ISBN
	current.PublicationYear = dto.PublicationYear
	if err := s.repo.Update(ctx, current); err != nil {
		s.logger.Error("failed to update book", "error", err, "book_id", id)
		return nil, err
	}

	s.logger.Info("book updated", "book_id", id)
	return FromDataModel(current), nil
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete book", "error", err, "book_id", id)
		return err
	}
	s.logger.Info("book deleted", "book_id", id)
	return nil
}

func (s *Service) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	return s.repo.ExistsByISBN(ctx, validation.NormalizeISBN(isbn))
}
