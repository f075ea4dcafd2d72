package book

import (
	"strings"
	"time"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/core/common/validation"
)

type CreateBookDTO struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publication_year"`
}

// UpdateBookDTO carries metadata only. Availability follows the loan lifecycle.
type UpdateBookDTO struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publication_year"`
}

type BooksResponse struct {
	Books []*Book `json:"books"`
	Total int     `json:"total"`
}

func (dto *CreateBookDTO) Normalize() {
	dto.Title = strings.TrimSpace(dto.Title)
	dto.Author = strings.TrimSpace(dto.Author)
	dto.ISBN = strings.TrimSpace(dto.ISBN)
}

func (dto CreateBookDTO) Validate(minYear int, now time.Time) *internal.AppError {
	return validateMetadata(dto.Title, dto.Author, dto.ISBN, dto.PublicationYear, minYear, now)
}

func (dto *UpdateBookDTO) Normalize() {
	dto.Title = strings.TrimSpace(dto.Title)
	dto.Author = strings.TrimSpace(dto.Author)
	dto.ISBN = strings.TrimSpace(dto.ISBN)
}

func (dto UpdateBookDTO) Validate(minYear int, now time.Time) *internal.AppError {
	return validateMetadata(dto.Title, dto.Author, dto.ISBN, dto.PublicationYear, minYear, now)
}

func validateMetadata(title, author, isbn string, year, minYear int, now time.Time) *internal.AppError {
	v := validation.NewValidator()
	v.Field("title", title).Required().MaxLength(255)
	v.Field("author", author).Required().MaxLength(255)
	v.Field("isbn", isbn).Required().ISBN()
	v.Field("publication_year", year).IntRange(minYear, now.Year(), internal.ErrCodeInvalidYear)
	return v.Validate()
}
