package book

import (
	"time"

	bookDatamodel "github.com/codeup/novabook/internal/core/datamodel/book"
)

type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	PublicationYear int       `json:"publication_year"`
	Available       bool      `json:"available"`
	DateAdded       time.Time `json:"date_added"`
}

// CanBeLent reports whether the stored availability flag allows a new loan.
func (b *Book) CanBeLent() bool {
	return b.Available
}

// Status is the catalog label shown in reports.
func (b *Book) Status() string {
	if b.Available {
		return "Available"
	}
	return "On Loan"
}

func NewBook(dto CreateBookDTO) *Book {
	return &Book{
		Title:           dto.Title,
		Author:          dto.Author,
		ISBN:            dto.ISBN,
		PublicationYear: dto.PublicationYear,
		Available:       true,
	}
}

func ToDataModel(b *Book) *bookDatamodel.Book {
	return &bookDatamodel.Book{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Available:       b.Available,
		DateAdded:       b.DateAdded,
	}
}

func FromDataModel(b *bookDatamodel.Book) *Book {
	return &Book{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Available:       b.Available,
		DateAdded:       b.DateAdded,
	}
}

func FromDataModelSlice(books []*bookDatamodel.Book) []*Book {
	result := make([]*Book, len(books))
	for i, b := range books {
		result[i] = FromDataModel(b)
	}
	return result
}
