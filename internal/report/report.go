package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/loan"
)

// Kind names one CSV export.
type Kind string

const (
	KindBooks    Kind = "books"
	KindPartners Kind = "partners"
	KindLoans    Kind = "loans"
	KindOverdue  Kind = "overdue"
)

var Kinds = []Kind{KindBooks, KindPartners, KindLoans, KindOverdue}

func ParseKind(raw string) (Kind, *internal.AppError) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", internal.NewValidationFieldError("kind", "kind must be one of books, partners, loans, overdue", internal.ErrCodeValidationFailed)
}

// Filename is the timestamped export name, e.g. loans_20240320_153000.csv.
func (k Kind) Filename(at time.Time) string {
	return fmt.Sprintf("%s_%s.csv", k, at.Format("20060102_150405"))
}

type BookRow struct {
	ID              int64     `db:"id"`
	Title           string    `db:"title"`
	Author          string    `db:"author"`
	ISBN            string    `db:"isbn"`
	PublicationYear int       `db:"publication_year"`
	Available       bool      `db:"available"`
	DateAdded       time.Time `db:"date_added"`
}

type PartnerRow struct {
	ID               int64     `db:"id"`
	Name             string    `db:"name"`
	Email            string    `db:"email"`
	Phone            string    `db:"phone"`
	Address          string    `db:"address"`
	Active           bool      `db:"active"`
	RegistrationDate time.Time `db:"registration_date"`
}

// LoanRow is a loan joined with the book and partner columns the exports print.
type LoanRow struct {
	ID           int64      `db:"id"`
	BookID       int64      `db:"book_id"`
	PartnerID    int64      `db:"partner_id"`
	LoanDate     time.Time  `db:"loan_date"`
	ReturnDate   *time.Time `db:"return_date"`
	Returned     bool       `db:"returned"`
	BookTitle    string     `db:"book_title"`
	BookAuthor   string     `db:"book_author"`
	BookISBN     string     `db:"book_isbn"`
	PartnerName  string     `db:"partner_name"`
	PartnerEmail string     `db:"partner_email"`
	PartnerPhone string     `db:"partner_phone"`
}

func (r LoanRow) loan() *loan.Loan {
	return &loan.Loan{
		ID:         r.ID,
		BookID:     r.BookID,
		PartnerID:  r.PartnerID,
		LoanDate:   r.LoanDate,
		ReturnDate: r.ReturnDate,
		Returned:   r.Returned,
	}
}

// ImportResult summarizes a CSV book import. TotalProcessed counts rows that
// parsed; Errors holds one message per rejected or skipped row.
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

func (r *ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *ImportResult) Summary() string {
	var sb strings.Builder
	sb.WriteString("Import completed:\n")
	fmt.Fprintf(&sb, "- Total processed: %d\n", r.TotalProcessed)
	fmt.Fprintf(&sb, "- Successfully imported: %d\n", r.Imported)
	fmt.Fprintf(&sb, "- Skipped (duplicates): %d\n", r.Skipped)
	if r.HasErrors() {
		fmt.Fprintf(&sb, "- Errors: %d\n", len(r.Errors))
	}
	return sb.String()
}
