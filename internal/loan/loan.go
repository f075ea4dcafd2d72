package loan

import (
	"time"

	"github.com/codeup/novabook/internal/book"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	"github.com/codeup/novabook/internal/partner"
)

// Loan links one book to one partner from LoanDate until it is returned.
// Returned and ReturnDate always agree: a returned loan has a return date and
// an open loan has none.
type Loan struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	PartnerID  int64      `json:"partner_id"`
	LoanDate   time.Time  `json:"loan_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Returned   bool       `json:"returned"`

	Book    *book.Book       `json:"book,omitempty"`
	Partner *partner.Partner `json:"partner,omitempty"`
}

func ToDataModel(l *Loan) *loanDatamodel.Loan {
	return &loanDatamodel.Loan{
		ID:         l.ID,
		BookID:     l.BookID,
		PartnerID:  l.PartnerID,
		LoanDate:   l.LoanDate,
		ReturnDate: l.ReturnDate,
		Returned:   l.Returned,
	}
}

func FromDataModel(l *loanDatamodel.Loan) *Loan {
	out := &Loan{
		ID:         l.ID,
		BookID:     l.BookID,
		PartnerID:  l.PartnerID,
		LoanDate:   l.LoanDate,
		ReturnDate: l.ReturnDate,
		Returned:   l.Returned,
	}
	if l.Book != nil {
		out.Book = book.FromDataModel(l.Book)
	}
	if l.Partner != nil {
		out.Partner = partner.FromDataModel(l.Partner)
	}
	return out
}

func FromDataModelSlice(loans []*loanDatamodel.Loan) []*Loan {
	result := make([]*Loan, len(loans))
	for i, l := range loans {
		result[i] = FromDataModel(l)
	}
	return result
}
