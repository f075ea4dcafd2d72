package loan

import (
	"strings"
	"time"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/core/common/validation"
)

type Status string

const (
	StatusAll     Status = "all"
	StatusOpen    Status = "open"
	StatusOverdue Status = "overdue"
)

// ParseStatus maps a ?status= value to a Status. Empty means all loans.
func ParseStatus(raw string) (Status, *internal.AppError) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusOpen:
		return StatusOpen, nil
	case StatusOverdue:
		return StatusOverdue, nil
	default:
		return "", internal.NewValidationFieldError("status", "status must be one of all, open, overdue", internal.ErrCodeValidationFailed)
	}
}

// CreateLoanDTO carries an optional LoanDate (YYYY-MM-DD); today is used when empty.
type CreateLoanDTO struct {
	BookID    int64  `json:"book_id"`
	PartnerID int64  `json:"partner_id"`
	LoanDate  string `json:"loan_date,omitempty"`
}

// ReturnLoanDTO carries an optional ReturnDate (YYYY-MM-DD); today is used when empty.
type ReturnLoanDTO struct {
	ReturnDate string `json:"return_date,omitempty"`
}

type LoanResponse struct {
	*Loan
	Assessment Assessment `json:"assessment"`
}

type LoansResponse struct {
	Loans []*LoanResponse `json:"loans"`
	Total int             `json:"total"`
}

type BookLoanStatus struct {
	BookID int64 `json:"book_id"`
	OnLoan bool  `json:"on_loan"`
}

func (dto CreateLoanDTO) Validate(today time.Time) (time.Time, *internal.AppError) {
	date, appErr := parseDate("loan_date", dto.LoanDate, today)
	if appErr != nil {
		return time.Time{}, appErr
	}

	v := validation.NewValidator()
	v.Field("book_id", dto.BookID).PositiveID()
	v.Field("partner_id", dto.PartnerID).PositiveID()
	v.Field("loan_date", date).NotAfter(today)
	if appErr := v.Validate(); appErr != nil {
		return time.Time{}, appErr
	}
	return date, nil
}

func (dto ReturnLoanDTO) Validate(today time.Time) (time.Time, *internal.AppError) {
	date, appErr := parseDate("return_date", dto.ReturnDate, today)
	if appErr != nil {
		return time.Time{}, appErr
	}

	v := validation.NewValidator()
	v.Field("return_date", date).NotAfter(today)
	if appErr := v.Validate(); appErr != nil {
		return time.Time{}, appErr
	}
	return date, nil
}

func parseDate(field, raw string, fallback time.Time) (time.Time, *internal.AppError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DateOf(fallback), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, internal.NewValidationFieldError(field, field+" must be a date in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	}
	return DateOf(t), nil
}
