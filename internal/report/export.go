package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/codeup/novabook/internal/loan"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	bookHeader = []string{
		"ID", "Title", "Author", "ISBN", "Publication Year",
		"Available", "Date Added", "Status",
	}
	partnerHeader = []string{
		"Partner ID", "Name", "Email", "Phone", "Address",
		"Active", "Registration Date", "Status",
	}
	loanHeader = []string{
		"Loan ID", "Book Title", "Book Author", "Partner Name",
		"Partner Email", "Loan Date", "Return Date", "Status",
		"Days Since Loan", "Is Overdue",
	}
	overdueHeader = []string{
		"Loan ID", "Book Title", "Book Author", "Book ISBN",
		"Partner Name", "Partner Email", "Partner Phone",
		"Loan Date", "Days Overdue", "Status",
	}
)

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func WriteBooks(w io.Writer, books []BookRow) error {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		status := "On Loan"
		if b.Available {
			status = "Available"
		}
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author,
			b.ISBN,
			strconv.Itoa(b.PublicationYear),
			yesNo(b.Available),
			formatTimestamp(b.DateAdded),
			status,
		})
	}
	return writeAll(w, bookHeader, rows)
}

func WritePartners(w io.Writer, partners []PartnerRow) error {
	rows := make([][]string, 0, len(partners))
	for _, p := range partners {
		status := "Inactive"
		if p.Active {
			status = "Active"
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Email,
			p.Phone,
			p.Address,
			yesNo(p.Active),
			formatTimestamp(p.RegistrationDate),
			status,
		})
	}
	return writeAll(w, partnerHeader, rows)
}

// WriteLoans prints every loan with its status on today: Returned, Overdue
// (open past the loan period) or Active.
func WriteLoans(w io.Writer, loans []LoanRow, policy loan.Policy, today time.Time) error {
	rows := make([][]string, 0, len(loans))
	for _, r := range loans {
		l := r.loan()
		overdue := l.IsCurrentlyOverdue(today, policy.LoanPeriodDays)

		status := "Active"
		switch {
		case l.Returned:
			status = "Returned"
		case overdue:
			status = "Overdue"
		}

		returnDate := ""
		if l.ReturnDate != nil {
			returnDate = l.ReturnDate.Format(time.DateOnly)
		}

		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.BookTitle,
			r.BookAuthor,
			r.PartnerName,
			r.PartnerEmail,
			l.LoanDate.Format(time.DateOnly),
			returnDate,
			status,
			strconv.Itoa(loan.DaysBetween(l.LoanDate, today)),
			yesNo(overdue),
		})
	}
	return writeAll(w, loanHeader, rows)
}

func WriteOverdue(w io.Writer, loans []LoanRow, policy loan.Policy, today time.Time) error {
	rows := make([][]string, 0, len(loans))
	for _, r := range loans {
		l := r.loan()
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.BookTitle,
			r.BookAuthor,
			r.BookISBN,
			r.PartnerName,
			r.PartnerEmail,
			r.PartnerPhone,
			l.LoanDate.Format(time.DateOnly),
			strconv.Itoa(l.OverdueDays(today, policy.LoanPeriodDays)),
			"OVERDUE",
		})
	}
	return writeAll(w, overdueHeader, rows)
}
