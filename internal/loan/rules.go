package loan

import "time"

const day = 24 * time.Hour

// DateOf reduces t to its calendar date, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from from to to. It is negative when
// to falls before from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / day)
}

// DaysElapsed counts days from the loan date to the return date, or to asOf
// while the loan is open.
func (l *Loan) DaysElapsed(asOf time.Time) int {
	end := asOf
	if l.Returned && l.ReturnDate != nil {
		end = *l.ReturnDate
	}
	return DaysBetween(l.LoanDate, end)
}

// IsOverdue reports whether the loan ran past period days. A loan held for
// exactly period days is not overdue.
func (l *Loan) IsOverdue(asOf time.Time, period int) bool {
	return l.DaysElapsed(asOf) > period
}

func (l *Loan) OverdueDays(asOf time.Time, period int) int {
	over := l.DaysElapsed(asOf) - period
	if over < 0 {
		return 0
	}
	return over
}

// Fine is OverdueDays times dailyRate, never negative.
func (l *Loan) Fine(asOf time.Time, period int, dailyRate float64) float64 {
	fine := float64(l.OverdueDays(asOf, period)) * dailyRate
	if fine < 0 {
		return 0
	}
	return fine
}

// IsCurrentlyOverdue is IsOverdue restricted to loans that are still open.
func (l *Loan) IsCurrentlyOverdue(asOf time.Time, period int) bool {
	if l.Returned {
		return false
	}
	return l.IsOverdue(asOf, period)
}

// Partition splits loans into open and returned, keeping their order.
func Partition(loans []*Loan) (open, returned []*Loan) {
	open = make([]*Loan, 0, len(loans))
	returned = make([]*Loan, 0)
	for _, l := range loans {
		if l.Returned {
			returned = append(returned, l)
			continue
		}
		open = append(open, l)
	}
	return open, returned
}

// Policy is the lending policy applied to loans.
type Policy struct {
	LoanPeriodDays int
	FinePerDay     float64
}

// Assessment is a loan evaluated against a Policy on one day. Overdue tells
// whether the loan ran late at all; CurrentlyOverdue only holds for open loans.
type Assessment struct {
	DaysElapsed      int       `json:"days_elapsed"`
	OverdueDays      int       `json:"overdue_days"`
	Overdue          bool      `json:"overdue"`
	CurrentlyOverdue bool      `json:"currently_overdue"`
	Fine             float64   `json:"fine"`
	DueDate          time.Time `json:"due_date"`
}

func (p Policy) Assess(l *Loan, asOf time.Time) Assessment {
	return Assessment{
		DaysElapsed:      l.DaysElapsed(asOf),
		OverdueDays:      l.OverdueDays(asOf, p.LoanPeriodDays),
		Overdue:          l.IsOverdue(asOf, p.LoanPeriodDays),
		CurrentlyOverdue: l.IsCurrentlyOverdue(asOf, p.LoanPeriodDays),
		Fine:             l.Fine(asOf, p.LoanPeriodDays, p.FinePerDay),
		DueDate:          p.DueDate(l),
	}
}

// DueDate is the last day the loan can be held without a fine.
func (p Policy) DueDate(l *Loan) time.Time {
	return DateOf(l.LoanDate).AddDate(0, 0, p.LoanPeriodDays)
}

// OverdueCutoff is the loan date before which an open loan is overdue on today.
func (p Policy) OverdueCutoff(today time.Time) time.Time {
	return DateOf(today).AddDate(0, 0, -p.LoanPeriodDays)
}
