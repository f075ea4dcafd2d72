package loan_test

import (
	"time"

	"github.com/codeup/novabook/internal/loan"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Loan rules", func() {
	const period = 14

	var today time.Time

	daysAgo := func(n int) time.Time {
		return today.AddDate(0, 0, -n)
	}

	openLoan := func(loanDate time.Time) *loan.Loan {
		return &loan.Loan{ID: 1, BookID: 1, PartnerID: 1, LoanDate: loanDate}
	}

	returnedLoan := func(loanDate, returnDate time.Time) *loan.Loan {
		return &loan.Loan{ID: 1, BookID: 1, PartnerID: 1, LoanDate: loanDate, ReturnDate: &returnDate, Returned: true}
	}

	BeforeEach(func() {
		today = time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	})

	Describe("DaysBetween", func() {
		It("ignores the time of day", func() {
			from := time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC)
			to := time.Date(2024, time.March, 2, 0, 1, 0, 0, time.UTC)
			Expect(loan.DaysBetween(from, to)).To(Equal(1))
		})

		It("uses the calendar date in the timestamp's own zone", func() {
			zone := time.FixedZone("UTC+9", 9*60*60)
			from := time.Date(2024, time.March, 1, 8, 0, 0, 0, zone)
			to := time.Date(2024, time.March, 3, 1, 0, 0, 0, zone)
			Expect(loan.DaysBetween(from, to)).To(Equal(2))
		})

		It("is negative when the end is before the start", func() {
			Expect(loan.DaysBetween(today, daysAgo(3))).To(Equal(-3))
		})

		It("counts across a leap day", func() {
			from := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
			to := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
			Expect(loan.DaysBetween(from, to)).To(Equal(2))
		})
	})

	Describe("DaysElapsed", func() {
		It("counts to asOf while the loan is open", func() {
			Expect(openLoan(daysAgo(9)).DaysElapsed(today)).To(Equal(9))
		})

		It("counts to the return date once returned", func() {
			l := returnedLoan(daysAgo(9), daysAgo(4))
			Expect(l.DaysElapsed(today)).To(Equal(5))
			Expect(l.DaysElapsed(today.AddDate(1, 0, 0))).To(Equal(5))
		})
	})

	Describe("overdue and fines", func() {
		It("charges one day for a loan taken 15 days ago and still open", func() {
			l := openLoan(daysAgo(15))
			Expect(l.IsOverdue(today, period)).To(BeTrue())
			Expect(l.IsCurrentlyOverdue(today, period)).To(BeTrue())
			Expect(l.OverdueDays(today, period)).To(Equal(1))
			Expect(l.Fine(today, period, 1.0)).To(Equal(1.0))
		})

		It("charges nothing for a loan returned after 7 days", func() {
			l := returnedLoan(daysAgo(7), today)
			Expect(l.IsOverdue(today, period)).To(BeFalse())
			Expect(l.Fine(today, period, 1.0)).To(Equal(0.0))
		})

		It("charges five days for a loan of 20 days returned yesterday", func() {
			l := returnedLoan(daysAgo(20), daysAgo(1))
			Expect(l.DaysElapsed(today)).To(Equal(19))
			Expect(l.OverdueDays(today, period)).To(Equal(5))
			Expect(l.Fine(today, period, 1.0)).To(Equal(5.0))
			Expect(l.IsOverdue(today, period)).To(BeTrue())
			Expect(l.IsCurrentlyOverdue(today, period)).To(BeFalse())
		})

		It("is not overdue on exactly the last day of the period", func() {
			l := openLoan(daysAgo(period))
			Expect(l.IsOverdue(today, period)).To(BeFalse())
			Expect(l.OverdueDays(today, period)).To(Equal(0))
			Expect(l.Fine(today, period, 2.5)).To(Equal(0.0))
		})

		It("scales the fine with the daily rate", func() {
			Expect(openLoan(daysAgo(18)).Fine(today, period, 0.5)).To(Equal(2.0))
		})

		It("never returns a negative fine", func() {
			Expect(openLoan(daysAgo(30)).Fine(today, period, -1)).To(Equal(0.0))
			Expect(openLoan(today.AddDate(0, 0, 2)).Fine(today, period, 1)).To(Equal(0.0))
		})

		It("matches max(0, days - period) for open loans", func() {
			for n := 0; n <= 40; n++ {
				expected := n - period
				if expected < 0 {
					expected = 0
				}
				l := openLoan(daysAgo(n))
				Expect(l.OverdueDays(today, period)).To(Equal(expected), "days elapsed %d", n)
				Expect(l.Fine(today, period, 1.0)).To(Equal(float64(expected)), "days elapsed %d", n)
				Expect(l.IsOverdue(today, period)).To(Equal(n > period), "days elapsed %d", n)
			}
		})

		It("does not depend on asOf once the loan is returned", func() {
			l := returnedLoan(daysAgo(30), daysAgo(10))
			first := l.Fine(today, period, 1.0)
			for _, asOf := range []time.Time{daysAgo(5), today, today.AddDate(0, 2, 0)} {
				Expect(l.Fine(asOf, period, 1.0)).To(Equal(first))
			}
			Expect(first).To(Equal(6.0))
		})
	})

	Describe("Partition", func() {
		It("splits loans by returned flag keeping order", func() {
			a := &loan.Loan{ID: 1}
			b := &loan.Loan{ID: 2, Returned: true}
			c := &loan.Loan{ID: 3}

			open, returned := loan.Partition([]*loan.Loan{a, b, c})
			Expect(open).To(Equal([]*loan.Loan{a, c}))
			Expect(returned).To(Equal([]*loan.Loan{b}))
		})

		It("returns empty slices for no loans", func() {
			open, returned := loan.Partition(nil)
			Expect(open).To(BeEmpty())
			Expect(returned).To(BeEmpty())
		})
	})

	Describe("Policy", func() {
		policy := loan.Policy{LoanPeriodDays: period, FinePerDay: 1.0}

		It("assesses an overdue open loan", func() {
			a := policy.Assess(openLoan(daysAgo(15)), today)
			Expect(a.DaysElapsed).To(Equal(15))
			Expect(a.OverdueDays).To(Equal(1))
			Expect(a.Overdue).To(BeTrue())
			Expect(a.CurrentlyOverdue).To(BeTrue())
			Expect(a.Fine).To(Equal(1.0))
			Expect(a.DueDate).To(Equal(daysAgo(1)))
		})

		It("puts the overdue cutoff one period before today", func() {
			cutoff := policy.OverdueCutoff(today.Add(15 * time.Hour))
			Expect(cutoff).To(Equal(daysAgo(period)))
			Expect(openLoan(cutoff).IsOverdue(today, period)).To(BeFalse())
			Expect(openLoan(cutoff.AddDate(0, 0, -1)).IsOverdue(today, period)).To(BeTrue())
		})
	})
})
