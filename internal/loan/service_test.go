package loan_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/codeup/novabook/internal"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	"github.com/codeup/novabook/internal/core/events"
	"github.com/codeup/novabook/internal/loan"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Loan Service", func() {
	var (
		ctx      context.Context
		mockRepo *MockRepository
		bus      *RecordingBus
		service  *loan.Service
		now      time.Time
		today    time.Time
	)

	daysAgo := func(n int) time.Time {
		return today.AddDate(0, 0, -n)
	}

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		mockRepo.AddBook(1)
		mockRepo.AddBook(2)
		mockRepo.AddPartner(10, true)
		mockRepo.AddPartner(11, false)
		bus = &RecordingBus{}

		now = time.Date(2024, time.March, 20, 15, 30, 0, 0, time.UTC)
		today = loan.DateOf(now)

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		cfg := internal.DefaultConfig().Library
		service = loan.NewService(mockRepo, cfg, bus, logger).WithClock(func() time.Time { return now })
	})

	Describe("CreateLoan", func() {
		It("defaults the loan date to today and marks the book unavailable", func() {
			l, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.ID).To(BeNumerically(">", 0))
			Expect(l.BookID).To(Equal(int64(1)))
			Expect(l.PartnerID).To(Equal(int64(10)))
			Expect(l.LoanDate).To(Equal(today))
			Expect(l.Returned).To(BeFalse())
			Expect(l.ReturnDate).To(BeNil())

			Expect(mockRepo.BookAvailable(1)).To(BeFalse())
			Expect(bus.Types()).To(Equal([]string{events.EventTypeLoanCreated}))
		})

		It("passes the configured partner limit to the repository", func() {
			_, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.lastOpts.MaxOpenPerPartner).To(Equal(3))
		})

		It("accepts an explicit past loan date", func() {
			l, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10, LoanDate: "2024-03-05"})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.LoanDate).To(Equal(daysAgo(15)))
		})

		It("rejects a loan date in the future", func() {
			_, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10, LoanDate: "2024-03-21"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(mockRepo.BookAvailable(1)).To(BeTrue())
		})

		It("rejects a malformed loan date", func() {
			_, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10, LoanDate: "20/03/2024"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects missing identifiers", func() {
			_, err := service.CreateLoan(ctx, loan.CreateLoanDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("book_id"))
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("partner_id"))
		})

		It("rejects a second open loan for the same book", func() {
			_, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10})
			Expect(errors.Is(err, internal.ErrBookUnavailable)).To(BeTrue())
			Expect(bus.Types()).To(HaveLen(1))
		})

		It("rejects an inactive partner", func() {
			_, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 11})
			Expect(errors.Is(err, internal.ErrPartnerInactive)).To(BeTrue())
			Expect(mockRepo.BookAvailable(1)).To(BeTrue())
		})

		It("reports an unknown book", func() {
			_, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 99, PartnerID: 10})
			Expect(errors.Is(err, internal.ErrBookNotFound)).To(BeTrue())
		})

		It("propagates repository failures", func() {
			mockRepo.SetShouldFail(internal.NewConnectionError("database connection failed", errors.New("dial tcp")))
			_, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10})
			Expect(internal.IsType(err, internal.ErrorTypeConnection)).To(BeTrue())
		})
	})

	Describe("ReturnLoan", func() {
		var created *loan.Loan

		BeforeEach(func() {
			var err error
			created, err = service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 1, PartnerID: 10, LoanDate: daysAgo(20).Format(time.DateOnly)})
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the loan today and frees the book", func() {
			l, err := service.ReturnLoan(ctx, created.ID, loan.ReturnLoanDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Returned).To(BeTrue())
			Expect(*l.ReturnDate).To(Equal(today))
			Expect(mockRepo.BookAvailable(1)).To(BeTrue())

			returned, ok := bus.Last().(*events.LoanReturnedEvent)
			Expect(ok).To(BeTrue())
			Expect(returned.OverdueDays).To(Equal(6))
			Expect(returned.Fine).To(Equal(6.0))
		})

		It("fails the second time and keeps the first return date", func() {
			_, err := service.ReturnLoan(ctx, created.ID, loan.ReturnLoanDTO{ReturnDate: daysAgo(1).Format(time.DateOnly)})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReturnLoan(ctx, created.ID, loan.ReturnLoanDTO{})
			Expect(errors.Is(err, internal.ErrLoanAlreadyReturned)).To(BeTrue())

			l, err := service.GetLoan(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*l.ReturnDate).To(Equal(daysAgo(1)))
		})

		It("rejects a return date before the loan date", func() {
			_, err := service.ReturnLoan(ctx, created.ID, loan.ReturnLoanDTO{ReturnDate: daysAgo(25).Format(time.DateOnly)})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(mockRepo.BookAvailable(1)).To(BeFalse())
		})

		It("reports an unknown loan", func() {
			_, err := service.ReturnLoan(ctx, 404, loan.ReturnLoanDTO{})
			Expect(errors.Is(err, internal.ErrLoanNotFound)).To(BeTrue())
		})
	})

	Describe("DeleteLoan", func() {
		It("makes the book available again when the loan was open", func() {
			l, err := service.CreateLoan(ctx, loan.CreateLoanDTO{BookID: 2, PartnerID: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.BookAvailable(2)).To(BeFalse())

			Expect(service.DeleteLoan(ctx, l.ID)).To(Succeed())
			Expect(mockRepo.BookAvailable(2)).To(BeTrue())

			deleted, ok := bus.Last().(*events.LoanDeletedEvent)
			Expect(ok).To(BeTrue())
			Expect(deleted.WasReturned).To(BeFalse())

			_, err = service.GetLoan(ctx, l.ID)
			Expect(errors.Is(err, internal.ErrLoanNotFound)).To(BeTrue())
		})

		It("reports an unknown loan", func() {
			err := service.DeleteLoan(ctx, 404)
			Expect(errors.Is(err, internal.ErrLoanNotFound)).To(BeTrue())
		})
	})

	Describe("ListLoans", func() {
		BeforeEach(func() {
			mockRepo.Seed(&loanDatamodel.Loan{BookID: 1, PartnerID: 10, LoanDate: daysAgo(15)})
			mockRepo.Seed(&loanDatamodel.Loan{BookID: 2, PartnerID: 10, LoanDate: daysAgo(14)})
			returnDate := daysAgo(1)
			mockRepo.Seed(&loanDatamodel.Loan{BookID: 3, PartnerID: 12, LoanDate: daysAgo(30), ReturnDate: &returnDate, Returned: true})
		})

		It("lists all loans newest first", func() {
			loans, err := service.ListLoans(ctx, loan.StatusAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(loans).To(HaveLen(3))
			Expect(loans[0].LoanDate).To(Equal(daysAgo(14)))
			Expect(loans[2].LoanDate).To(Equal(daysAgo(30)))
		})

		It("lists open loans", func() {
			loans, err := service.ListLoans(ctx, loan.StatusOpen)
			Expect(err).NotTo(HaveOccurred())
			Expect(loans).To(HaveLen(2))
		})

		It("lists only loans past the loan period as overdue", func() {
			loans, err := service.ListLoans(ctx, loan.StatusOverdue)
			Expect(err).NotTo(HaveOccurred())
			Expect(loans).To(HaveLen(1))
			Expect(loans[0].BookID).To(Equal(int64(1)))
		})

		It("lists a partner's loans", func() {
			loans, err := service.ListPartnerLoans(ctx, 12)
			Expect(err).NotTo(HaveOccurred())
			Expect(loans).To(HaveLen(1))
			Expect(loans[0].Returned).To(BeTrue())
		})

		It("reports whether a book is on loan", func() {
			Expect(service.IsBookOnLoan(ctx, 1)).To(BeTrue())
			Expect(service.IsBookOnLoan(ctx, 3)).To(BeFalse())
		})

		It("publishes one overdue event per overdue loan when scanning", func() {
			loans, err := service.ScanOverdue(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(loans).To(HaveLen(1))
			Expect(bus.Types()).To(Equal([]string{events.EventTypeLoanOverdue}))

			overdue := bus.Last().(*events.LoanOverdueEvent)
			Expect(overdue.OverdueDays).To(Equal(1))
			Expect(overdue.Fine).To(Equal(1.0))
		})
	})

	Describe("Assess", func() {
		It("evaluates loans against the configured policy", func() {
			a := service.Assess(&loan.Loan{LoanDate: daysAgo(15)})
			Expect(a.Overdue).To(BeTrue())
			Expect(a.Fine).To(Equal(1.0))
			Expect(service.Policy().LoanPeriodDays).To(Equal(14))
		})
	})
})
