package loan_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/codeup/novabook/internal/loan"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeScanner struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (f *fakeScanner) ScanOverdue(ctx context.Context) ([]*loan.Loan, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return []*loan.Loan{{ID: 1}}, f.err
}

var _ = Describe("OverdueScheduler", func() {
	var lg *slog.Logger

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	It("should scan once on demand and survive scan errors", func() {
		scanner := &fakeScanner{err: errors.New("db down")}
		s := loan.NewOverdueScheduler(scanner, "0 8 * * *", lg)

		s.RunOnce(context.Background())
		s.RunOnce(context.Background())
		Expect(scanner.calls.Load()).To(Equal(int32(2)))
	})

	It("should skip a scan while the previous one runs", func() {
		scanner := &fakeScanner{release: make(chan struct{})}
		s := loan.NewOverdueScheduler(scanner, "0 8 * * *", lg)

		done := make(chan struct{})
		go func() {
			defer close(done)
			s.RunOnce(context.Background())
		}()
		Eventually(scanner.calls.Load).Should(Equal(int32(1)))

		s.RunOnce(context.Background())
		Expect(scanner.calls.Load()).To(Equal(int32(1)))

		close(scanner.release)
		Eventually(done).Should(BeClosed())
	})

	It("should reject an invalid schedule", func() {
		s := loan.NewOverdueScheduler(&fakeScanner{}, "every morning", lg)
		Expect(s.Run(context.Background())).To(MatchError(ContainSubstring("invalid overdue scan schedule")))
	})

	It("should plan the next run and stop with its context", func() {
		s := loan.NewOverdueScheduler(&fakeScanner{}, "0 8 * * *", lg)
		Expect(s.NextRun()).To(BeZero())

		ctx, cancel := context.WithCancel(context.Background())
		result := make(chan error, 1)
		go func() { result <- s.Run(ctx) }()

		Eventually(s.NextRun).Should(BeTemporally(">", time.Now()))
		cancel()
		Eventually(result).Should(Receive(BeNil()))
	})
})
