package loan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type OverdueScannerAPI interface {
	ScanOverdue(ctx context.Context) ([]*Loan, error)
}

// OverdueScheduler runs the overdue scan on a cron schedule.
type OverdueScheduler struct {
	scanner  OverdueScannerAPI
	schedule string
	timeout  time.Duration
	logger   *slog.Logger

	cron     *cron.Cron
	mu       sync.Mutex
	scanning bool
}

func NewOverdueScheduler(scanner OverdueScannerAPI, schedule string, logger *slog.Logger) *OverdueScheduler {
	return &OverdueScheduler{
		scanner:  scanner,
		schedule: schedule,
		timeout:  5 * time.Minute,
		logger:   logger,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Run schedules the scan and blocks until ctx is done, then waits for a
// running scan to finish.
func (s *OverdueScheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid overdue scan schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("overdue scheduler started", "schedule", s.schedule, "next_run", s.NextRun())

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("overdue scheduler stopped")
	return nil
}

// RunOnce performs a single scan. Overlapping calls are skipped.
func (s *OverdueScheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		s.logger.Warn("overdue scan skipped, previous scan still running")
		return
	}
	s.scanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	scanCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	loans, err := s.scanner.ScanOverdue(scanCtx)
	if err != nil {
		s.logger.Error("overdue scan failed", "error", err)
		return
	}
	s.logger.Info("overdue scan finished", "overdue_loans", len(loans), "duration", time.Since(start).Round(time.Millisecond))
}

func (s *OverdueScheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
