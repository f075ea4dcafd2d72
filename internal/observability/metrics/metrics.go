package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novabook_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "novabook_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loanOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novabook_loan_operations_total",
		Help: "Count of loan lifecycle operations by action",
	}, []string{"action"})

	finesAssessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "novabook_fines_assessed_total",
		Help: "Sum of fines assessed on returned loans",
	})

	overdueLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "novabook_overdue_loans",
		Help: "Number of open loans past the loan period at the last scan",
	})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novabook_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	booksImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novabook_books_imported_total",
		Help: "Rows processed by the CSV book import by outcome",
	}, []string{"outcome"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLoanOperation counts a loan action: created, returned, deleted.
func ObserveLoanOperation(action string) {
	loanOperations.WithLabelValues(action).Inc()
}

func ObserveFine(amount float64) {
	if amount <= 0 {
		return
	}
	finesAssessed.Add(amount)
}

// SetOverdue sets the overdue loans gauge.
func SetOverdue(count int) {
	if count < 0 {
		count = 0
	}
	overdueLoans.Set(float64(count))
}

func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

func ObserveImport(imported, skipped, failed int) {
	booksImported.WithLabelValues("imported").Add(float64(imported))
	booksImported.WithLabelValues("skipped").Add(float64(skipped))
	booksImported.WithLabelValues("failed").Add(float64(failed))
}
