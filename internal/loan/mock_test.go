package loan_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codeup/novabook/internal"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	"github.com/codeup/novabook/internal/core/dberr"
	"github.com/codeup/novabook/internal/core/events"
	"github.com/codeup/novabook/internal/loan"
)

// MockRepository keeps loans in memory and mirrors the transactional rules of
// the gorm repository.
type MockRepository struct {
	mu        sync.Mutex
	loans     map[int64]*loanDatamodel.Loan
	available map[int64]bool
	active    map[int64]bool
	nextID    int64
	lastOpts  loan.CreateOptions
	failError error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		loans:     make(map[int64]*loanDatamodel.Loan),
		available: make(map[int64]bool),
		active:    make(map[int64]bool),
	}
}

func (m *MockRepository) AddBook(id int64) {
	m.available[id] = true
}

func (m *MockRepository) AddPartner(id int64, active bool) {
	m.active[id] = active
}

func (m *MockRepository) BookAvailable(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available[id]
}

func (m *MockRepository) SetShouldFail(err error) {
	m.failError = err
}

func (m *MockRepository) Seed(l *loanDatamodel.Loan) {
	m.nextID++
	l.ID = m.nextID
	m.loans[l.ID] = l
	if !l.Returned {
		m.available[l.BookID] = false
	}
}

func (m *MockRepository) Create(ctx context.Context, l *loanDatamodel.Loan, opts loan.CreateOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOpts = opts

	if m.failError != nil {
		return m.failError
	}
	available, ok := m.available[l.BookID]
	if !ok {
		return dberr.NotFound(dberr.EntityBook, l.BookID)
	}
	if !available {
		return internal.ErrBookUnavailable
	}
	active, ok := m.active[l.PartnerID]
	if !ok {
		return dberr.NotFound(dberr.EntityPartner, l.PartnerID)
	}
	if !active {
		return internal.ErrPartnerInactive
	}
	if opts.MaxOpenPerPartner > 0 {
		open := 0
		for _, existing := range m.loans {
			if existing.PartnerID == l.PartnerID && !existing.Returned {
				open++
			}
		}
		if open >= opts.MaxOpenPerPartner {
			return internal.ErrLoanLimitReached
		}
	}

	m.nextID++
	l.ID = m.nextID
	stored := *l
	m.loans[l.ID] = &stored
	m.available[l.BookID] = false
	return nil
}

func (m *MockRepository) Return(ctx context.Context, id int64, returnDate time.Time) (*loanDatamodel.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.loans[id]
	if !ok {
		return nil, dberr.NotFound(dberr.EntityLoan, id)
	}
	if l.Returned {
		return nil, internal.ErrLoanAlreadyReturned
	}
	if returnDate.Before(l.LoanDate) {
		return nil, internal.NewValidationFieldError("return_date", "return date cannot be before the loan date", internal.ErrCodeInvalidDate)
	}
	l.Returned = true
	l.ReturnDate = &returnDate
	m.available[l.BookID] = true
	out := *l
	return &out, nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (*loanDatamodel.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.loans[id]
	if !ok {
		return nil, dberr.NotFound(dberr.EntityLoan, id)
	}
	delete(m.loans, id)
	if !l.Returned {
		m.available[l.BookID] = true
	}
	return l, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*loanDatamodel.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.loans[id]
	if !ok {
		return nil, dberr.NotFound(dberr.EntityLoan, id)
	}
	out := *l
	return &out, nil
}

func (m *MockRepository) List(ctx context.Context) ([]*loanDatamodel.Loan, error) {
	return m.filter(func(*loanDatamodel.Loan) bool { return true }, true)
}

func (m *MockRepository) ListOpen(ctx context.Context) ([]*loanDatamodel.Loan, error) {
	return m.filter(func(l *loanDatamodel.Loan) bool { return !l.Returned }, true)
}

func (m *MockRepository) ListByPartner(ctx context.Context, partnerID int64) ([]*loanDatamodel.Loan, error) {
	return m.filter(func(l *loanDatamodel.Loan) bool { return l.PartnerID == partnerID }, true)
}

func (m *MockRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]*loanDatamodel.Loan, error) {
	return m.filter(func(l *loanDatamodel.Loan) bool { return !l.Returned && l.LoanDate.Before(cutoff) }, false)
}

func (m *MockRepository) HasOpenLoan(ctx context.Context, bookID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failError != nil {
		return false, m.failError
	}
	for _, l := range m.loans {
		if l.BookID == bookID && !l.Returned {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) filter(keep func(*loanDatamodel.Loan) bool, newestFirst bool) ([]*loanDatamodel.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failError != nil {
		return nil, m.failError
	}
	result := make([]*loanDatamodel.Loan, 0)
	for _, l := range m.loans {
		if keep(l) {
			out := *l
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.LoanDate.Equal(b.LoanDate) {
			if newestFirst {
				return a.LoanDate.After(b.LoanDate)
			}
			return a.LoanDate.Before(b.LoanDate)
		}
		if newestFirst {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
	return result, nil
}

// RecordingBus captures published events.
type RecordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *RecordingBus) Publish(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *RecordingBus) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, len(b.events))
	for i, e := range b.events {
		types[i] = e.EventType()
	}
	return types
}

func (b *RecordingBus) Last() events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return b.events[len(b.events)-1]
}
