package events

import (
	"context"
	"log/slog"
	"time"
)

const (
	EventTypeLoanCreated  = "loan.created"
	EventTypeLoanReturned = "loan.returned"
	EventTypeLoanDeleted  = "loan.deleted"
	EventTypeLoanOverdue  = "loan.overdue"
)

// LoanEventTypes lists every event the loan lifecycle publishes.
var LoanEventTypes = []string{
	EventTypeLoanCreated,
	EventTypeLoanReturned,
	EventTypeLoanDeleted,
	EventTypeLoanOverdue,
}

type LoanCreatedEvent struct {
	BaseEvent
	LoanID    int64     `json:"loan_id"`
	BookID    int64     `json:"book_id"`
	PartnerID int64     `json:"partner_id"`
	LoanDate  time.Time `json:"loan_date"`
}

func NewLoanCreatedEvent(loanID, bookID, partnerID int64, loanDate time.Time) *LoanCreatedEvent {
	return &LoanCreatedEvent{
		BaseEvent: newBaseEvent(EventTypeLoanCreated),
		LoanID:    loanID,
		BookID:    bookID,
		PartnerID: partnerID,
		LoanDate:  loanDate,
	}
}

func (e *LoanCreatedEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("loan_id", e.LoanID),
		slog.Int64("book_id", e.BookID),
		slog.Int64("partner_id", e.PartnerID),
		slog.String("loan_date", e.LoanDate.Format(time.DateOnly)),
	)
}

// LoanReturnedEvent carries the fine assessed at return time.
type LoanReturnedEvent struct {
	BaseEvent
	LoanID      int64     `json:"loan_id"`
	BookID      int64     `json:"book_id"`
	PartnerID   int64     `json:"partner_id"`
	ReturnDate  time.Time `json:"return_date"`
	OverdueDays int       `json:"overdue_days"`
	Fine        float64   `json:"fine"`
}

func NewLoanReturnedEvent(loanID, bookID, partnerID int64, returnDate time.Time, overdueDays int, fine float64) *LoanReturnedEvent {
	return &LoanReturnedEvent{
		BaseEvent:   newBaseEvent(EventTypeLoanReturned),
		LoanID:      loanID,
		BookID:      bookID,
		PartnerID:   partnerID,
		ReturnDate:  returnDate,
		OverdueDays: overdueDays,
		Fine:        fine,
	}
}

func (e *LoanReturnedEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("loan_id", e.LoanID),
		slog.Int64("book_id", e.BookID),
		slog.Int64("partner_id", e.PartnerID),
		slog.String("return_date", e.ReturnDate.Format(time.DateOnly)),
		slog.Int("overdue_days", e.OverdueDays),
		slog.Float64("fine", e.Fine),
	)
}

type LoanDeletedEvent struct {
	BaseEvent
	LoanID      int64 `json:"loan_id"`
	BookID      int64 `json:"book_id"`
	WasReturned bool  `json:"was_returned"`
}

func NewLoanDeletedEvent(loanID, bookID int64, wasReturned bool) *LoanDeletedEvent {
	return &LoanDeletedEvent{
		BaseEvent:   newBaseEvent(EventTypeLoanDeleted),
		LoanID:      loanID,
		BookID:      bookID,
		WasReturned: wasReturned,
	}
}

func (e *LoanDeletedEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("loan_id", e.LoanID),
		slog.Int64("book_id", e.BookID),
		slog.Bool("was_returned", e.WasReturned),
	)
}

// LoanOverdueEvent is published by the overdue scan, once per loan per scan.
type LoanOverdueEvent struct {
	BaseEvent
	LoanID      int64   `json:"loan_id"`
	BookID      int64   `json:"book_id"`
	PartnerID   int64   `json:"partner_id"`
	OverdueDays int     `json:"overdue_days"`
	Fine        float64 `json:"fine"`
}

func NewLoanOverdueEvent(loanID, bookID, partnerID int64, overdueDays int, fine float64) *LoanOverdueEvent {
	return &LoanOverdueEvent{
		BaseEvent:   newBaseEvent(EventTypeLoanOverdue),
		LoanID:      loanID,
		BookID:      bookID,
		PartnerID:   partnerID,
		OverdueDays: overdueDays,
		Fine:        fine,
	}
}

func (e *LoanOverdueEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("loan_id", e.LoanID),
		slog.Int64("book_id", e.BookID),
		slog.Int64("partner_id", e.PartnerID),
		slog.Int("overdue_days", e.OverdueDays),
		slog.Float64("fine", e.Fine),
	)
}

// SubscribeLoanAudit logs every loan event as a structured audit line.
func SubscribeLoanAudit(bus *EventBus, logger *slog.Logger) {
	for _, eventType := range LoanEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
			attrs := []any{
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"occurred_at", event.OccurredAt(),
			}
			if lv, ok := event.(slog.LogValuer); ok {
				attrs = append(attrs, slog.Any("loan", lv))
			}
			logger.InfoContext(ctx, "loan event", attrs...)
			return nil
		})
	}
}
