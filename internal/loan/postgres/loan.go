package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/codeup/novabook/internal"
	bookDatamodel "github.com/codeup/novabook/internal/core/datamodel/book"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	partnerDatamodel "github.com/codeup/novabook/internal/core/datamodel/partner"
	"github.com/codeup/novabook/internal/core/dberr"
	"github.com/codeup/novabook/internal/loan"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// openLoanIndex is the partial unique index allowing one open loan per book.
const openLoanIndex = "idx_loans_open_book"

type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) loan.RepositoryAPI {
	return &LoanRepository{db: db}
}

// Create inserts the loan and marks its book unavailable in one transaction.
// The book row is locked first so concurrent loans for the same book queue
// behind each other.
func (r *LoanRepository) Create(ctx context.Context, l *loanDatamodel.Loan, opts loan.CreateOptions) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b bookDatamodel.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", l.BookID).First(&b).Error; err != nil {
			return dberr.Translate(err, dberr.EntityBook, l.BookID)
		}
		if !b.Available {
			return internal.ErrBookUnavailable.ForEntity(dberr.EntityBook, b.ID)
		}

		var p partnerDatamodel.Partner
		if err := tx.Where("id = ?", l.PartnerID).First(&p).Error; err != nil {
			return dberr.Translate(err, dberr.EntityPartner, l.PartnerID)
		}
		if !p.Active {
			return internal.ErrPartnerInactive.ForEntity(dberr.EntityPartner, p.ID)
		}

		if opts.MaxOpenPerPartner > 0 {
			var open int64
			if err := tx.Model(&loanDatamodel.Loan{}).
				Where("partner_id = ? AND returned = ?", l.PartnerID, false).
				Count(&open).Error; err != nil {
				return dberr.Translate(err, dberr.EntityLoan, 0)
			}
			if open >= int64(opts.MaxOpenPerPartner) {
				return internal.ErrLoanLimitReached.ForEntity(dberr.EntityPartner, p.ID)
			}
		}

		l.LoanDate = loan.DateOf(l.LoanDate)
		l.Returned = false
		l.ReturnDate = nil
		res := tx.Omit(clause.Associations).Create(l)
		if res.Error != nil {
			if isOpenLoanConflict(res.Error) {
				return internal.ErrBookUnavailable.ForEntity(dberr.EntityBook, l.BookID).WithCause(res.Error)
			}
			return dberr.Translate(res.Error, dberr.EntityLoan, 0)
		}
		if res.RowsAffected == 0 {
			return dberr.NoRowsAffected(dberr.EntityLoan, 0)
		}

		res = tx.Model(&bookDatamodel.Book{}).
			Where("id = ? AND available = ?", l.BookID, true).
			Update("available", false)
		if res.Error != nil {
			return dberr.Translate(res.Error, dberr.EntityBook, l.BookID)
		}
		if res.RowsAffected == 0 {
			return dberr.NoRowsAffected(dberr.EntityBook, l.BookID)
		}
		return nil
	})
}

// Return closes an open loan and makes its book available again. A loan that
// is already returned is left untouched.
func (r *LoanRepository) Return(ctx context.Context, id int64, returnDate time.Time) (*loanDatamodel.Loan, error) {
	var out loanDatamodel.Loan
	date := loan.DateOf(returnDate)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&out).Error; err != nil {
			return dberr.Translate(err, dberr.EntityLoan, id)
		}
		if out.Returned {
			return internal.ErrLoanAlreadyReturned.ForEntity(dberr.EntityLoan, id)
		}
		if date.Before(loan.DateOf(out.LoanDate)) {
			return internal.NewValidationFieldError("return_date", "return date cannot be before the loan date", internal.ErrCodeInvalidDate).
				ForEntity(dberr.EntityLoan, id)
		}

		res := tx.Model(&loanDatamodel.Loan{}).
			Where("id = ? AND returned = ?", id, false).
			Updates(map[string]interface{}{"returned": true, "return_date": date})
		if res.Error != nil {
			return dberr.Translate(res.Error, dberr.EntityLoan, id)
		}
		if res.RowsAffected == 0 {
			return dberr.NoRowsAffected(dberr.EntityLoan, id)
		}

		res = tx.Model(&bookDatamodel.Book{}).Where("id = ?", out.BookID).Update("available", true)
		if res.Error != nil {
			return dberr.Translate(res.Error, dberr.EntityBook, out.BookID)
		}
		if res.RowsAffected == 0 {
			return dberr.NoRowsAffected(dberr.EntityBook, out.BookID)
		}

		out.Returned = true
		out.ReturnDate = &date
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the loan. The book becomes available again only when the
// loan was still open.
func (r *LoanRepository) Delete(ctx context.Context, id int64) (*loanDatamodel.Loan, error) {
	var out loanDatamodel.Loan

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&out).Error; err != nil {
			return dberr.Translate(err, dberr.EntityLoan, id)
		}

		res := tx.Delete(&loanDatamodel.Loan{}, id)
		if res.Error != nil {
			return dberr.Translate(res.Error, dberr.EntityLoan, id)
		}
		if res.RowsAffected == 0 {
			return dberr.NoRowsAffected(dberr.EntityLoan, id)
		}

		if out.Returned {
			return nil
		}
		res = tx.Model(&bookDatamodel.Book{}).Where("id = ?", out.BookID).Update("available", true)
		if res.Error != nil {
			return dberr.Translate(res.Error, dberr.EntityBook, out.BookID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*loanDatamodel.Loan, error) {
	var l loanDatamodel.Loan
	if err := r.withAssociations(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityLoan, id)
	}
	return &l, nil
}

func (r *LoanRepository) List(ctx context.Context) ([]*loanDatamodel.Loan, error) {
	return r.find(r.withAssociations(ctx).Order("loan_date DESC").Order("id DESC"))
}

func (r *LoanRepository) ListOpen(ctx context.Context) ([]*loanDatamodel.Loan, error) {
	return r.find(r.withAssociations(ctx).
		Where("returned = ?", false).
		Order("loan_date DESC").Order("id DESC"))
}

func (r *LoanRepository) ListByPartner(ctx context.Context, partnerID int64) ([]*loanDatamodel.Loan, error) {
	return r.find(r.withAssociations(ctx).
		Where("partner_id = ?", partnerID).
		Order("loan_date DESC").Order("id DESC"))
}

// ListOverdue returns open loans dated before cutoff, oldest first.
func (r *LoanRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]*loanDatamodel.Loan, error) {
	return r.find(r.withAssociations(ctx).
		Where("returned = ? AND loan_date < ?", false, loan.DateOf(cutoff)).
		Order("loan_date ASC").Order("id ASC"))
}

func (r *LoanRepository) HasOpenLoan(ctx context.Context, bookID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&loanDatamodel.Loan{}).
		Where("book_id = ? AND returned = ?", bookID, false).
		Count(&count).Error
	if err != nil {
		return false, dberr.Translate(err, dberr.EntityLoan, 0)
	}
	return count > 0, nil
}

// isOpenLoanConflict reports an insert rejected by openLoanIndex. A translated
// duplicate key on loans can only come from that index.
func isOpenLoanConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == openLoanIndex
}

func (r *LoanRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Book").Preload("Partner")
}

func (r *LoanRepository) find(q *gorm.DB) ([]*loanDatamodel.Loan, error) {
	var loans []*loanDatamodel.Loan
	if err := q.Find(&loans).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityLoan, 0)
	}
	return loans, nil
}
