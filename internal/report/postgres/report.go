package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/codeup/novabook/internal/core/dberr"
	"github.com/codeup/novabook/internal/report"
)

const (
	booksTableName    = `books`
	partnersTableName = `partners`
	loansTableName    = `loans`
)

// Queries are built with ? placeholders and rebound to the driver's bindvar.
var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type Reader struct {
	db *sqlx.DB
}

func NewReader(db *sqlx.DB) report.ReaderAPI {
	return &Reader{db: db}
}

func (r *Reader) Books(ctx context.Context) ([]report.BookRow, error) {
	query := qb.Select("id", "title", "author", "isbn", "publication_year", "available", "date_added").
		From(booksTableName).
		OrderBy("title", "id")

	var rows []report.BookRow
	if err := r.sel(ctx, &rows, query); err != nil {
		return nil, dberr.Translate(err, dberr.EntityBook, 0)
	}
	return rows, nil
}

func (r *Reader) Partners(ctx context.Context) ([]report.PartnerRow, error) {
	query := qb.Select(
		"id", "name", "email",
		"COALESCE(phone, '') AS phone",
		"COALESCE(address, '') AS address",
		"active", "registration_date",
	).
		From(partnersTableName).
		OrderBy("name", "id")

	var rows []report.PartnerRow
	if err := r.sel(ctx, &rows, query); err != nil {
		return nil, dberr.Translate(err, dberr.EntityPartner, 0)
	}
	return rows, nil
}

func (r *Reader) Loans(ctx context.Context) ([]report.LoanRow, error) {
	query := loanSelect().OrderBy("l.loan_date DESC", "l.id DESC")

	var rows []report.LoanRow
	if err := r.sel(ctx, &rows, query); err != nil {
		return nil, dberr.Translate(err, dberr.EntityLoan, 0)
	}
	return rows, nil
}

func (r *Reader) OverdueLoans(ctx context.Context, cutoff time.Time) ([]report.LoanRow, error) {
	query := loanSelect().
		Where(sq.Eq{"l.returned": false}).
		Where(sq.Lt{"l.loan_date": cutoff}).
		OrderBy("l.loan_date", "l.id")

	var rows []report.LoanRow
	if err := r.sel(ctx, &rows, query); err != nil {
		return nil, dberr.Translate(err, dberr.EntityLoan, 0)
	}
	return rows, nil
}

func loanSelect() sq.SelectBuilder {
	return qb.Select(
		"l.id", "l.book_id", "l.partner_id", "l.loan_date", "l.return_date", "l.returned",
		"b.title AS book_title",
		"b.author AS book_author",
		"b.isbn AS book_isbn",
		"p.name AS partner_name",
		"COALESCE(p.email, '') AS partner_email",
		"COALESCE(p.phone, '') AS partner_phone",
	).
		From(loansTableName + " l").
		Join(booksTableName + " b ON b.id = l.book_id").
		Join(partnersTableName + " p ON p.id = l.partner_id")
}

func (r *Reader) sel(ctx context.Context, dest interface{}, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...)
}
