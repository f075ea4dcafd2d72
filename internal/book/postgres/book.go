package postgres

import (
	"context"
	"strings"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/book"
	bookDatamodel "github.com/codeup/novabook/internal/core/datamodel/book"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	"github.com/codeup/novabook/internal/core/dberr"
	"gorm.io/gorm"
)

type BookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) book.RepositoryAPI {
	return &BookRepository{db: db}
}

func (r *BookRepository) Create(ctx context.Context, b *bookDatamodel.Book) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return dberr.Translate(err, dberr.EntityBook, b.ID)
	}
	return nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*bookDatamodel.Book, error) {
	var b bookDatamodel.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityBook, id)
	}
	return &b, nil
}

func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*bookDatamodel.Book, error) {
	var b bookDatamodel.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&b).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityBook, 0)
	}
	return &b, nil
}

func (r *BookRepository) List(ctx context.Context, filter book.ListFilter) ([]*bookDatamodel.Book, error) {
	q := r.db.WithContext(ctx)
	if filter.AvailableOnly {
		q = q.Where("available = ?", true)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR isbn LIKE ?", like, like, like)
	}

	var books []*bookDatamodel.Book
	if err := q.Order("title ASC").Order("id ASC").Find(&books).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityBook, 0)
	}
	return books, nil
}

// Update writes the descriptive columns only. The availability flag is owned
// by the loan transactions.
func (r *BookRepository) Update(ctx context.Context, b *bookDatamodel.Book) error {
	res := r.db.WithContext(ctx).Model(&bookDatamodel.Book{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"title":            b.Title,
			"author":           b.Author,
			"isbn":             b.ISBN,
			"publication_year": b.PublicationYear,
		})
	if res.Error != nil {
		return dberr.Translate(res.Error, dberr.EntityBook, b.ID)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound(dberr.EntityBook, b.ID)
	}
	return nil
}

// Delete refuses to remove a book that an open loan still references.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&loanDatamodel.Loan{}).
			Where("book_id = ? AND returned = ?", id, false).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return internal.ErrBookOnLoan.ForEntity(dberr.EntityBook, id)
		}

		res := tx.Delete(&bookDatamodel.Book{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return dberr.NotFound(dberr.EntityBook, id)
		}
		return nil
	})
	return dberr.Translate(err, dberr.EntityBook, id)
}

func (r *BookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&bookDatamodel.Book{}).Where("isbn = ?", isbn).Count(&count).Error; err != nil {
		return false, dberr.Translate(err, dberr.EntityBook, 0)
	}
	return count > 0, nil
}
