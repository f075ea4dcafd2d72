package loan

import (
	"time"

	bookDatamodel "github.com/codeup/novabook/internal/core/datamodel/book"
	partnerDatamodel "github.com/codeup/novabook/internal/core/datamodel/partner"
)

// Loan rows keep LoanDate and ReturnDate as calendar dates. The partial unique
// index idx_loans_open_book allows one open loan per book.
type Loan struct {
	ID         int64      `gorm:"primaryKey"`
	BookID     int64      `gorm:"column:book_id;not null;uniqueIndex:idx_loans_open_book,where:returned = false"`
	PartnerID  int64      `gorm:"column:partner_id;not null;index"`
	LoanDate   time.Time  `gorm:"column:loan_date;type:date;not null"`
	ReturnDate *time.Time `gorm:"column:return_date;type:date"`
	Returned   bool       `gorm:"column:returned;not null"`

	Book    *bookDatamodel.Book       `gorm:"foreignKey:BookID"`
	Partner *partnerDatamodel.Partner `gorm:"foreignKey:PartnerID"`
}

func (Loan) TableName() string {
	return "loans"
}
