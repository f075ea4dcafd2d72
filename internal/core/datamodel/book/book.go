package book

import "time"

type Book struct {
	ID              int64     `gorm:"primaryKey"`
	Title           string    `gorm:"column:title;not null"`
	Author          string    `gorm:"column:author;not null"`
	ISBN            string    `gorm:"column:isbn;uniqueIndex;not null"`
	PublicationYear int       `gorm:"column:publication_year;not null"`
	Available       bool      `gorm:"column:available;not null"`
	DateAdded       time.Time `gorm:"column:date_added;autoCreateTime"`
}

func (Book) TableName() string {
	return "books"
}
