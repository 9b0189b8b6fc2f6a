package models

import "bitlibro/src/types"

type Book struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	Name          string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	ISBN          string `gorm:"column:isbn;size:20;uniqueIndex;not null" json:"isbn"`
	Author        string `gorm:"size:100;index;not null" json:"author"`
	YearPublished string `gorm:"size:4" json:"year_published"`
	Editorial     string `gorm:"size:100" json:"editorial"`

	Genres []*Genre `gorm:"many2many:book_genres;" json:"genres,omitempty"`
	Images []*Image `gorm:"foreignKey:BookID" json:"images,omitempty"`

	types.Timestamps
}

type BookGenre struct {
	BookID  uint `gorm:"primaryKey"`
	GenreID uint `gorm:"primaryKey"`
}
