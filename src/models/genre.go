package models

import "bitlibro/src/types"

type Genre struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`

	Books []*Book `gorm:"many2many:book_genres;" json:"books,omitempty"`

	types.Timestamps
}
