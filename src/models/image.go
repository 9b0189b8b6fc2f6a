package models

import (
	"time"

	"github.com/google/uuid"
)

// Image rows are hard-deleted together with their backing file.
type Image struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	BookID    uint      `gorm:"index;not null" json:"book_id"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
