package models

import "time"

type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// BookCount is filled by queries selecting a book_count column; it is never stored.
	BookCount int64 `gorm:"->;-:migration" json:"book_count"`
}

func (Category) TableName() string {
	return "categories"
}
