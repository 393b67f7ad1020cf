package models

import "time"

type FeaturedBook struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BookID    int64     `gorm:"not null;uniqueIndex" json:"book_id"`
	CreatedAt time.Time `json:"created_at"`

	// Associations
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (FeaturedBook) TableName() string {
	return "featured_books"
}
