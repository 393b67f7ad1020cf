package models

import "time"

const (
	FormatHardCopy  = "HARD_COPY"
	FormatEBook     = "E_BOOK"
	FormatAudioBook = "AUDIO_BOOK"
)

type Book struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string    `gorm:"size:200;not null;index" json:"title"`
	Author          string    `gorm:"size:100;not null;index" json:"author"`
	Description     *string   `gorm:"size:500" json:"description,omitempty"`
	Cover           *string   `gorm:"size:255" json:"cover,omitempty"`
	PDFFile         *string   `gorm:"column:pdf_file;size:255" json:"pdf_file,omitempty"`
	AudioFile       *string   `gorm:"size:255" json:"audio_file,omitempty"`
	CopiesTotal     int       `gorm:"not null;default:0;check:chk_books_copies_total,copies_total >= 0" json:"copies_total"`
	CopiesAvailable int       `gorm:"not null;default:0;check:chk_books_copies_available,copies_available >= 0 AND copies_available <= copies_total" json:"copies_available"`
	CategoryID      *int64    `gorm:"index" json:"category_id,omitempty"`
	AverageRating   float64   `gorm:"not null;default:0" json:"average_rating"`
	Format          string    `gorm:"size:16;not null" json:"format"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Associations
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

func (b Book) IsAvailable() bool {
	return b.CopiesAvailable > 0
}

func ValidFormat(f string) bool {
	switch f {
	case FormatHardCopy, FormatEBook, FormatAudioBook:
		return true
	}
	return false
}
