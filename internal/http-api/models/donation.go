package models

import "time"

const (
	DonationPending  = "PENDING"
	DonationApproved = "APPROVED"
	DonationRejected = "REJECTED"
)

type Donation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	BookTitle  string    `gorm:"size:255;not null" json:"book_title"`
	Author     string    `gorm:"size:255;not null" json:"author"`
	ISBN       *string   `gorm:"column:isbn;size:20" json:"isbn,omitempty"`
	Notes      *string   `gorm:"type:text" json:"notes,omitempty"`
	Status     string    `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	AdminNotes *string   `gorm:"type:text" json:"admin_notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Donation) TableName() string {
	return "donation_requests"
}
