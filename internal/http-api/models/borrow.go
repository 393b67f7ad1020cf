package models

import "time"

const (
	BorrowRequested = "REQUESTED"
	BorrowAccepted  = "ACCEPTED"
	BorrowActive    = "ACTIVE"
	BorrowReturned  = "RETURNED"
	BorrowOverdue   = "OVERDUE" // derived label only, see IsOverdue
	BorrowRejected  = "REJECTED"
)

type Borrow struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64      `gorm:"not null;index" json:"user_id"`
	BookID         int64      `gorm:"not null;index" json:"book_id"`
	BorrowDate     time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate        time.Time  `gorm:"not null;index" json:"due_date"`
	ReturnDate     *time.Time `json:"return_date,omitempty"`
	Status         string     `gorm:"size:16;not null;index" json:"status"`
	ExtensionCount int        `gorm:"not null;default:0" json:"extension_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Borrow) TableName() string {
	return "borrows"
}

// IsOpen reports whether the book has not been given back yet.
func (b Borrow) IsOpen() bool {
	return b.ReturnDate == nil
}

func (b Borrow) IsOverdue(now time.Time) bool {
	return b.ReturnDate == nil && b.DueDate.Before(now)
}

// HoldsCopy reports whether the borrow currently keeps a copy out of circulation.
func (b Borrow) HoldsCopy() bool {
	return b.IsOpen() && b.Status != BorrowRejected
}
