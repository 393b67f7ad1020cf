package models

import "time"

const (
	BookingPending   = "PENDING"
	BookingFulfilled = "FULFILLED"
	BookingCancelled = "CANCELLED"
	BookingExpired   = "EXPIRED"
)

type Booking struct {
	ID                    int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                int64     `gorm:"not null;index" json:"user_id"`
	BookID                int64     `gorm:"not null;index" json:"book_id"`
	BookingDate           time.Time `gorm:"not null" json:"booking_date"`
	ExpectedAvailableDate time.Time `gorm:"not null;index" json:"expected_available_date"`
	Status                string    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// EffectiveStatus reports EXPIRED for a pending booking whose expected date is already behind today.
func (b Booking) EffectiveStatus(now time.Time) string {
	if b.Status == BookingPending && b.ExpectedAvailableDate.Before(StartOfDay(now)) {
		return BookingExpired
	}
	return b.Status
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
