package models

import "time"

// SettingsID is the primary key of the only admin_settings row.
const SettingsID int64 = 1

type AdminSettings struct {
	ID                int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	BorrowDayLimit    int       `gorm:"not null" json:"borrow_day_limit"`
	BorrowExtendLimit int       `gorm:"not null" json:"borrow_extend_limit"`
	BorrowBookLimit   int       `gorm:"not null" json:"borrow_book_limit"`
	BookingDaysLimit  int       `gorm:"not null" json:"booking_days_limit"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (AdminSettings) TableName() string {
	return "admin_settings"
}

// All lists every model managed by the schema migration.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Book{},
		&Borrow{},
		&Booking{},
		&Donation{},
		&Review{},
		&Notification{},
		&FeaturedBook{},
		&AdminSettings{},
	}
}
