package dto

import "libraryhub/internal/http-api/models"

// UpdateSettingsDTO used for PUT /admin-settings (partial updates allowed)
type UpdateSettingsDTO struct {
	BorrowDayLimit    *int `json:"borrow_day_limit,omitempty" binding:"omitempty,min=1"`
	BorrowExtendLimit *int `json:"borrow_extend_limit,omitempty" binding:"omitempty,min=0"`
	BorrowBookLimit   *int `json:"borrow_book_limit,omitempty" binding:"omitempty,min=1"`
	BookingDaysLimit  *int `json:"booking_days_limit,omitempty" binding:"omitempty,min=1"`
}

func (d UpdateSettingsDTO) ApplyTo(s *models.AdminSettings) {
	if d.BorrowDayLimit != nil {
		s.BorrowDayLimit = *d.BorrowDayLimit
	}
	if d.BorrowExtendLimit != nil {
		s.BorrowExtendLimit = *d.BorrowExtendLimit
	}
	if d.BorrowBookLimit != nil {
		s.BorrowBookLimit = *d.BorrowBookLimit
	}
	if d.BookingDaysLimit != nil {
		s.BookingDaysLimit = *d.BookingDaysLimit
	}
}
