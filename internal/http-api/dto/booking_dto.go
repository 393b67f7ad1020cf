package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/media"
)

// CreateBookingDTO used for POST /bookings
type CreateBookingDTO struct {
	BookID                int64 `json:"book_id" binding:"required,min=1"`
	ExpectedAvailableDate *Date `json:"expected_available_date" binding:"required"`
}

// UpdateBookingDTO used for PUT /bookings/:id
type UpdateBookingDTO struct {
	ExpectedAvailableDate *Date `json:"expected_available_date,omitempty"`
}

// BookingListQuery binds the admin booking listing filters.
type BookingListQuery struct {
	PageQuery
	UserID *int64 `form:"user_id" binding:"omitempty,min=1"`
	BookID *int64 `form:"book_id" binding:"omitempty,min=1"`
	Status string `form:"status"`
}

type BookingResponse struct {
	ID                    int64        `json:"id"`
	UserID                int64        `json:"user_id"`
	Username              string       `json:"username,omitempty"`
	BookID                int64        `json:"book_id"`
	Book                  *BookSummary `json:"book,omitempty"`
	BookingDate           time.Time    `json:"booking_date"`
	ExpectedAvailableDate Date         `json:"expected_available_date"`
	Status                string       `json:"status"`
	DaysUntilAvailable    int          `json:"days_until_available"`
	CanBeCancelled        bool         `json:"can_be_cancelled"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

func (d UpdateBookingDTO) ApplyTo(b *models.Booking) {
	if d.ExpectedAvailableDate != nil {
		b.ExpectedAvailableDate = d.ExpectedAvailableDate.Time
	}
}

// FromBooking reports the status as of now, so stale pending bookings read as EXPIRED.
func FromBooking(b *models.Booking, now time.Time, r *media.Resolver) BookingResponse {
	status := b.EffectiveStatus(now)
	days := int(b.ExpectedAvailableDate.Sub(models.StartOfDay(now)).Hours() / 24)
	if days < 0 {
		days = 0
	}

	resp := BookingResponse{
		ID:                    b.ID,
		UserID:                b.UserID,
		BookID:                b.BookID,
		Book:                  summarizeBook(b.Book, r),
		BookingDate:           b.BookingDate,
		ExpectedAvailableDate: Date{b.ExpectedAvailableDate},
		Status:                status,
		DaysUntilAvailable:    days,
		CanBeCancelled:        status == models.BookingPending,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
	if b.User != nil {
		resp.Username = b.User.Username
	}
	return resp
}

func FromBookings(list []models.Booking, now time.Time, r *media.Resolver) []BookingResponse {
	out := make([]BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, FromBooking(&list[i], now, r))
	}
	return out
}
