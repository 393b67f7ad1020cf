package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/media"
)

// CreateBorrowDTO used for POST /borrow/create
type CreateBorrowDTO struct {
	BookID int64 `json:"book_id" binding:"required,min=1"`
	Days   *int  `json:"days,omitempty" binding:"omitempty,min=1"`
}

// BookRefQuery binds ?book_id= of the user borrow actions.
type BookRefQuery struct {
	BookID     int64 `form:"book_id" binding:"required,min=1"`
	ExtendDays *int  `form:"extend_days" binding:"omitempty,min=1"`
}

// BorrowRefQuery binds ?user_id=&book_id= of the admin borrow actions.
type BorrowRefQuery struct {
	UserID int64 `form:"user_id" binding:"required,min=1"`
	BookID int64 `form:"book_id" binding:"required,min=1"`
}

// BorrowListQuery binds the admin borrow listing filters.
type BorrowListQuery struct {
	PageQuery
	UserID *int64 `form:"user_id" binding:"omitempty,min=1"`
	Status string `form:"status"`
}

type BorrowResponse struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	Username       string       `json:"username,omitempty"`
	BookID         int64        `json:"book_id"`
	Book           *BookSummary `json:"book,omitempty"`
	BorrowDate     time.Time    `json:"borrow_date"`
	DueDate        time.Time    `json:"due_date"`
	ReturnDate     *time.Time   `json:"return_date,omitempty"`
	Status         string       `json:"status"`
	ExtensionCount int          `json:"extension_count"`
	IsOverdue      bool         `json:"is_overdue"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func FromBorrow(b *models.Borrow, now time.Time, r *media.Resolver) BorrowResponse {
	resp := BorrowResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		BookID:         b.BookID,
		Book:           summarizeBook(b.Book, r),
		BorrowDate:     b.BorrowDate,
		DueDate:        b.DueDate,
		ReturnDate:     b.ReturnDate,
		Status:         b.Status,
		ExtensionCount: b.ExtensionCount,
		IsOverdue:      b.IsOverdue(now),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	if b.User != nil {
		resp.Username = b.User.Username
	}
	return resp
}

func FromBorrows(list []models.Borrow, now time.Time, r *media.Resolver) []BorrowResponse {
	out := make([]BorrowResponse, 0, len(list))
	for i := range list {
		out = append(out, FromBorrow(&list[i], now, r))
	}
	return out
}

// DashboardStatistics is the per-user summary of GET /user-dashboard/statistics.
type DashboardStatistics struct {
	TotalBorrowed int64 `json:"total_borrowed"`
	Requested     int64 `json:"requested"`
	Open          int64 `json:"open"`
	Returned      int64 `json:"returned"`
	Rejected      int64 `json:"rejected"`
	Overdue       int64 `json:"overdue"`
}

func FromBorrowStats(s *repository.BorrowStats) DashboardStatistics {
	return DashboardStatistics{
		TotalBorrowed: s.Total,
		Requested:     s.Requested,
		Open:          s.Active,
		Returned:      s.Returned,
		Rejected:      s.Rejected,
		Overdue:       s.Overdue,
	}
}
