package service

import (
	"context"
	"time"

	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID   int64
	Username string
	Role     string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Patch applies a partial update onto an entity.
type Patch[T any] interface {
	ApplyTo(*T)
}

// SettingsCache is the read-through cache in front of the admin settings row.
type SettingsCache interface {
	Get(ctx context.Context) (*models.AdminSettings, error)
	Set(ctx context.Context, s *models.AdminSettings) error
	Invalidate(ctx context.Context) error
}

var (
	ErrUserNotFound         = errs.NotFound("user not found")
	ErrBookNotFound         = errs.NotFound("book not found")
	ErrCategoryNotFound     = errs.NotFound("category not found")
	ErrBorrowNotFound       = errs.NotFound("borrow not found")
	ErrBookingNotFound      = errs.NotFound("booking not found")
	ErrDonationNotFound     = errs.NotFound("donation request not found")
	ErrReviewNotFound       = errs.NotFound("review not found")
	ErrNotificationNotFound = errs.NotFound("notification not found")
	ErrFeaturedNotFound     = errs.NotFound("featured book not found")
	ErrMediaNotFound        = errs.NotFound("media not found")

	ErrForbidden = errs.Forbidden("you do not have permission to perform this action")
)

// clock returns the current time in UTC; tests replace it.
type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
