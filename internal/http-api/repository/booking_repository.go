package repository

import (
	"context"
	"time"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingFilter narrows List; zero values are ignored. Today decides whether a
// pending booking counts as expired.
type BookingFilter struct {
	UserID *int64
	BookID *int64
	Status string
	Today  time.Time
}

type BookingRepository interface {
	// CreatePending inserts b unless the user already holds a pending booking for the book.
	CreatePending(ctx context.Context, b *models.Booking, today time.Time) error
	FindByID(ctx context.Context, id int64) (*models.Booking, error)
	// UpdateIfPending applies fields only while the row is still PENDING and not
	// expired as of today. It reports false when it was not.
	UpdateIfPending(ctx context.Context, id int64, today time.Time, fields map[string]any) (bool, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f BookingFilter, page, pageSize int) ([]models.Booking, int64, error)
	// ExpirePending persists EXPIRED on pending bookings whose expected date is before today.
	ExpirePending(ctx context.Context, today time.Time) (int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) CreatePending(ctx context.Context, b *models.Booking, today time.Time) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var pending int64
	err := tx.Model(&models.Booking{}).
		Where("user_id = ? AND book_id = ? AND status = ? AND expected_available_date >= ?",
			b.UserID, b.BookID, models.BookingPending, today).
		Count(&pending).Error
	if err != nil {
		tx.Rollback()
		return err
	}
	if pending > 0 {
		tx.Rollback()
		return ErrDuplicate
	}

	if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
		tx.Rollback()
		return translate(err)
	}
	return tx.Commit().Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id int64) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).Preload("User").Preload("Book").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) UpdateIfPending(ctx context.Context, id int64, today time.Time, fields map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ? AND expected_available_date >= ?", id, models.BookingPending, today).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Booking{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns matching bookings newest first. pageSize <= 0 returns every match.
func (r *bookingRepository) List(ctx context.Context, f BookingFilter, page, pageSize int) ([]models.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.BookID != nil {
		query = query.Where("book_id = ?", *f.BookID)
	}
	switch f.Status {
	case "":
	case models.BookingExpired:
		query = query.Where("status = ? OR (status = ? AND expected_available_date < ?)",
			models.BookingExpired, models.BookingPending, f.Today)
	case models.BookingPending:
		query = query.Where("status = ? AND expected_available_date >= ?", models.BookingPending, f.Today)
	default:
		query = query.Where("status = ?", f.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := query.Preload("User").Preload("Book").Order("booking_date DESC").Order("id DESC")
	if pageSize > 0 {
		find = find.Limit(pageSize).Offset(offset(page, pageSize))
	}

	var list []models.Booking
	if err := find.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *bookingRepository) ExpirePending(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("status = ? AND expected_available_date < ?", models.BookingPending, today).
		Update("status", models.BookingExpired)
	return result.RowsAffected, result.Error
}
