package repository

import (
	"context"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DonationFilter narrows List; zero values are ignored.
type DonationFilter struct {
	UserID *int64
	Status string
}

type DonationRepository interface {
	Create(ctx context.Context, d *models.Donation) error
	FindByID(ctx context.Context, id int64) (*models.Donation, error)
	List(ctx context.Context, f DonationFilter, page, pageSize int) ([]models.Donation, int64, error)
	// UpdateIfStatus applies fields only while the row still has status from.
	// It reports false when the row was not in that status.
	UpdateIfStatus(ctx context.Context, id int64, from string, fields map[string]any) (bool, error)
	// DeleteIfStatus deletes only while the row still has status from.
	DeleteIfStatus(ctx context.Context, id int64, from string) (bool, error)
}

type donationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, d *models.Donation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

func (r *donationRepository) FindByID(ctx context.Context, id int64) (*models.Donation, error) {
	var d models.Donation
	if err := r.db.WithContext(ctx).Preload("User").First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donationRepository) List(ctx context.Context, f DonationFilter, page, pageSize int) ([]models.Donation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Donation{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := query.Preload("User").Order("created_at DESC").Order("id DESC")
	if pageSize > 0 {
		find = find.Limit(pageSize).Offset(offset(page, pageSize))
	}

	var list []models.Donation
	if err := find.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *donationRepository) UpdateIfStatus(ctx context.Context, id int64, from string, fields map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *donationRepository) DeleteIfStatus(ctx context.Context, id int64, from string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, from).
		Delete(&models.Donation{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
