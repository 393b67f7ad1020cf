package repository

import (
	"context"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
)

// SettingsRepository reads and writes the single admin_settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.AdminSettings, error)
	Save(ctx context.Context, s *models.AdminSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.AdminSettings, error) {
	var s models.AdminSettings
	if err := r.db.WithContext(ctx).First(&s, models.SettingsID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, s *models.AdminSettings) error {
	s.ID = models.SettingsID
	return r.db.WithContext(ctx).Save(s).Error
}
