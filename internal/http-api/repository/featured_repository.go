package repository

import (
	"context"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeaturedRepository interface {
	Create(ctx context.Context, f *models.FeaturedBook) error
	FindByID(ctx context.Context, id int64) (*models.FeaturedBook, error)
	List(ctx context.Context) ([]models.FeaturedBook, error)
	// SetBook points an existing entry at another book.
	SetBook(ctx context.Context, id, bookID int64) error
	Delete(ctx context.Context, id int64) error
}

type featuredRepository struct {
	db *gorm.DB
}

func NewFeaturedRepository(db *gorm.DB) FeaturedRepository {
	return &featuredRepository{db: db}
}

func (r *featuredRepository) Create(ctx context.Context, f *models.FeaturedBook) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error)
}

func (r *featuredRepository) FindByID(ctx context.Context, id int64) (*models.FeaturedBook, error) {
	var f models.FeaturedBook
	if err := r.db.WithContext(ctx).Preload("Book").First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *featuredRepository) List(ctx context.Context) ([]models.FeaturedBook, error) {
	var list []models.FeaturedBook
	if err := r.db.WithContext(ctx).Preload("Book").Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *featuredRepository) SetBook(ctx context.Context, id, bookID int64) error {
	result := r.db.WithContext(ctx).Model(&models.FeaturedBook{}).Where("id = ?", id).Update("book_id", bookID)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *featuredRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.FeaturedBook{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
