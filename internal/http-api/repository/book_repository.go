package repository

import (
	"context"
	"fmt"
	"strings"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
)

// BookFilter narrows List; zero values are ignored.
type BookFilter struct {
	CategoryID *int64
	Format     string
	Search     string
}

// BookChanges lists the columns an update writes. A new CopiesTotal shifts the
// stored available count by the same difference unless CopiesAvailable is set.
type BookChanges struct {
	Fields          map[string]any
	CopiesTotal     *int
	CopiesAvailable *int
}

func (c BookChanges) IsEmpty() bool {
	return len(c.Fields) == 0 && c.CopiesTotal == nil && c.CopiesAvailable == nil
}

type BookRepository interface {
	Create(ctx context.Context, b *models.Book) error
	Update(ctx context.Context, id int64, changes BookChanges) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, f BookFilter, page, pageSize int) ([]models.Book, int64, error)
	Top(ctx context.Context, orderBy string, limit int) ([]models.Book, error)
	UpdateAverageRating(ctx context.Context, id int64, avg float64) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *models.Book) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

// Update writes only the given columns. Copy counts are computed from the row as
// stored, so borrows and returns committed since the caller read the book are kept.
func (r *bookRepository) Update(ctx context.Context, id int64, changes BookChanges) error {
	updates := make(map[string]any, len(changes.Fields)+2)
	for column, value := range changes.Fields {
		updates[column] = value
	}
	if changes.CopiesTotal != nil {
		total := *changes.CopiesTotal
		updates["copies_total"] = total
		if changes.CopiesAvailable == nil {
			shifted := "copies_available + (? - copies_total)"
			updates["copies_available"] = gorm.Expr(
				"CASE WHEN "+shifted+" < 0 THEN 0 WHEN "+shifted+" > ? THEN ? ELSE "+shifted+" END",
				total, total, total, total, total,
			)
		}
	}
	if changes.CopiesAvailable != nil {
		updates["copies_available"] = *changes.CopiesAvailable
	}

	if len(updates) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the book together with its reviews, bookings, featured entry and
// closed borrows. It refuses while any borrow is still open.
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var count int64
	if err := tx.Model(&models.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
		tx.Rollback()
		return err
	}
	if count == 0 {
		tx.Rollback()
		return gorm.ErrRecordNotFound
	}

	var open int64
	if err := tx.Model(&models.Borrow{}).Where("book_id = ? AND return_date IS NULL", id).Count(&open).Error; err != nil {
		tx.Rollback()
		return err
	}
	if open > 0 {
		tx.Rollback()
		return ErrBookHasOpenBorrows
	}

	for _, dependent := range []any{&models.Review{}, &models.Booking{}, &models.FeaturedBook{}, &models.Borrow{}} {
		if err := tx.Where("book_id = ?", id).Delete(dependent).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("delete book dependents: %w", err)
		}
	}
	if err := tx.Delete(&models.Book{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (r *bookRepository) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).Preload("Category").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) List(ctx context.Context, f BookFilter, page, pageSize int) ([]models.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.Format != "" {
		query = query.Where("format = ?", f.Format)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []models.Book
	err := query.
		Preload("Category").
		Order("id ASC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&books).Error
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// Top returns the first limit books ordered by orderBy, e.g. "average_rating DESC".
func (r *bookRepository) Top(ctx context.Context, orderBy string, limit int) ([]models.Book, error) {
	var books []models.Book
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order(orderBy).
		Order("id ASC").
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) UpdateAverageRating(ctx context.Context, id int64, avg float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("average_rating", avg).Error
}
