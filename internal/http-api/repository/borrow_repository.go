package repository

import (
	"context"
	"time"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BorrowFilter narrows List; zero values are ignored.
type BorrowFilter struct {
	UserID    *int64
	Statuses  []string
	OpenOnly  bool
	DueBefore *time.Time
}

// TransitionFunc mutates a locked open borrow. Returning restoreCopy puts the
// copy held by the borrow back into circulation in the same transaction.
type TransitionFunc func(b *models.Borrow) (restoreCopy bool, err error)

type BorrowRepository interface {
	// Create reserves a copy and inserts b atomically. maxOpen <= 0 disables the per-user limit.
	Create(ctx context.Context, b *models.Borrow, maxOpen int) error
	Transition(ctx context.Context, userID, bookID int64, fn TransitionFunc) (*models.Borrow, error)
	FindByID(ctx context.Context, id int64) (*models.Borrow, error)
	FindOpen(ctx context.Context, userID, bookID int64) (*models.Borrow, error)
	List(ctx context.Context, f BorrowFilter, page, pageSize int) ([]models.Borrow, int64, error)
}

type borrowRepository struct {
	db *gorm.DB
}

func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

func (r *borrowRepository) Create(ctx context.Context, b *models.Borrow, maxOpen int) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var open int64
	err := tx.Model(&models.Borrow{}).
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", b.UserID, b.BookID).
		Count(&open).Error
	if err != nil {
		tx.Rollback()
		return err
	}
	if open > 0 {
		tx.Rollback()
		return ErrOpenBorrowExists
	}

	if maxOpen > 0 {
		var held int64
		err := tx.Model(&models.Borrow{}).
			Where("user_id = ? AND return_date IS NULL", b.UserID).
			Count(&held).Error
		if err != nil {
			tx.Rollback()
			return err
		}
		if held >= int64(maxOpen) {
			tx.Rollback()
			return ErrBorrowLimitReached
		}
	}

	// conditional decrement, never lends more copies than available
	res := tx.Model(&models.Book{}).
		Where("id = ? AND copies_available > 0", b.BookID).
		UpdateColumn("copies_available", gorm.Expr("copies_available - 1"))
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := tx.Model(&models.Book{}).Where("id = ?", b.BookID).Count(&exists).Error; err != nil {
			tx.Rollback()
			return err
		}
		tx.Rollback()
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrNoCopiesAvailable
	}

	if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
		tx.Rollback()
		if IsUniqueViolation(err) {
			return ErrOpenBorrowExists
		}
		return err
	}

	return tx.Commit().Error
}

func (r *borrowRepository) Transition(ctx context.Context, userID, bookID int64, fn TransitionFunc) (*models.Borrow, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var b models.Borrow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", userID, bookID).
		First(&b).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	restoreCopy, err := fn(&b)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Omit(clause.Associations).Save(&b).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if restoreCopy {
		err := tx.Model(&models.Book{}).
			Where("id = ? AND copies_available < copies_total", b.BookID).
			UpdateColumn("copies_available", gorm.Expr("copies_available + 1")).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, b.ID)
}

func (r *borrowRepository) FindByID(ctx context.Context, id int64) (*models.Borrow, error) {
	var b models.Borrow
	if err := r.db.WithContext(ctx).Preload("User").Preload("Book").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *borrowRepository) FindOpen(ctx context.Context, userID, bookID int64) (*models.Borrow, error) {
	var b models.Borrow
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", userID, bookID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns matching borrows newest first. pageSize <= 0 returns every match.
func (r *borrowRepository) List(ctx context.Context, f BorrowFilter, page, pageSize int) ([]models.Borrow, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Borrow{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if f.OpenOnly {
		query = query.Where("return_date IS NULL")
	}
	if f.DueBefore != nil {
		query = query.Where("due_date < ?", *f.DueBefore)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := query.Preload("User").Preload("Book").Order("borrow_date DESC").Order("id DESC")
	if pageSize > 0 {
		find = find.Limit(pageSize).Offset(offset(page, pageSize))
	}

	var list []models.Borrow
	if err := find.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
