package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"libraryhub/internal/http-api/models"
)

type BorrowStats struct {
	Total     int64 `json:"total"`
	Requested int64 `json:"requested"`
	Active    int64 `json:"active"`
	Returned  int64 `json:"returned"`
	Rejected  int64 `json:"rejected"`
	Overdue   int64 `json:"overdue"`
}

// StatsRepository runs aggregate queries that do not map onto a single model.
type StatsRepository interface {
	// BorrowStats aggregates every borrow, or only userID's when it is set.
	BorrowStats(ctx context.Context, userID *int64, now time.Time) (*BorrowStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func countWhen(cond, alias string) string {
	return fmt.Sprintf("COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS %s", cond, alias)
}

func (r *statsRepository) BorrowStats(ctx context.Context, userID *int64, now time.Time) (*BorrowStats, error) {
	// placeholders stay "?", gorm rebinds them for the active dialect
	query := sq.Select("COUNT(*) AS total").
		Column(countWhen("status = ?", "requested"), models.BorrowRequested).
		Column(countWhen("return_date IS NULL AND status IN (?, ?)", "active"), models.BorrowAccepted, models.BorrowActive).
		Column(countWhen("status = ?", "returned"), models.BorrowReturned).
		Column(countWhen("status = ?", "rejected"), models.BorrowRejected).
		Column(countWhen("return_date IS NULL AND due_date < ?", "overdue"), now).
		From("borrows")
	if userID != nil {
		query = query.Where(sq.Eq{"user_id": *userID})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build borrow stats: %w", err)
	}

	var stats BorrowStats
	if err := r.db.WithContext(ctx).Raw(sqlStr, args...).Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("borrow stats: %w", err)
	}
	return &stats, nil
}
