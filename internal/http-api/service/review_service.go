package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

var ErrAlreadyReviewed = errs.Conflict("you have already reviewed this book")

type ReviewStats struct {
	BookID        int64   `json:"book_id"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int64   `json:"total_reviews"`
}

type ReviewService interface {
	Create(ctx context.Context, actor Actor, r *models.Review) (*models.Review, error)
	Update(ctx context.Context, actor Actor, id int64, patch Patch[models.Review]) (*models.Review, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	Get(ctx context.Context, id int64) (*models.Review, error)
	ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Review, int64, error)
	ListMine(ctx context.Context, actor Actor, page, pageSize int) ([]models.Review, int64, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]models.Review, int64, error)
	Stats(ctx context.Context, bookID int64) (*ReviewStats, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	bookRepo repository.BookRepository
	log      *zap.Logger
}

func NewReviewService(repo repository.ReviewRepository, bookRepo repository.BookRepository, log *zap.Logger) ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &reviewService{repo: repo, bookRepo: bookRepo, log: log}
}

func (s *reviewService) Create(ctx context.Context, actor Actor, r *models.Review) (*models.Review, error) {
	if err := validateRating(r.Rating); err != nil {
		return nil, err
	}
	if err := s.ensureBook(ctx, r.BookID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUserAndBook(ctx, actor.UserID, r.BookID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("find review: %w", err)
	}

	r.ID = 0
	r.UserID = actor.UserID
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.refreshRating(ctx, r.BookID)
	return s.Get(ctx, r.ID)
}

func (s *reviewService) Update(ctx context.Context, actor Actor, id int64, patch Patch[models.Review]) (*models.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	bookID := r.BookID
	patch.ApplyTo(r)
	r.BookID = bookID
	if err := validateRating(r.Rating); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.refreshRating(ctx, r.BookID)
	return r, nil
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, id int64) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID != actor.UserID && !actor.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.refreshRating(ctx, r.BookID)
	return nil
}

func (s *reviewService) Get(ctx context.Context, id int64) (*models.Review, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return r, nil
}

func (s *reviewService) ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.ListByBook(ctx, bookID, page, pageSize)
}

func (s *reviewService) ListMine(ctx context.Context, actor Actor, page, pageSize int) ([]models.Review, int64, error) {
	return s.ListByUser(ctx, actor.UserID, page, pageSize)
}

func (s *reviewService) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]models.Review, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.ListByUser(ctx, userID, page, pageSize)
}

func (s *reviewService) Stats(ctx context.Context, bookID int64) (*ReviewStats, error) {
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}
	avg, total, err := s.repo.Stats(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}
	return &ReviewStats{BookID: bookID, AverageRating: roundRating(avg), TotalReviews: total}, nil
}

// refreshRating recomputes the cached average on the book row.
func (s *reviewService) refreshRating(ctx context.Context, bookID int64) {
	avg, _, err := s.repo.Stats(ctx, bookID)
	if err == nil {
		err = s.bookRepo.UpdateAverageRating(ctx, bookID, roundRating(avg))
	}
	if err != nil {
		s.log.Error("refresh average rating", zap.Int64("book_id", bookID), zap.Error(err))
	}
}

func (s *reviewService) ensureBook(ctx context.Context, bookID int64) error {
	if _, err := s.bookRepo.FindByID(ctx, bookID); err != nil {
		if repository.IsNotFound(err) {
			return ErrBookNotFound
		}
		return fmt.Errorf("find book: %w", err)
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errs.Validation("rating must be between 1 and 5")
	}
	return nil
}

func roundRating(avg float64) float64 {
	return float64(int64(avg*100+0.5)) / 100
}
