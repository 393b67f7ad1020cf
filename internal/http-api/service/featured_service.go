package service

import (
	"context"
	"errors"
	"fmt"

	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

var ErrAlreadyFeatured = errs.Conflict("book is already featured")

type FeaturedService interface {
	Add(ctx context.Context, bookID int64) (*models.FeaturedBook, error)
	// Update moves a featured entry to another book.
	Update(ctx context.Context, id, bookID int64) (*models.FeaturedBook, error)
	Remove(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.FeaturedBook, error)
	List(ctx context.Context) ([]models.FeaturedBook, error)
}

type featuredService struct {
	repo     repository.FeaturedRepository
	bookRepo repository.BookRepository
}

func NewFeaturedService(repo repository.FeaturedRepository, bookRepo repository.BookRepository) FeaturedService {
	return &featuredService{repo: repo, bookRepo: bookRepo}
}

func (s *featuredService) Add(ctx context.Context, bookID int64) (*models.FeaturedBook, error) {
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}

	f := &models.FeaturedBook{BookID: bookID}
	if err := s.repo.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyFeatured
		}
		return nil, fmt.Errorf("feature book: %w", err)
	}
	return s.Get(ctx, f.ID)
}

func (s *featuredService) Update(ctx context.Context, id, bookID int64) (*models.FeaturedBook, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}

	if err := s.repo.SetBook(ctx, id, bookID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyFeatured
		case repository.IsNotFound(err):
			return nil, ErrFeaturedNotFound
		default:
			return nil, fmt.Errorf("update featured book: %w", err)
		}
	}
	return s.Get(ctx, id)
}

func (s *featuredService) ensureBook(ctx context.Context, bookID int64) error {
	if _, err := s.bookRepo.FindByID(ctx, bookID); err != nil {
		if repository.IsNotFound(err) {
			return ErrBookNotFound
		}
		return fmt.Errorf("find book: %w", err)
	}
	return nil
}

func (s *featuredService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrFeaturedNotFound
		}
		return fmt.Errorf("remove featured book: %w", err)
	}
	return nil
}

func (s *featuredService) Get(ctx context.Context, id int64) (*models.FeaturedBook, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrFeaturedNotFound
		}
		return nil, fmt.Errorf("find featured book: %w", err)
	}
	return f, nil
}

func (s *featuredService) List(ctx context.Context) ([]models.FeaturedBook, error) {
	return s.repo.List(ctx)
}
