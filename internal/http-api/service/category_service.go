package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

var (
	ErrCategoryExists   = errs.Conflict("category with this name already exists")
	ErrCategoryHasBooks = errs.Conflict("cannot delete category with books")
)

type CategoryService interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, id int64, patch Patch[models.Category]) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	ListPage(ctx context.Context, page, pageSize int) ([]models.Category, int64, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, errs.Validation("category name is required")
	}
	if err := s.ensureNameFree(ctx, c.Name, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, patch Patch[models.Category]) (*models.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.ApplyTo(c)
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, errs.Validation("category name is required")
	}
	if err := s.ensureNameFree(ctx, c.Name, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountBooks(ctx, id)
	if err != nil {
		return fmt.Errorf("count category books: %w", err)
	}
	if count > 0 {
		return ErrCategoryHasBooks
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) ListPage(ctx context.Context, page, pageSize int) ([]models.Category, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.ListPage(ctx, page, pageSize)
}

// ensureNameFree fails when another category (not selfID) already uses name, ignoring case.
func (s *categoryService) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("find category by name: %w", err)
	}
	if existing.ID != selfID {
		return ErrCategoryExists
	}
	return nil
}
