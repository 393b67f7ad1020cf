package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

type SettingsService interface {
	Get(ctx context.Context) (*models.AdminSettings, error)
	Update(ctx context.Context, patch Patch[models.AdminSettings]) (*models.AdminSettings, error)
}

type settingsService struct {
	repo  repository.SettingsRepository
	cache SettingsCache
	log   *zap.Logger
}

// NewSettingsService reads settings through cache when it is non-nil.
func NewSettingsService(repo repository.SettingsRepository, cache SettingsCache, log *zap.Logger) SettingsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &settingsService{repo: repo, cache: cache, log: log}
}

func (s *settingsService) Get(ctx context.Context) (*models.AdminSettings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("settings cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load admin settings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settings); err != nil {
			s.log.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, patch Patch[models.AdminSettings]) (*models.AdminSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load admin settings: %w", err)
	}

	patch.ApplyTo(settings)
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("save admin settings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("settings cache invalidation failed", zap.Error(err))
		}
	}
	return settings, nil
}

func validateSettings(s *models.AdminSettings) error {
	var problems []string
	if s.BorrowDayLimit <= 0 {
		problems = append(problems, "borrow_day_limit must be greater than 0")
	}
	if s.BorrowExtendLimit < 0 {
		problems = append(problems, "borrow_extend_limit must not be negative")
	}
	if s.BorrowBookLimit <= 0 {
		problems = append(problems, "borrow_book_limit must be greater than 0")
	}
	if s.BookingDaysLimit <= 0 {
		problems = append(problems, "booking_days_limit must be greater than 0")
	}
	if len(problems) > 0 {
		return errs.Validation(strings.Join(problems, "; "))
	}
	return nil
}
