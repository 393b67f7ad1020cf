package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"libraryhub/internal/events"
	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

var (
	ErrBookingExists     = errs.Conflict("you already have a pending booking for this book")
	ErrBookingNotPending = errs.Conflict("only PENDING bookings can be changed")
)

// BookingListFilter narrows the admin booking listing.
type BookingListFilter struct {
	UserID *int64
	BookID *int64
	Status string
}

type BookingService interface {
	Create(ctx context.Context, actor Actor, bookID int64, expected time.Time) (*models.Booking, error)
	Update(ctx context.Context, actor Actor, id int64, patch Patch[models.Booking]) (*models.Booking, error)
	Cancel(ctx context.Context, actor Actor, id int64) (*models.Booking, error)
	Fulfill(ctx context.Context, id int64) (*models.Booking, error)
	Delete(ctx context.Context, actor Actor, id int64) error

	Get(ctx context.Context, actor Actor, id int64) (*models.Booking, error)
	ListMine(ctx context.Context, actor Actor, page, pageSize int) ([]models.Booking, int64, error)
	List(ctx context.Context, f BookingListFilter, page, pageSize int) ([]models.Booking, int64, error)
	ListExpired(ctx context.Context, page, pageSize int) ([]models.Booking, int64, error)
	ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Booking, int64, error)

	// ExpireOverdue stores EXPIRED on every pending booking whose date has passed.
	ExpireOverdue(ctx context.Context) (int64, error)
	// Now is the clock bookings are evaluated against.
	Now() time.Time
}

type bookingService struct {
	repo      repository.BookingRepository
	bookRepo  repository.BookRepository
	settings  SettingsService
	notifier  NotificationService
	publisher events.Publisher
	log       *zap.Logger
	now       clock
}

type BookingServiceDeps struct {
	Repo      repository.BookingRepository
	BookRepo  repository.BookRepository
	Settings  SettingsService
	Notifier  NotificationService
	Publisher events.Publisher
	Log       *zap.Logger
}

func NewBookingService(deps BookingServiceDeps) BookingService {
	s := &bookingService{
		repo:      deps.Repo,
		bookRepo:  deps.BookRepo,
		settings:  deps.Settings,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		log:       deps.Log,
		now:       utcNow,
	}
	if s.publisher == nil {
		s.publisher = events.Noop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *bookingService) Now() time.Time {
	return s.now()
}

func (s *bookingService) Create(ctx context.Context, actor Actor, bookID int64, expected time.Time) (*models.Booking, error) {
	expected = models.StartOfDay(expected)
	if err := s.checkExpectedDate(ctx, expected); err != nil {
		return nil, err
	}

	if _, err := s.bookRepo.FindByID(ctx, bookID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}

	now := s.now()
	b := &models.Booking{
		UserID:                actor.UserID,
		BookID:                bookID,
		BookingDate:           now,
		ExpectedAvailableDate: expected,
		Status:                models.BookingPending,
	}
	if err := s.repo.CreatePending(ctx, b, models.StartOfDay(now)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrBookingExists
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publish(ctx, events.BookingCreated, b)
	return s.find(ctx, b.ID)
}

func (s *bookingService) Update(ctx context.Context, actor Actor, id int64, patch Patch[models.Booking]) (*models.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	if b.EffectiveStatus(s.now()) != models.BookingPending {
		return nil, ErrBookingNotPending
	}

	patch.ApplyTo(b)
	b.ExpectedAvailableDate = models.StartOfDay(b.ExpectedAvailableDate)
	if err := s.checkExpectedDate(ctx, b.ExpectedAvailableDate); err != nil {
		return nil, err
	}

	if err := s.updatePending(ctx, id, map[string]any{"expected_available_date": b.ExpectedAvailableDate}); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *bookingService) Cancel(ctx context.Context, actor Actor, id int64) (*models.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if err := s.setStatus(ctx, b, models.BookingCancelled); err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCancelled, b)
	return b, nil
}

func (s *bookingService) Fulfill(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.setStatus(ctx, b, models.BookingFulfilled); err != nil {
		return nil, err
	}

	if s.notifier != nil && b.User != nil {
		title := fmt.Sprintf("book #%d", b.BookID)
		if b.Book != nil {
			title = b.Book.Title
		}
		s.notifier.Notify(ctx, b.User.Username, models.NotificationInfo, "Booked book available",
			fmt.Sprintf("%q is now available for you.", title))
	}
	s.publish(ctx, events.BookingFulfilled, b)
	return b, nil
}

func (s *bookingService) Delete(ctx context.Context, actor Actor, id int64) error {
	b, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (s *bookingService) Get(ctx context.Context, actor Actor, id int64) (*models.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *bookingService) ListMine(ctx context.Context, actor Actor, page, pageSize int) ([]models.Booking, int64, error) {
	return s.List(ctx, BookingListFilter{UserID: &actor.UserID}, page, pageSize)
}

func (s *bookingService) List(ctx context.Context, f BookingListFilter, page, pageSize int) ([]models.Booking, int64, error) {
	switch f.Status {
	case "", models.BookingPending, models.BookingFulfilled, models.BookingCancelled, models.BookingExpired:
	default:
		return nil, 0, errs.Validation("unknown booking status " + f.Status)
	}

	page, pageSize = normalizePage(page, pageSize)
	filter := repository.BookingFilter{
		UserID: f.UserID,
		BookID: f.BookID,
		Status: f.Status,
		Today:  models.StartOfDay(s.now()),
	}
	return s.repo.List(ctx, filter, page, pageSize)
}

func (s *bookingService) ListExpired(ctx context.Context, page, pageSize int) ([]models.Booking, int64, error) {
	return s.List(ctx, BookingListFilter{Status: models.BookingExpired}, page, pageSize)
}

func (s *bookingService) ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Booking, int64, error) {
	if _, err := s.bookRepo.FindByID(ctx, bookID); err != nil {
		if repository.IsNotFound(err) {
			return nil, 0, ErrBookNotFound
		}
		return nil, 0, fmt.Errorf("find book: %w", err)
	}
	return s.List(ctx, BookingListFilter{BookID: &bookID}, page, pageSize)
}

func (s *bookingService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpirePending(ctx, models.StartOfDay(s.now()))
	if err != nil {
		return 0, fmt.Errorf("expire bookings: %w", err)
	}
	return n, nil
}

// checkExpectedDate requires today <= expected <= today + booking_days_limit.
func (s *bookingService) checkExpectedDate(ctx context.Context, expected time.Time) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}

	today := models.StartOfDay(s.now())
	if expected.Before(today) {
		return errs.Validation("expected_available_date cannot be in the past")
	}
	if expected.After(today.AddDate(0, 0, settings.BookingDaysLimit)) {
		return errs.Validation(fmt.Sprintf("expected_available_date cannot be more than %d days ahead", settings.BookingDaysLimit))
	}
	return nil
}

func (s *bookingService) setStatus(ctx context.Context, b *models.Booking, status string) error {
	if b.EffectiveStatus(s.now()) != models.BookingPending {
		return ErrBookingNotPending
	}
	if err := s.updatePending(ctx, b.ID, map[string]any{"status": status}); err != nil {
		return err
	}
	b.Status = status
	return nil
}

// updatePending writes fields only if the booking is still pending in the
// database, so of two racing transitions exactly one wins.
func (s *bookingService) updatePending(ctx context.Context, id int64, fields map[string]any) error {
	ok, err := s.repo.UpdateIfPending(ctx, id, models.StartOfDay(s.now()), fields)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if !ok {
		return ErrBookingNotPending
	}
	return nil
}

func (s *bookingService) find(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

func (s *bookingService) publish(ctx context.Context, kind string, b *models.Booking) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:     kind,
		EntityID: b.ID,
		UserID:   b.UserID,
		BookID:   b.BookID,
		Status:   b.Status,
		At:       s.now(),
	})
	if err != nil {
		s.log.Warn("publish booking event", zap.String("type", kind), zap.Int64("booking_id", b.ID), zap.Error(err))
	}
}
