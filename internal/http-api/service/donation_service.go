package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"libraryhub/internal/events"
	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

var ErrDonationNotPending = errs.Conflict("donation request has already been processed")

// DonationListFilter narrows the admin donation listing.
type DonationListFilter struct {
	UserID *int64
	Status string
}

type DonationService interface {
	Create(ctx context.Context, actor Actor, d *models.Donation) (*models.Donation, error)
	Update(ctx context.Context, actor Actor, id int64, patch Patch[models.Donation]) (*models.Donation, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	// UpdateStatus decides a pending donation; status must be APPROVED or REJECTED.
	UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*models.Donation, error)
	Approve(ctx context.Context, id int64, adminNotes *string) (*models.Donation, error)
	Reject(ctx context.Context, id int64, adminNotes *string) (*models.Donation, error)

	Get(ctx context.Context, actor Actor, id int64) (*models.Donation, error)
	ListMine(ctx context.Context, actor Actor, page, pageSize int) ([]models.Donation, int64, error)
	List(ctx context.Context, f DonationListFilter, page, pageSize int) ([]models.Donation, int64, error)
}

type donationService struct {
	repo      repository.DonationRepository
	notifier  NotificationService
	publisher events.Publisher
	log       *zap.Logger
	now       clock
}

func NewDonationService(repo repository.DonationRepository, notifier NotificationService, publisher events.Publisher, log *zap.Logger) DonationService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &donationService{repo: repo, notifier: notifier, publisher: publisher, log: log, now: utcNow}
}

func (s *donationService) Create(ctx context.Context, actor Actor, d *models.Donation) (*models.Donation, error) {
	if err := validateDonation(d); err != nil {
		return nil, err
	}

	d.ID = 0
	d.UserID = actor.UserID
	d.Status = models.DonationPending
	d.AdminNotes = nil
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}
	return s.find(ctx, d.ID)
}

func (s *donationService) Update(ctx context.Context, actor Actor, id int64, patch Patch[models.Donation]) (*models.Donation, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	if d.Status != models.DonationPending {
		return nil, ErrDonationNotPending
	}

	patch.ApplyTo(d)
	if err := validateDonation(d); err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateIfStatus(ctx, id, models.DonationPending, map[string]any{
		"book_title": d.BookTitle,
		"author":     d.Author,
		"isbn":       d.ISBN,
		"notes":      d.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("update donation: %w", err)
	}
	if !ok {
		return nil, ErrDonationNotPending
	}
	return s.find(ctx, id)
}

func (s *donationService) Delete(ctx context.Context, actor Actor, id int64) error {
	d, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if d.UserID != actor.UserID {
		return ErrForbidden
	}

	ok, err := s.repo.DeleteIfStatus(ctx, id, models.DonationPending)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	if !ok {
		return ErrDonationNotPending
	}
	return nil
}

func (s *donationService) UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*models.Donation, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != models.DonationApproved && status != models.DonationRejected {
		return nil, errs.Validation("status must be APPROVED or REJECTED")
	}

	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{"status": status}
	if adminNotes != nil {
		fields["admin_notes"] = *adminNotes
	}
	ok, err := s.repo.UpdateIfStatus(ctx, id, models.DonationPending, fields)
	if err != nil {
		return nil, fmt.Errorf("update donation status: %w", err)
	}
	if !ok {
		return nil, ErrDonationNotPending
	}

	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && d.User != nil {
		kind := models.NotificationInfo
		if status == models.DonationRejected {
			kind = models.NotificationAlert
		}
		s.notifier.Notify(ctx, d.User.Username, kind, "Donation "+strings.ToLower(status),
			fmt.Sprintf("Your donation request for %q was %s.", d.BookTitle, strings.ToLower(status)))
	}

	err = s.publisher.Publish(ctx, events.Event{
		Type:     events.DonationDecided,
		EntityID: d.ID,
		UserID:   d.UserID,
		Status:   d.Status,
		At:       s.now(),
	})
	if err != nil {
		s.log.Warn("publish donation event", zap.Int64("donation_id", d.ID), zap.Error(err))
	}
	return d, nil
}

func (s *donationService) Approve(ctx context.Context, id int64, adminNotes *string) (*models.Donation, error) {
	return s.UpdateStatus(ctx, id, models.DonationApproved, adminNotes)
}

func (s *donationService) Reject(ctx context.Context, id int64, adminNotes *string) (*models.Donation, error) {
	return s.UpdateStatus(ctx, id, models.DonationRejected, adminNotes)
}

func (s *donationService) Get(ctx context.Context, actor Actor, id int64) (*models.Donation, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *donationService) ListMine(ctx context.Context, actor Actor, page, pageSize int) ([]models.Donation, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, repository.DonationFilter{UserID: &actor.UserID}, page, pageSize)
}

func (s *donationService) List(ctx context.Context, f DonationListFilter, page, pageSize int) ([]models.Donation, int64, error) {
	status := strings.ToUpper(strings.TrimSpace(f.Status))
	switch status {
	case "", models.DonationPending, models.DonationApproved, models.DonationRejected:
	default:
		return nil, 0, errs.Validation("unknown donation status " + f.Status)
	}

	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, repository.DonationFilter{UserID: f.UserID, Status: status}, page, pageSize)
}

func (s *donationService) find(ctx context.Context, id int64) (*models.Donation, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("find donation: %w", err)
	}
	return d, nil
}

func validateDonation(d *models.Donation) error {
	d.BookTitle = strings.TrimSpace(d.BookTitle)
	d.Author = strings.TrimSpace(d.Author)
	switch {
	case d.BookTitle == "":
		return errs.Validation("book_title is required")
	case d.Author == "":
		return errs.Validation("author is required")
	case d.ISBN != nil && len(*d.ISBN) > 20:
		return errs.Validation("isbn must be at most 20 characters")
	}
	return nil
}
