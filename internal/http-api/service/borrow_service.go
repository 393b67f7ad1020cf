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

const (
	DefaultBorrowDays = 14
	DefaultExtendDays = 7

	day = 24 * time.Hour
)

var (
	ErrAlreadyBorrowed     = errs.Conflict("you already have an open borrow for this book")
	ErrNoCopiesAvailable   = errs.Conflict("no copies of this book are available")
	ErrBorrowLimitReached  = errs.Conflict("you have reached the maximum number of open borrows")
	ErrExtensionLimit      = errs.Conflict("the due date cannot be extended any further")
	ErrNoOpenBorrow        = errs.NotFound("no open borrow found for this book")
	ErrBorrowNotRequested  = errs.Conflict("borrow is not in REQUESTED status")
	ErrBorrowNotAccepted   = errs.Conflict("borrow is not in ACCEPTED status")
	ErrBorrowNotRejectable = errs.Conflict("only REQUESTED or ACTIVE borrows can be rejected")
	ErrBorrowNotReturnable = errs.Conflict("borrow request has not been accepted yet")
	ErrBorrowNotExtendable = errs.Conflict("only ACCEPTED or ACTIVE borrows can be extended")
)

// BorrowListFilter narrows the admin borrow listing.
type BorrowListFilter struct {
	UserID *int64
	Status string
}

type BorrowService interface {
	Create(ctx context.Context, actor Actor, bookID int64, days int) (*models.Borrow, error)
	Return(ctx context.Context, actor Actor, bookID int64) (*models.Borrow, error)
	Extend(ctx context.Context, actor Actor, bookID int64, extendDays int) (*models.Borrow, error)
	Accept(ctx context.Context, userID, bookID int64) (*models.Borrow, error)
	Activate(ctx context.Context, userID, bookID int64) (*models.Borrow, error)
	Reject(ctx context.Context, userID, bookID int64) (*models.Borrow, error)

	Get(ctx context.Context, actor Actor, id int64) (*models.Borrow, error)
	ListMine(ctx context.Context, actor Actor, page, pageSize int) ([]models.Borrow, int64, error)
	List(ctx context.Context, f BorrowListFilter, page, pageSize int) ([]models.Borrow, int64, error)
	ListActive(ctx context.Context, page, pageSize int) ([]models.Borrow, int64, error)
	ListOverdue(ctx context.Context, page, pageSize int) ([]models.Borrow, int64, error)
	Stats(ctx context.Context) (*repository.BorrowStats, error)
	UserStats(ctx context.Context, actor Actor) (*repository.BorrowStats, error)

	// RemindOverdue notifies every borrower holding an overdue book and returns how many were notified.
	RemindOverdue(ctx context.Context) (int, error)
}

type borrowService struct {
	repo            repository.BorrowRepository
	statsRepo       repository.StatsRepository
	settings        SettingsService
	notifier        NotificationService
	publisher       events.Publisher
	requireApproval bool
	log             *zap.Logger
	now             clock
}

type BorrowServiceDeps struct {
	Repo            repository.BorrowRepository
	StatsRepo       repository.StatsRepository
	Settings        SettingsService
	Notifier        NotificationService
	Publisher       events.Publisher
	RequireApproval bool
	Log             *zap.Logger
}

func NewBorrowService(deps BorrowServiceDeps) BorrowService {
	s := &borrowService{
		repo:            deps.Repo,
		statsRepo:       deps.StatsRepo,
		settings:        deps.Settings,
		notifier:        deps.Notifier,
		publisher:       deps.Publisher,
		requireApproval: deps.RequireApproval,
		log:             deps.Log,
		now:             utcNow,
	}
	if s.publisher == nil {
		s.publisher = events.Noop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *borrowService) Create(ctx context.Context, actor Actor, bookID int64, days int) (*models.Borrow, error) {
	if days < 0 {
		return nil, errs.Validation("days must be greater than 0")
	}
	if days == 0 {
		days = DefaultBorrowDays
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if days > settings.BorrowDayLimit {
		days = settings.BorrowDayLimit
	}

	now := s.now()
	status := models.BorrowActive
	if s.requireApproval {
		status = models.BorrowRequested
	}
	b := &models.Borrow{
		UserID:     actor.UserID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.Add(time.Duration(days) * day),
		Status:     status,
	}

	err = s.repo.Create(ctx, b, settings.BorrowBookLimit)
	switch {
	case err == nil:
	case repository.IsNotFound(err):
		return nil, ErrBookNotFound
	case errors.Is(err, repository.ErrOpenBorrowExists):
		return nil, ErrAlreadyBorrowed
	case errors.Is(err, repository.ErrBorrowLimitReached):
		return nil, ErrBorrowLimitReached
	case errors.Is(err, repository.ErrNoCopiesAvailable):
		return nil, ErrNoCopiesAvailable
	default:
		return nil, fmt.Errorf("create borrow: %w", err)
	}

	if b.Status == models.BorrowActive {
		s.publish(ctx, events.BorrowActivated, b)
	} else {
		s.publish(ctx, events.BorrowRequested, b)
	}

	created, err := s.repo.FindByID(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("reload borrow: %w", err)
	}
	return created, nil
}

func (s *borrowService) Return(ctx context.Context, actor Actor, bookID int64) (*models.Borrow, error) {
	b, err := s.transition(ctx, actor.UserID, bookID, func(b *models.Borrow) (bool, error) {
		if b.Status != models.BorrowAccepted && b.Status != models.BorrowActive {
			return false, ErrBorrowNotReturnable
		}
		held := b.HoldsCopy()
		now := s.now()
		b.ReturnDate = &now
		b.Status = models.BorrowReturned
		return held, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BorrowReturned, b)
	return b, nil
}

func (s *borrowService) Extend(ctx context.Context, actor Actor, bookID int64, extendDays int) (*models.Borrow, error) {
	if extendDays < 0 {
		return nil, errs.Validation("extend_days must be greater than 0")
	}
	if extendDays == 0 {
		extendDays = DefaultExtendDays
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.transition(ctx, actor.UserID, bookID, func(b *models.Borrow) (bool, error) {
		if b.Status != models.BorrowAccepted && b.Status != models.BorrowActive {
			return false, ErrBorrowNotExtendable
		}
		if b.ExtensionCount >= settings.BorrowExtendLimit {
			return false, ErrExtensionLimit
		}
		b.DueDate = b.DueDate.Add(time.Duration(extendDays) * day)
		b.ExtensionCount++
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BorrowExtended, b)
	return b, nil
}

func (s *borrowService) Accept(ctx context.Context, userID, bookID int64) (*models.Borrow, error) {
	b, err := s.transition(ctx, userID, bookID, func(b *models.Borrow) (bool, error) {
		if b.Status != models.BorrowRequested {
			return false, ErrBorrowNotRequested
		}
		b.Status = models.BorrowAccepted
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBorrower(ctx, b, models.NotificationInfo, "Borrow request accepted",
		fmt.Sprintf("Your request to borrow %q was accepted. Please pick up the book.", bookTitle(b)))
	s.publish(ctx, events.BorrowAccepted, b)
	return b, nil
}

func (s *borrowService) Activate(ctx context.Context, userID, bookID int64) (*models.Borrow, error) {
	b, err := s.transition(ctx, userID, bookID, func(b *models.Borrow) (bool, error) {
		if b.Status != models.BorrowAccepted {
			return false, ErrBorrowNotAccepted
		}
		// the loan starts at pickup, keep its length
		loan := b.DueDate.Sub(b.BorrowDate)
		now := s.now()
		b.BorrowDate = now
		b.DueDate = now.Add(loan)
		b.Status = models.BorrowActive
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BorrowActivated, b)
	return b, nil
}

func (s *borrowService) Reject(ctx context.Context, userID, bookID int64) (*models.Borrow, error) {
	b, err := s.transition(ctx, userID, bookID, func(b *models.Borrow) (bool, error) {
		if b.Status != models.BorrowRequested && b.Status != models.BorrowActive {
			return false, ErrBorrowNotRejectable
		}
		held := b.HoldsCopy()
		now := s.now()
		b.ReturnDate = &now
		b.Status = models.BorrowRejected
		return held, nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBorrower(ctx, b, models.NotificationAlert, "Borrow rejected",
		fmt.Sprintf("Your borrow of %q was rejected.", bookTitle(b)))
	s.publish(ctx, events.BorrowRejected, b)
	return b, nil
}

func (s *borrowService) Get(ctx context.Context, actor Actor, id int64) (*models.Borrow, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBorrowNotFound
		}
		return nil, fmt.Errorf("find borrow: %w", err)
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *borrowService) ListMine(ctx context.Context, actor Actor, page, pageSize int) ([]models.Borrow, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, repository.BorrowFilter{UserID: &actor.UserID}, page, pageSize)
}

func (s *borrowService) List(ctx context.Context, f BorrowListFilter, page, pageSize int) ([]models.Borrow, int64, error) {
	filter := repository.BorrowFilter{UserID: f.UserID}
	switch f.Status {
	case "":
	case models.BorrowOverdue:
		now := s.now()
		filter.OpenOnly = true
		filter.DueBefore = &now
	case models.BorrowRequested, models.BorrowAccepted, models.BorrowActive, models.BorrowReturned, models.BorrowRejected:
		filter.Statuses = []string{f.Status}
	default:
		return nil, 0, errs.Validation("unknown borrow status " + f.Status)
	}

	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, filter, page, pageSize)
}

func (s *borrowService) ListActive(ctx context.Context, page, pageSize int) ([]models.Borrow, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	filter := repository.BorrowFilter{
		Statuses: []string{models.BorrowAccepted, models.BorrowActive},
		OpenOnly: true,
	}
	return s.repo.List(ctx, filter, page, pageSize)
}

func (s *borrowService) ListOverdue(ctx context.Context, page, pageSize int) ([]models.Borrow, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	now := s.now()
	return s.repo.List(ctx, repository.BorrowFilter{OpenOnly: true, DueBefore: &now}, page, pageSize)
}

func (s *borrowService) Stats(ctx context.Context) (*repository.BorrowStats, error) {
	return s.statsRepo.BorrowStats(ctx, nil, s.now())
}

func (s *borrowService) UserStats(ctx context.Context, actor Actor) (*repository.BorrowStats, error) {
	return s.statsRepo.BorrowStats(ctx, &actor.UserID, s.now())
}

func (s *borrowService) RemindOverdue(ctx context.Context) (int, error) {
	now := s.now()
	filter := repository.BorrowFilter{
		Statuses:  []string{models.BorrowAccepted, models.BorrowActive},
		OpenOnly:  true,
		DueBefore: &now,
	}
	overdue, _, err := s.repo.List(ctx, filter, 1, 0)
	if err != nil {
		return 0, fmt.Errorf("list overdue borrows: %w", err)
	}

	for i := range overdue {
		b := &overdue[i]
		s.notifyBorrower(ctx, b, models.NotificationWarning, "Book overdue",
			fmt.Sprintf("%q was due on %s. Please return it as soon as possible.",
				bookTitle(b), b.DueDate.Format("2006-01-02")))
	}
	return len(overdue), nil
}

// transition maps repository errors of a state change onto service errors.
func (s *borrowService) transition(ctx context.Context, userID, bookID int64, fn repository.TransitionFunc) (*models.Borrow, error) {
	b, err := s.repo.Transition(ctx, userID, bookID, fn)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoOpenBorrow
		}
		var appErr *errs.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("update borrow: %w", err)
	}
	return b, nil
}

func (s *borrowService) notifyBorrower(ctx context.Context, b *models.Borrow, kind, title, message string) {
	if s.notifier == nil || b.User == nil {
		return
	}
	s.notifier.Notify(ctx, b.User.Username, kind, title, message)
}

func (s *borrowService) publish(ctx context.Context, kind string, b *models.Borrow) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:     kind,
		EntityID: b.ID,
		UserID:   b.UserID,
		BookID:   b.BookID,
		Status:   b.Status,
		At:       s.now(),
	})
	if err != nil {
		s.log.Warn("publish borrow event", zap.String("type", kind), zap.Int64("borrow_id", b.ID), zap.Error(err))
	}
}

func bookTitle(b *models.Borrow) string {
	if b.Book != nil {
		return b.Book.Title
	}
	return fmt.Sprintf("book #%d", b.BookID)
}
