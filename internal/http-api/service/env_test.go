package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"libraryhub/database/dbtest"
	"libraryhub/internal/config"
	"libraryhub/internal/events"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

// patchFunc adapts a plain function to Patch.
type patchFunc[T any] func(*T)

func (f patchFunc[T]) ApplyTo(v *T) { f(v) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// testEnv wires every service against one sqlite database and a shared, movable clock.
type testEnv struct {
	t   *testing.T
	db  *gorm.DB
	ctx context.Context
	now time.Time

	publisher *recordingPublisher

	auth          *authService
	settings      SettingsService
	notifications NotificationService
	categories    CategoryService
	books         BookService
	borrows       *borrowService
	bookings      *bookingService
	donations     *donationService
	reviews       ReviewService
	featured      FeaturedService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.New(t)
	e := &testEnv{
		t:         t,
		db:        db,
		ctx:       context.Background(),
		now:       time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		publisher: &recordingPublisher{},
	}
	clockFn := func() time.Time { return e.now }

	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	cfg := &config.Config{
		JWTSecret:                strings.Repeat("k", 32),
		JWTAlgorithm:             "HS256",
		AccessTokenExpireMinutes: 60,
	}
	e.auth = NewAuthService(userRepo, cfg).(*authService)
	e.auth.now = clockFn

	e.settings = NewSettingsService(repository.NewSettingsRepository(db), nil, nil)
	e.notifications = NewNotificationService(repository.NewNotificationRepository(db), nil)
	e.categories = NewCategoryService(categoryRepo)
	e.books = NewBookService(bookRepo, categoryRepo)

	e.borrows = NewBorrowService(BorrowServiceDeps{
		Repo:            repository.NewBorrowRepository(db),
		StatsRepo:       repository.NewStatsRepository(db),
		Settings:        e.settings,
		Notifier:        e.notifications,
		Publisher:       e.publisher,
		RequireApproval: true,
	}).(*borrowService)
	e.borrows.now = clockFn

	e.bookings = NewBookingService(BookingServiceDeps{
		Repo:      repository.NewBookingRepository(db),
		BookRepo:  bookRepo,
		Settings:  e.settings,
		Notifier:  e.notifications,
		Publisher: e.publisher,
	}).(*bookingService)
	e.bookings.now = clockFn

	e.donations = NewDonationService(repository.NewDonationRepository(db), e.notifications, e.publisher, nil).(*donationService)
	e.donations.now = clockFn

	e.reviews = NewReviewService(repository.NewReviewRepository(db), bookRepo, nil)
	e.featured = NewFeaturedService(repository.NewFeaturedRepository(db), bookRepo)
	return e
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) user(username string) Actor {
	e.t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(e.t, e.db.Create(u).Error)
	return Actor{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (e *testEnv) admin(username string) Actor {
	e.t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: models.RoleAdmin}
	require.NoError(e.t, e.db.Create(u).Error)
	return Actor{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (e *testEnv) book(title string, copies int) *models.Book {
	e.t.Helper()
	b := &models.Book{
		Title:           title,
		Author:          "Author of " + title,
		Format:          models.FormatHardCopy,
		CopiesTotal:     copies,
		CopiesAvailable: copies,
	}
	require.NoError(e.t, e.db.Create(b).Error)
	return b
}

func (e *testEnv) copiesAvailable(bookID int64) int {
	e.t.Helper()
	var b models.Book
	require.NoError(e.t, e.db.First(&b, bookID).Error)
	return b.CopiesAvailable
}

func (e *testEnv) setLimits(fn func(*models.AdminSettings)) {
	e.t.Helper()
	_, err := e.settings.Update(e.ctx, patchFunc[models.AdminSettings](fn))
	require.NoError(e.t, err)
}

func (e *testEnv) notificationsFor(username string) []models.Notification {
	e.t.Helper()
	list, _, err := e.notifications.List(e.ctx, username, 1, 100)
	require.NoError(e.t, err)
	return list
}
