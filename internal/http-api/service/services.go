package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"libraryhub/internal/config"
	"libraryhub/internal/events"
	"libraryhub/internal/http-api/repository"
)

// Services is the full set of application services over one database.
type Services struct {
	Auth          AuthService
	Settings      SettingsService
	Notifications NotificationService
	Categories    CategoryService
	Books         BookService
	Borrows       BorrowService
	Bookings      BookingService
	Donations     DonationService
	Reviews       ReviewService
	Featured      FeaturedService
}

type ServicesDeps struct {
	DB        *gorm.DB
	Config    *config.Config
	Cache     SettingsCache
	Publisher events.Publisher
	Log       *zap.Logger
}

// NewServices builds every repository and service.
func NewServices(deps ServicesDeps) *Services {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Noop{}
	}

	var (
		users         = repository.NewUserRepository(deps.DB)
		books         = repository.NewBookRepository(deps.DB)
		categories    = repository.NewCategoryRepository(deps.DB)
		borrows       = repository.NewBorrowRepository(deps.DB)
		bookings      = repository.NewBookingRepository(deps.DB)
		donations     = repository.NewDonationRepository(deps.DB)
		reviews       = repository.NewReviewRepository(deps.DB)
		featured      = repository.NewFeaturedRepository(deps.DB)
		notifications = repository.NewNotificationRepository(deps.DB)
		settings      = repository.NewSettingsRepository(deps.DB)
		stats         = repository.NewStatsRepository(deps.DB)
	)

	settingsService := NewSettingsService(settings, deps.Cache, log.Named("settings"))
	notifier := NewNotificationService(notifications, log.Named("notifications"))

	return &Services{
		Auth:          NewAuthService(users, deps.Config),
		Settings:      settingsService,
		Notifications: notifier,
		Categories:    NewCategoryService(categories),
		Books:         NewBookService(books, categories),
		Borrows: NewBorrowService(BorrowServiceDeps{
			Repo:            borrows,
			StatsRepo:       stats,
			Settings:        settingsService,
			Notifier:        notifier,
			Publisher:       publisher,
			RequireApproval: deps.Config.BorrowRequireApproval,
			Log:             log.Named("borrow"),
		}),
		Bookings: NewBookingService(BookingServiceDeps{
			Repo:      bookings,
			BookRepo:  books,
			Settings:  settingsService,
			Notifier:  notifier,
			Publisher: publisher,
			Log:       log.Named("bookings"),
		}),
		Donations: NewDonationService(donations, notifier, publisher, log.Named("donations")),
		Reviews:   NewReviewService(reviews, books, log.Named("reviews")),
		Featured:  NewFeaturedService(featured, books),
	}
}
