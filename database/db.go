package database

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"
)

// openBorrowIndex keeps at most one not-yet-returned borrow per (user, book).
const openBorrowIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_borrows_open_user_book
	ON borrows (user_id, book_id) WHERE return_date IS NULL`

// Open connects to postgres when DATABASE_URL looks like a postgres DSN and to an
// sqlite file otherwise, then migrates the schema and seeds the settings row.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(Dialector(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Info("database migrated", zap.String("dialect", db.Dialector.Name()))

	defaults := models.AdminSettings{
		BorrowDayLimit:    cfg.DefaultBorrowDayLimit,
		BorrowExtendLimit: cfg.DefaultBorrowExtendLimit,
		BorrowBookLimit:   cfg.DefaultBorrowBookLimit,
		BookingDaysLimit:  cfg.DefaultBookingDaysLimit,
	}
	if err := SeedSettings(db, defaults); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

func Dialector(url string) gorm.Dialector {
	if IsPostgres(url) {
		return postgres.Open(url)
	}
	return sqlite.Open(url)
}

func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://") ||
		strings.Contains(url, "host=")
}

// Migrate creates or updates every table plus the open-borrow partial index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := db.Exec(openBorrowIndex).Error; err != nil {
		return fmt.Errorf("failed to create open borrow index: %w", err)
	}
	return nil
}

// SeedSettings inserts the admin settings row unless it already exists.
func SeedSettings(db *gorm.DB, defaults models.AdminSettings) error {
	var existing models.AdminSettings
	err := db.First(&existing, models.SettingsID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load admin settings: %w", err)
	}

	defaults.ID = models.SettingsID
	if err := db.Create(&defaults).Error; err != nil {
		return fmt.Errorf("failed to seed admin settings: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}
