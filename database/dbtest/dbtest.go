// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"libraryhub/database"
	"libraryhub/internal/http-api/models"
)

// DefaultSettings are the limits seeded into every test database.
var DefaultSettings = models.AdminSettings{
	BorrowDayLimit:    30,
	BorrowExtendLimit: 2,
	BorrowBookLimit:   5,
	BookingDaysLimit:  30,
}

// New returns a migrated, seeded sqlite database living in t.TempDir().
func New(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedSettings(db, DefaultSettings))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
