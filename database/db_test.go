package database_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/database"
	"libraryhub/database/dbtest"
	"libraryhub/internal/http-api/models"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, database.IsPostgres("postgres://u:p@localhost:5432/library"))
	assert.True(t, database.IsPostgres("postgresql://localhost/library"))
	assert.True(t, database.IsPostgres("host=localhost user=u dbname=library"))
	assert.False(t, database.IsPostgres("library.db"))
	assert.False(t, database.IsPostgres("/var/lib/library/library.db"))
}

func TestSeedSettingsIsIdempotent(t *testing.T) {
	db := dbtest.New(t)

	err := database.SeedSettings(db, models.AdminSettings{
		BorrowDayLimit:    1,
		BorrowExtendLimit: 1,
		BorrowBookLimit:   1,
		BookingDaysLimit:  1,
	})
	require.NoError(t, err)

	var rows []models.AdminSettings
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SettingsID, rows[0].ID)
	assert.Equal(t, dbtest.DefaultSettings.BorrowDayLimit, rows[0].BorrowDayLimit)
}

func TestOpenBorrowIndex(t *testing.T) {
	db := dbtest.New(t)

	user := models.User{Username: "reader", Email: "reader@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)
	book := models.Book{Title: "Dune", Author: "Frank Herbert", Format: models.FormatHardCopy, CopiesTotal: 2, CopiesAvailable: 2}
	require.NoError(t, db.Create(&book).Error)

	now := time.Now().UTC()
	open := func() *models.Borrow {
		return &models.Borrow{
			UserID:     user.ID,
			BookID:     book.ID,
			BorrowDate: now,
			DueDate:    now.AddDate(0, 0, 14),
			Status:     models.BorrowActive,
		}
	}

	first := open()
	require.NoError(t, db.Create(first).Error)
	assert.Error(t, db.Create(open()).Error, "second open borrow for the same pair must be rejected")

	// once returned, the pair may borrow again
	require.NoError(t, db.Model(first).Update("return_date", now).Error)
	assert.NoError(t, db.Create(open()).Error)
}
