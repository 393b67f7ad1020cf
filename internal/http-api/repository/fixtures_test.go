package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"libraryhub/database/dbtest"
	"libraryhub/internal/http-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.New(t)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash", Role: models.RoleUser}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedBook(t *testing.T, db *gorm.DB, title string, copies int, categoryID *int64) *models.Book {
	t.Helper()
	b := &models.Book{
		Title:           title,
		Author:          "Author of " + title,
		Format:          models.FormatHardCopy,
		CopiesTotal:     copies,
		CopiesAvailable: copies,
		CategoryID:      categoryID,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func reloadBook(t *testing.T, db *gorm.DB, id int64) *models.Book {
	t.Helper()
	var b models.Book
	require.NoError(t, db.First(&b, id).Error)
	return &b
}
