package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

func TestCategoryRepository_BookCount(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewCategoryRepository(db)
	ctx := context.Background()

	desc := "Speculative fiction"
	scifi := &models.Category{Name: "Science Fiction", Description: &desc}
	require.NoError(t, repo.Create(ctx, scifi))
	poetry := &models.Category{Name: "Poetry"}
	require.NoError(t, repo.Create(ctx, poetry))

	seedBook(t, db, "Dune", 1, &scifi.ID)
	seedBook(t, db, "Hyperion", 1, &scifi.ID)

	got, err := repo.FindByID(ctx, scifi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", got.Name)
	assert.Equal(t, desc, *got.Description)
	assert.EqualValues(t, 2, got.BookCount)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Poetry", list[0].Name)
	assert.EqualValues(t, 0, list[0].BookCount)

	page, total, err := repo.ListPage(ctx, 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, poetry.ID, page[0].ID)

	byName, err := repo.FindByName(ctx, "  science FICTION ")
	require.NoError(t, err)
	assert.Equal(t, scifi.ID, byName.ID)

	err = repo.Create(ctx, &models.Category{Name: "Poetry"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	count, err := repo.CountBooks(ctx, scifi.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, repo.Delete(ctx, poetry.ID))
	assert.True(t, repository.IsNotFound(repo.Delete(ctx, poetry.ID)))
}

func TestBookRepository_ListAndTop(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewBookRepository(db)
	ctx := context.Background()

	cat := &models.Category{Name: "Classics"}
	require.NoError(t, db.Create(cat).Error)

	emma := seedBook(t, db, "Emma", 1, &cat.ID)
	dune := seedBook(t, db, "Dune", 7, nil)
	seedBook(t, db, "Persuasion", 2, &cat.ID)
	require.NoError(t, repo.UpdateAverageRating(ctx, dune.ID, 4.5))

	books, total, err := repo.List(ctx, repository.BookFilter{CategoryID: &cat.ID}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, books, 2)
	assert.Equal(t, emma.ID, books[0].ID)
	require.NotNil(t, books[0].Category)
	assert.Equal(t, "Classics", books[0].Category.Name)

	found, total, err := repo.List(ctx, repository.BookFilter{Search: "DUN"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, dune.ID, found[0].ID)

	top, err := repo.Top(ctx, "average_rating DESC", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, dune.ID, top[0].ID)

	popular, err := repo.Top(ctx, "copies_total DESC", 10)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, dune.ID, popular[0].ID)
}

func TestBookRepository_UpdateWritesOnlyGivenColumns(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewBookRepository(db)
	ctx := context.Background()

	dune := seedBook(t, db, "Dune", 3, nil)
	// one copy went out after the caller read the book
	require.NoError(t, db.Model(&models.Book{}).Where("id = ?", dune.ID).UpdateColumn("copies_available", 2).Error)

	title := "Dune Messiah"
	require.NoError(t, repo.Update(ctx, dune.ID, repository.BookChanges{Fields: map[string]any{"title": title}}))
	got := reloadBook(t, db, dune.ID)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, 3, got.CopiesTotal)
	assert.Equal(t, 2, got.CopiesAvailable)

	total := 5
	require.NoError(t, repo.Update(ctx, dune.ID, repository.BookChanges{CopiesTotal: &total}))
	got = reloadBook(t, db, dune.ID)
	assert.Equal(t, 5, got.CopiesTotal)
	assert.Equal(t, 4, got.CopiesAvailable)

	total = 1
	require.NoError(t, repo.Update(ctx, dune.ID, repository.BookChanges{CopiesTotal: &total}))
	got = reloadBook(t, db, dune.ID)
	assert.Equal(t, 1, got.CopiesTotal)
	assert.Equal(t, 0, got.CopiesAvailable)

	err := repo.Update(ctx, 999, repository.BookChanges{Fields: map[string]any{"title": "x"}})
	assert.True(t, repository.IsNotFound(err))
}

func TestBookRepository_DeleteGuard(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewBookRepository(db)
	borrows := repository.NewBorrowRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	user := seedUser(t, db, "alice")
	book := seedBook(t, db, "Dune", 1, nil)
	require.NoError(t, borrows.Create(ctx, newBorrow(user.ID, book.ID, now), 0))
	require.NoError(t, db.Create(&models.Review{UserID: user.ID, BookID: book.ID, Rating: 5}).Error)

	assert.ErrorIs(t, repo.Delete(ctx, book.ID), repository.ErrBookHasOpenBorrows)

	_, err := borrows.Transition(ctx, user.ID, book.ID, func(b *models.Borrow) (bool, error) {
		b.ReturnDate = &now
		b.Status = models.BorrowReturned
		return true, nil
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, book.ID))
	var reviews int64
	require.NoError(t, db.Model(&models.Review{}).Where("book_id = ?", book.ID).Count(&reviews).Error)
	assert.Zero(t, reviews)
	assert.True(t, repository.IsNotFound(repo.Delete(ctx, book.ID)))
}
