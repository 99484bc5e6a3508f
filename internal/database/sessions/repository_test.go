package sessions

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booktracker/internal/database"
	"booktracker/internal/database/books"
	"booktracker/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *books.Repository, func()) {
	t.Helper()
	dbPath := "./test_sessions_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath, false)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), books.NewRepository(db.DB), cleanup
}

func createTestBook(t *testing.T, repo *books.Repository) *entities.Book {
	t.Helper()
	book, err := repo.Create(books.Input{Title: "Test Book", Author: "Test Author"})
	require.NoError(t, err)
	return book
}

func TestRepository_Create(t *testing.T) {
	t.Run("creates session against existing book", func(t *testing.T) {
		repo, bookRepo, cleanup := setupTestRepo(t)
		defer cleanup()
		book := createTestBook(t, bookRepo)

		session, err := repo.Create(Input{BookID: book.ID, PagesRead: 25, DurationMinutes: 60, Note: "morning"})
		require.NoError(t, err)
		assert.NotZero(t, session.ID)
		assert.Equal(t, book.ID, session.BookID)
		assert.False(t, session.Date.IsZero())
	})

	t.Run("rejects session for missing book", func(t *testing.T) {
		repo, _, cleanup := setupTestRepo(t)
		defer cleanup()

		_, err := repo.Create(Input{BookID: 777, PagesRead: 10})
		var refErr *database.ReferentialError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, uint(777), refErr.ID)
	})

	t.Run("rejects missing book id", func(t *testing.T) {
		repo, _, cleanup := setupTestRepo(t)
		defer cleanup()

		_, err := repo.Create(Input{PagesRead: 10})
		var validationErr *database.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "book_id", validationErr.Field)
	})

	t.Run("rejects negative pages", func(t *testing.T) {
		repo, bookRepo, cleanup := setupTestRepo(t)
		defer cleanup()
		book := createTestBook(t, bookRepo)

		_, err := repo.Create(Input{BookID: book.ID, PagesRead: -5})
		var validationErr *database.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "pages_read", validationErr.Field)
	})

	t.Run("rejects negative duration", func(t *testing.T) {
		repo, bookRepo, cleanup := setupTestRepo(t)
		defer cleanup()
		book := createTestBook(t, bookRepo)

		_, err := repo.Create(Input{BookID: book.ID, DurationMinutes: -1})
		var validationErr *database.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "duration_minutes", validationErr.Field)
	})

	t.Run("zero pages with a note is allowed", func(t *testing.T) {
		repo, bookRepo, cleanup := setupTestRepo(t)
		defer cleanup()
		book := createTestBook(t, bookRepo)

		session, err := repo.Create(Input{BookID: book.ID, Note: "skimmed the preface"})
		require.NoError(t, err)
		assert.Zero(t, session.PagesRead)
	})
}

func TestRepository_Update(t *testing.T) {
	t.Run("overwrites fields", func(t *testing.T) {
		repo, bookRepo, cleanup := setupTestRepo(t)
		defer cleanup()
		book := createTestBook(t, bookRepo)

		session, err := repo.Create(Input{BookID: book.ID, PagesRead: 10})
		require.NoError(t, err)

		date := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		updated, err := repo.Update(session.ID, Input{BookID: book.ID, Date: date, PagesRead: 42, Note: "fixed"})
		require.NoError(t, err)
		assert.Equal(t, session.ID, updated.ID)
		assert.Equal(t, 42, updated.PagesRead)
		assert.Equal(t, "fixed", updated.Note)
	})

	t.Run("rejects retarget to missing book", func(t *testing.T) {
		repo, bookRepo, cleanup := setupTestRepo(t)
		defer cleanup()
		book := createTestBook(t, bookRepo)

		session, err := repo.Create(Input{BookID: book.ID, PagesRead: 10})
		require.NoError(t, err)

		_, err = repo.Update(session.ID, Input{BookID: 999, PagesRead: 10})
		var refErr *database.ReferentialError
		assert.ErrorAs(t, err, &refErr)
	})

	t.Run("returns not found for missing session", func(t *testing.T) {
		repo, bookRepo, cleanup := setupTestRepo(t)
		defer cleanup()
		book := createTestBook(t, bookRepo)

		_, err := repo.Update(555, Input{BookID: book.ID})
		var notFoundErr *database.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})
}

func TestRepository_Delete(t *testing.T) {
	t.Run("deletes independently of the book", func(t *testing.T) {
		repo, bookRepo, cleanup := setupTestRepo(t)
		defer cleanup()
		book := createTestBook(t, bookRepo)

		session, err := repo.Create(Input{BookID: book.ID, PagesRead: 10})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(session.ID))

		// Book is untouched
		_, err = bookRepo.GetByID(book.ID)
		assert.NoError(t, err)
	})

	t.Run("returns not found for missing session", func(t *testing.T) {
		repo, _, cleanup := setupTestRepo(t)
		defer cleanup()

		err := repo.Delete(8080)
		var notFoundErr *database.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})
}

func TestRepository_List(t *testing.T) {
	repo, bookRepo, cleanup := setupTestRepo(t)
	defer cleanup()
	first := createTestBook(t, bookRepo)
	second, err := bookRepo.Create(books.Input{Title: "Other Book"})
	require.NoError(t, err)

	jan := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)
	_, err = repo.Create(Input{BookID: first.ID, Date: jan, PagesRead: 10})
	require.NoError(t, err)
	_, err = repo.Create(Input{BookID: first.ID, Date: feb, PagesRead: 20})
	require.NoError(t, err)
	_, err = repo.Create(Input{BookID: second.ID, Date: feb, PagesRead: 30})
	require.NoError(t, err)

	t.Run("filters by book", func(t *testing.T) {
		listed, err := repo.List(Filter{BookID: second.ID})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, 30, listed[0].PagesRead)
	})

	t.Run("filters by date range", func(t *testing.T) {
		listed, err := repo.List(Filter{
			From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})

	t.Run("applies limit", func(t *testing.T) {
		listed, err := repo.List(Filter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})
}

func TestRepository_Aggregates(t *testing.T) {
	repo, bookRepo, cleanup := setupTestRepo(t)
	defer cleanup()
	book := createTestBook(t, bookRepo)

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(Input{BookID: book.ID, Date: jan, PagesRead: 10, DurationMinutes: 30})
	require.NoError(t, err)
	_, err = repo.Create(Input{BookID: book.ID, Date: feb, PagesRead: 25, DurationMinutes: 45})
	require.NoError(t, err)

	janStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	febStart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	marStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("sums pages within the range", func(t *testing.T) {
		pages, err := repo.PagesReadBetween(janStart, febStart)
		require.NoError(t, err)
		assert.Equal(t, int64(10), pages)

		pages, err = repo.PagesReadBetween(janStart, marStart)
		require.NoError(t, err)
		assert.Equal(t, int64(35), pages)
	})

	t.Run("sums minutes within the range", func(t *testing.T) {
		minutes, err := repo.MinutesReadBetween(febStart, marStart)
		require.NoError(t, err)
		assert.Equal(t, int64(45), minutes)
	})

	t.Run("empty range sums to zero", func(t *testing.T) {
		pages, err := repo.PagesReadBetween(marStart, marStart.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.Zero(t, pages)
	})

	t.Run("reading aggregates twice gives the same result", func(t *testing.T) {
		first, err := repo.PagesReadBetween(janStart, marStart)
		require.NoError(t, err)
		second, err := repo.PagesReadBetween(janStart, marStart)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
