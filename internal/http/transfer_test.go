package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booktracker/internal/database/books"
	"booktracker/internal/database/sessions"
	"booktracker/internal/importers"
)

func transferRouter(controller *TransferController) *gin.Engine {
	router := gin.New()
	router.GET("/api/export/books.csv", controller.ExportBooks)
	router.GET("/api/export/sessions.csv", controller.ExportSessions)
	router.POST("/api/import/books", controller.ImportBooks)
	router.POST("/api/import/sessions", controller.ImportSessions)
	return router
}

func csvUpload(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("csv_file", "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestTransferController_ExportBooks(t *testing.T) {
	bookRepo, sessionRepo, cleanup := setupBooksTestDB(t)
	defer cleanup()

	_, err := bookRepo.Create(books.Input{Title: "Dune", Author: "Frank Herbert", TotalPages: 412})
	require.NoError(t, err)

	router := transferRouter(NewTransferController(bookRepo, sessionRepo))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/export/books.csv", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "title", records[0][1])
	assert.Equal(t, "Dune", records[1][1])
}

func TestTransferController_ExportSessions(t *testing.T) {
	bookRepo, sessionRepo, cleanup := setupBooksTestDB(t)
	defer cleanup()

	book, err := bookRepo.Create(books.Input{Title: "Dune"})
	require.NoError(t, err)
	_, err = sessionRepo.Create(sessions.Input{BookID: book.ID, PagesRead: 25, DurationMinutes: 60})
	require.NoError(t, err)

	router := transferRouter(NewTransferController(bookRepo, sessionRepo))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/export/sessions.csv", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "25", records[1][3])
}

func TestTransferController_ImportBooks(t *testing.T) {
	t.Run("imports uploaded rows", func(t *testing.T) {
		bookRepo, sessionRepo, cleanup := setupBooksTestDB(t)
		defer cleanup()

		router := transferRouter(NewTransferController(bookRepo, sessionRepo))

		body, contentType := csvUpload(t, "title,author,shelf\nDune,Frank Herbert,finished\n,,unread\n")
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/import/books", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result importers.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 1, result.Imported)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "title", result.Errors[0].Field)
	})

	t.Run("returns 400 without a file", func(t *testing.T) {
		bookRepo, sessionRepo, cleanup := setupBooksTestDB(t)
		defer cleanup()

		router := transferRouter(NewTransferController(bookRepo, sessionRepo))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/import/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 for missing headers", func(t *testing.T) {
		bookRepo, sessionRepo, cleanup := setupBooksTestDB(t)
		defer cleanup()

		router := transferRouter(NewTransferController(bookRepo, sessionRepo))

		body, contentType := csvUpload(t, "author,isbn\nHerbert,123\n")
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/import/books", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTransferController_ImportSessions(t *testing.T) {
	bookRepo, sessionRepo, cleanup := setupBooksTestDB(t)
	defer cleanup()

	book, err := bookRepo.Create(books.Input{Title: "Dune"})
	require.NoError(t, err)

	router := transferRouter(NewTransferController(bookRepo, sessionRepo))

	body, contentType := csvUpload(t, "book_id,date,pages_read\n1,2026-03-16,25\n99,2026-03-16,10\n")
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/import/sessions", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result importers.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)

	listed, err := sessionRepo.List(sessions.Filter{BookID: book.ID})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestTransferController_RestoreFollowsRenumbering(t *testing.T) {
	bookRepo, sessionRepo, cleanup := setupBooksTestDB(t)
	defer cleanup()

	router := transferRouter(NewTransferController(bookRepo, sessionRepo))

	// Backup taken from a store where book 1 had been deleted: the only
	// surviving book carries id 3 and its session points at it.
	body, contentType := csvUpload(t, "id,title,shelf\n3,Hyperion,reading\n")
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/import/books", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body, contentType = csvUpload(t, "book_id,pages_read\n3,40\n")
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/import/sessions", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result importers.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)

	restored, err := bookRepo.List(books.Filter{})
	require.NoError(t, err)
	require.Len(t, restored, 1)
	listed, err := sessionRepo.List(sessions.Filter{BookID: restored[0].ID})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
