package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booktracker/internal/database/books"
	"booktracker/internal/metadata"
)

// fakeMetadataProvider returns canned details without touching the network.
type fakeMetadataProvider struct {
	details *metadata.BookDetails
	err     error
}

func (f *fakeMetadataProvider) LookupISBN(ctx context.Context, isbn string) (*metadata.BookDetails, error) {
	return f.details, f.err
}

func (f *fakeMetadataProvider) Search(ctx context.Context, title, author string) (*metadata.BookDetails, error) {
	return f.details, f.err
}

func metadataRouter(controller *MetadataController) *gin.Engine {
	router := gin.New()
	router.GET("/api/metadata", controller.Lookup)
	router.POST("/api/books/:id/enrich", controller.Enrich)
	return router
}

func TestMetadataController_Lookup(t *testing.T) {
	t.Run("returns details for an isbn", func(t *testing.T) {
		bookRepo, _, cleanup := setupBooksTestDB(t)
		defer cleanup()

		provider := &fakeMetadataProvider{details: &metadata.BookDetails{
			Title:     "Dune",
			Author:    "Frank Herbert",
			ISBN:      "9780441013593",
			PageCount: 412,
		}}
		router := metadataRouter(NewMetadataController(provider, bookRepo))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/metadata?isbn=9780441013593", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var details metadata.BookDetails
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
		assert.Equal(t, "Dune", details.Title)
		assert.Equal(t, 412, details.PageCount)
	})

	t.Run("requires isbn or title", func(t *testing.T) {
		bookRepo, _, cleanup := setupBooksTestDB(t)
		defer cleanup()

		router := metadataRouter(NewMetadataController(&fakeMetadataProvider{}, bookRepo))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/metadata", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps lookup failures to 404", func(t *testing.T) {
		bookRepo, _, cleanup := setupBooksTestDB(t)
		defer cleanup()

		provider := &fakeMetadataProvider{err: fmt.Errorf("ISBN not found: 123")}
		router := metadataRouter(NewMetadataController(provider, bookRepo))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/metadata?isbn=123", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMetadataController_Enrich(t *testing.T) {
	t.Run("fills only the empty fields", func(t *testing.T) {
		bookRepo, _, cleanup := setupBooksTestDB(t)
		defer cleanup()

		book, err := bookRepo.Create(books.Input{Title: "Dune", Author: "Frank Herbert"})
		require.NoError(t, err)

		provider := &fakeMetadataProvider{details: &metadata.BookDetails{
			Author:    "Someone Else",
			ISBN:      "9780441013593",
			PageCount: 412,
		}}
		router := metadataRouter(NewMetadataController(provider, bookRepo))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/books/%d/enrich", book.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		updated, err := bookRepo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Frank Herbert", updated.Author) // kept
		assert.Equal(t, "9780441013593", updated.ISBN)   // filled
		assert.Equal(t, 412, updated.TotalPages)         // filled
	})

	t.Run("returns 404 for missing book", func(t *testing.T) {
		bookRepo, _, cleanup := setupBooksTestDB(t)
		defer cleanup()

		router := metadataRouter(NewMetadataController(&fakeMetadataProvider{}, bookRepo))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/99/enrich", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
