package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"booktracker/internal/database/books"
	"booktracker/internal/metadata"
)

// MetadataProvider is the slice of the metadata client controllers use.
type MetadataProvider interface {
	LookupISBN(ctx context.Context, isbn string) (*metadata.BookDetails, error)
	Search(ctx context.Context, title, author string) (*metadata.BookDetails, error)
}

// MetadataController serves external book lookups: a plain lookup to prefill
// the add-book form, and an enrich call that fills a book's missing fields
// in place.
type MetadataController struct {
	provider  MetadataProvider
	bookStore BookStore
}

func NewMetadataController(provider MetadataProvider, bookStore BookStore) *MetadataController {
	return &MetadataController{
		provider:  provider,
		bookStore: bookStore,
	}
}

// Lookup fetches book details by ISBN, or by title (and optional author)
// when no ISBN is given.
func (controller *MetadataController) Lookup(c *gin.Context) {
	isbn := c.Query("isbn")
	title := c.Query("title")

	var (
		details *metadata.BookDetails
		err     error
	)
	switch {
	case isbn != "":
		details, err = controller.provider.LookupISBN(c.Request.Context(), isbn)
	case title != "":
		details, err = controller.provider.Search(c.Request.Context(), title, c.Query("author"))
	default:
		respondBadRequest(c, "isbn or title query parameter is required")
		return
	}
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: "lookup"})
		return
	}
	c.JSON(http.StatusOK, details)
}

// Enrich fills a book's empty author, ISBN and page count from Open Library.
// Fields the user already set are left alone.
func (controller *MetadataController) Enrich(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.bookStore.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "enrich book")
		return
	}

	var details *metadata.BookDetails
	if book.ISBN != "" {
		details, err = controller.provider.LookupISBN(c.Request.Context(), book.ISBN)
	} else {
		details, err = controller.provider.Search(c.Request.Context(), book.Title, book.Author)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: "lookup"})
		return
	}

	input := books.Input{
		Title:      book.Title,
		Author:     book.Author,
		ISBN:       book.ISBN,
		TotalPages: book.TotalPages,
		Shelf:      book.Shelf,
	}
	if input.Author == "" {
		input.Author = details.Author
	}
	if input.ISBN == "" {
		input.ISBN = details.ISBN
	}
	if input.TotalPages == 0 {
		input.TotalPages = details.PageCount
	}

	updated, err := controller.bookStore.Update(book.ID, input)
	if err != nil {
		respondStoreError(c, err, "enrich book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": updated, "details": details})
}
