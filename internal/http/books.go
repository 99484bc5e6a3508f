package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booktracker/internal/database/books"
	"booktracker/internal/entities"
)

type BooksController struct {
	store        BookStore
	sessionStore SessionStore
}

func NewBooksController(store BookStore, sessionStore SessionStore) *BooksController {
	return &BooksController{
		store:        store,
		sessionStore: sessionStore,
	}
}

func (controller *BooksController) List(c *gin.Context) {
	filter := books.Filter{
		Shelf:   entities.Shelf(c.Query("shelf")),
		Search:  c.Query("q"),
		OrderBy: c.Query("order_by"),
	}
	if from := c.Query("added_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			respondBadRequest(c, "added_from must be RFC3339")
			return
		}
		filter.AddedFrom = t
	}
	if to := c.Query("added_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			respondBadRequest(c, "added_to must be RFC3339")
			return
		}
		filter.AddedTo = t
	}

	listed, err := controller.store.List(filter)
	if err != nil {
		respondStoreError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": listed, "count": len(listed)})
}

func (controller *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.store.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "get book")
		return
	}

	sessionCount, err := controller.sessionStore.CountForBook(id)
	if err != nil {
		respondInternalError(c, err, "count sessions for book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book, "session_count": sessionCount})
}

func (controller *BooksController) Create(c *gin.Context) {
	var input books.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := controller.store.Create(input)
	if err != nil {
		respondStoreError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

func (controller *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input books.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := controller.store.Update(id, input)
	if err != nil {
		respondStoreError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete removes a book. Deleting a book that still has reading sessions
// fails with 409 unless ?cascade=true is passed.
func (controller *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	cascade := c.Query("cascade") == "true"

	if err := controller.store.Delete(id, cascade); err != nil {
		respondStoreError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
