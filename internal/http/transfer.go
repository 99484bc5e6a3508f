package http

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"booktracker/internal/database/books"
	"booktracker/internal/database/sessions"
	"booktracker/internal/exporters"
	"booktracker/internal/importers"
)

// TransferController serves CSV backup export and restore. A restore is two
// requests, books then sessions; the book-id renumbering from the books
// import is kept so the sessions import can follow it.
type TransferController struct {
	bookStore    BookStore
	sessionStore SessionStore

	mu      sync.Mutex
	bookIDs map[uint]uint
}

func NewTransferController(bookStore BookStore, sessionStore SessionStore) *TransferController {
	return &TransferController{
		bookStore:    bookStore,
		sessionStore: sessionStore,
	}
}

func csvAttachment(c *gin.Context, name string) {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
}

func (controller *TransferController) ExportBooks(c *gin.Context) {
	listed, err := controller.bookStore.List(books.Filter{})
	if err != nil {
		respondInternalError(c, err, "export books")
		return
	}

	csvAttachment(c, "books_export")
	c.Status(http.StatusOK)
	if err := exporters.WriteBooksCSV(c.Writer, listed); err != nil {
		// Headers are already out; nothing left to do but log.
		respondInternalError(c, err, "write books csv")
	}
}

func (controller *TransferController) ExportSessions(c *gin.Context) {
	listed, err := controller.sessionStore.List(sessions.Filter{})
	if err != nil {
		respondInternalError(c, err, "export sessions")
		return
	}

	csvAttachment(c, "sessions_export")
	c.Status(http.StatusOK)
	if err := exporters.WriteSessionsCSV(c.Writer, listed); err != nil {
		respondInternalError(c, err, "write sessions csv")
	}
}

// ImportBooks restores books from an uploaded CSV. Rows commit one by one;
// the response reports the imported count and each rejected row.
func (controller *TransferController) ImportBooks(c *gin.Context) {
	file, _, err := c.Request.FormFile("csv_file")
	if err != nil {
		respondBadRequest(c, "no CSV file provided")
		return
	}
	defer file.Close()

	result, err := importers.ImportBooksCSV(file, controller.bookStore)
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("failed to parse CSV: %v", err))
		return
	}

	controller.mu.Lock()
	controller.bookIDs = result.BookIDs
	controller.mu.Unlock()

	c.JSON(http.StatusOK, result)
}

// ImportSessions restores reading sessions from an uploaded CSV. When a books
// import happened earlier, its id renumbering is applied; otherwise book_id
// values are taken as current store ids.
func (controller *TransferController) ImportSessions(c *gin.Context) {
	file, _, err := c.Request.FormFile("csv_file")
	if err != nil {
		respondBadRequest(c, "no CSV file provided")
		return
	}
	defer file.Close()

	controller.mu.Lock()
	bookIDs := controller.bookIDs
	controller.mu.Unlock()

	result, err := importers.ImportSessionsCSV(file, controller.sessionStore, bookIDs)
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("failed to parse CSV: %v", err))
		return
	}
	c.JSON(http.StatusOK, result)
}
