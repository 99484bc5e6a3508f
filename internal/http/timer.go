package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booktracker/internal/database/sessions"
	"booktracker/internal/timer"
)

// TimerController drives the reading timer: start remembers a book and a
// start time in the cookie session, stop turns the elapsed time into a
// logged reading session row.
type TimerController struct {
	manager      *timer.Manager
	bookStore    BookStore
	sessionStore SessionStore
}

func NewTimerController(manager *timer.Manager, bookStore BookStore, sessionStore SessionStore) *TimerController {
	return &TimerController{
		manager:      manager,
		bookStore:    bookStore,
		sessionStore: sessionStore,
	}
}

type startTimerRequest struct {
	BookID uint `json:"book_id"`
}

type stopTimerRequest struct {
	PagesRead int    `json:"pages_read"`
	Note      string `json:"note"`
}

func (controller *TimerController) Start(c *gin.Context) {
	var req startTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	// Verify the book exists before remembering it
	if _, err := controller.bookStore.GetByID(req.BookID); err != nil {
		respondStoreError(c, err, "start timer")
		return
	}

	if err := controller.manager.Start(c.Request, req.BookID); err != nil {
		respondInternalError(c, err, "start timer")
		return
	}
	c.JSON(http.StatusOK, controller.manager.Current(c.Request))
}

func (controller *TimerController) Status(c *gin.Context) {
	active := controller.manager.Current(c.Request)
	if active == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":          true,
		"timer":           active,
		"elapsed_minutes": int(active.Elapsed.Minutes()),
	})
}

// Stop ends the running timer and logs a reading session for the elapsed
// time. The timer is cleared even if nothing was read.
func (controller *TimerController) Stop(c *gin.Context) {
	active := controller.manager.Current(c.Request)
	if active == nil {
		respondBadRequest(c, "no timer is running")
		return
	}

	var req stopTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, err := controller.sessionStore.Create(sessions.Input{
		BookID:          active.BookID,
		Date:            active.StartedAt,
		PagesRead:       req.PagesRead,
		DurationMinutes: int(time.Since(active.StartedAt).Minutes()),
		Note:            req.Note,
	})
	if err != nil {
		respondStoreError(c, err, "stop timer")
		return
	}

	controller.manager.Clear(c.Request)
	respondCreated(c, session)
}
