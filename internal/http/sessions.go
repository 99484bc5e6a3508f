package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"booktracker/internal/database/sessions"
)

type SessionsController struct {
	store SessionStore
}

func NewSessionsController(store SessionStore) *SessionsController {
	return &SessionsController{store: store}
}

func (controller *SessionsController) List(c *gin.Context) {
	var filter sessions.Filter

	if bookID := c.Query("book_id"); bookID != "" {
		id, err := strconv.ParseUint(bookID, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid book_id")
			return
		}
		filter.BookID = uint(id)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			respondBadRequest(c, "from must be RFC3339")
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			respondBadRequest(c, "to must be RFC3339")
			return
		}
		filter.To = t
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		filter.Limit = n
	}

	listed, err := controller.store.List(filter)
	if err != nil {
		respondStoreError(c, err, "list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": listed, "count": len(listed)})
}

func (controller *SessionsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := controller.store.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "get session")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (controller *SessionsController) Create(c *gin.Context) {
	var input sessions.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, err := controller.store.Create(input)
	if err != nil {
		respondStoreError(c, err, "create session")
		return
	}
	respondCreated(c, session)
}

func (controller *SessionsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input sessions.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, err := controller.store.Update(id, input)
	if err != nil {
		respondStoreError(c, err, "update session")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (controller *SessionsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.store.Delete(id); err != nil {
		respondStoreError(c, err, "delete session")
		return
	}
	respondSuccess(c, "session deleted")
}
