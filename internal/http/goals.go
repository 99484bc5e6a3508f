package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booktracker/internal/database/books"
	"booktracker/internal/database/goals"
	"booktracker/internal/database/sessions"
	"booktracker/internal/stats"
)

type GoalsController struct {
	store        GoalStore
	bookStore    BookStore
	sessionStore SessionStore
}

func NewGoalsController(store GoalStore, bookStore BookStore, sessionStore SessionStore) *GoalsController {
	return &GoalsController{
		store:        store,
		bookStore:    bookStore,
		sessionStore: sessionStore,
	}
}

func (controller *GoalsController) List(c *gin.Context) {
	listed, err := controller.store.List()
	if err != nil {
		respondStoreError(c, err, "list goals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": listed, "count": len(listed)})
}

func (controller *GoalsController) Create(c *gin.Context) {
	var input goals.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	goal, err := controller.store.Create(input)
	if err != nil {
		respondStoreError(c, err, "create goal")
		return
	}
	respondCreated(c, goal)
}

func (controller *GoalsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input goals.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	goal, err := controller.store.Update(id, input)
	if err != nil {
		respondStoreError(c, err, "update goal")
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (controller *GoalsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.store.Delete(id); err != nil {
		respondStoreError(c, err, "delete goal")
		return
	}
	respondSuccess(c, "goal deleted")
}

// Progress recomputes the goal's completion from the current book and
// session rows. Nothing is cached between calls.
func (controller *GoalsController) Progress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	goal, err := controller.store.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "get goal")
		return
	}

	allBooks, err := controller.bookStore.List(books.Filter{})
	if err != nil {
		respondInternalError(c, err, "list books for goal progress")
		return
	}
	allSessions, err := controller.sessionStore.List(sessions.Filter{})
	if err != nil {
		respondInternalError(c, err, "list sessions for goal progress")
		return
	}

	c.JSON(http.StatusOK, stats.GoalWithProgress{
		Goal:     *goal,
		Progress: stats.ProgressForGoal(*goal, allBooks, allSessions),
	})
}
