package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booktracker/internal/database/books"
	"booktracker/internal/database/sessions"
	"booktracker/internal/stats"
)

type DashboardController struct {
	bookStore    BookStore
	sessionStore SessionStore
	goalStore    GoalStore
}

func NewDashboardController(bookStore BookStore, sessionStore SessionStore, goalStore GoalStore) *DashboardController {
	return &DashboardController{
		bookStore:    bookStore,
		sessionStore: sessionStore,
		goalStore:    goalStore,
	}
}

// Summary returns the dashboard figures, recomputed from the current rows on
// every call.
func (controller *DashboardController) Summary(c *gin.Context) {
	allBooks, err := controller.bookStore.List(books.Filter{})
	if err != nil {
		respondInternalError(c, err, "list books for dashboard")
		return
	}
	allSessions, err := controller.sessionStore.List(sessions.Filter{})
	if err != nil {
		respondInternalError(c, err, "list sessions for dashboard")
		return
	}
	allGoals, err := controller.goalStore.List()
	if err != nil {
		respondInternalError(c, err, "list goals for dashboard")
		return
	}

	c.JSON(http.StatusOK, stats.BuildSummary(time.Now(), allBooks, allSessions, allGoals))
}
