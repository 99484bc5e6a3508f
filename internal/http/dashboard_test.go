package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booktracker/internal/database/books"
	"booktracker/internal/database/goals"
	"booktracker/internal/database/sessions"
	"booktracker/internal/entities"
	"booktracker/internal/stats"
)

func TestDashboardController_Summary(t *testing.T) {
	goalRepo, bookRepo, sessionRepo, cleanup := setupGoalsTestDB(t)
	defer cleanup()

	_, err := bookRepo.Create(books.Input{Title: "Dune", Shelf: entities.ShelfFinished})
	require.NoError(t, err)
	book, err := bookRepo.Create(books.Input{Title: "Hyperion", Shelf: entities.ShelfReading})
	require.NoError(t, err)
	_, err = sessionRepo.Create(sessions.Input{BookID: book.ID, PagesRead: 30, DurationMinutes: 90})
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = goalRepo.Create(goals.Input{
		Name:        "This year",
		Metric:      "pages",
		Target:      1000,
		PeriodStart: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(now.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	router := gin.New()
	controller := NewDashboardController(bookRepo, sessionRepo, goalRepo)
	router.GET("/api/dashboard", controller.Summary)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var summary stats.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalBooks)
	assert.Equal(t, 1, summary.TotalSessions)
	assert.Equal(t, 1, summary.ShelfCounts[entities.ShelfFinished])
	assert.Equal(t, 1, summary.ShelfCounts[entities.ShelfReading])
	assert.Equal(t, 30, summary.PagesThisYear)
	assert.InDelta(t, 1.5, summary.HoursLogged, 0.001)
	require.Len(t, summary.Goals, 1)
	assert.Equal(t, 30, summary.Goals[0].Progress.Current)
}

func TestDashboardController_Summary_Empty(t *testing.T) {
	goalRepo, bookRepo, sessionRepo, cleanup := setupGoalsTestDB(t)
	defer cleanup()

	router := gin.New()
	controller := NewDashboardController(bookRepo, sessionRepo, goalRepo)
	router.GET("/api/dashboard", controller.Summary)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var summary stats.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Zero(t, summary.TotalBooks)
	assert.Zero(t, summary.TotalSessions)
	assert.Empty(t, summary.Goals)
}
