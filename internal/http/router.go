package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booktracker/internal/database"
	"booktracker/internal/timer"
)

// RouterConfig carries all router dependencies. Controllers receive the
// narrow store interfaces they need, which keeps handlers testable.
type RouterConfig struct {
	Database     *database.Database
	BookStore    BookStore
	SessionStore SessionStore
	GoalStore    GoalStore
	TimerManager *timer.Manager
	Metadata     MetadataProvider

	CSRFSecret    []byte
	SecureCookies bool
	Version       string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before the session middleware so the session context is
	// layered on top of the request CSRF replaces
	if len(cfg.CSRFSecret) > 0 {
		router.Use(CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.TimerManager != nil {
		router.Use(cfg.TimerManager.SessionLoadSave())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.BookStore, cfg.SessionStore)
	sessionsController := NewSessionsController(cfg.SessionStore)
	goalsController := NewGoalsController(cfg.GoalStore, cfg.BookStore, cfg.SessionStore)
	dashboardController := NewDashboardController(cfg.BookStore, cfg.SessionStore, cfg.GoalStore)
	transferController := NewTransferController(cfg.BookStore, cfg.SessionStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// CSRF token for clients that write
	if len(cfg.CSRFSecret) > 0 {
		router.GET("/api/csrf", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"token": GetCSRFToken(c)})
		})
	}

	// Books endpoints
	router.GET("/api/books", booksController.List)
	router.POST("/api/books", booksController.Create)
	router.GET("/api/books/:id", booksController.Get)
	router.PUT("/api/books/:id", booksController.Update)
	router.DELETE("/api/books/:id", booksController.Delete)

	// Reading session endpoints
	router.GET("/api/sessions", sessionsController.List)
	router.POST("/api/sessions", sessionsController.Create)
	router.GET("/api/sessions/:id", sessionsController.Get)
	router.PUT("/api/sessions/:id", sessionsController.Update)
	router.DELETE("/api/sessions/:id", sessionsController.Delete)

	// Goal endpoints
	router.GET("/api/goals", goalsController.List)
	router.POST("/api/goals", goalsController.Create)
	router.PUT("/api/goals/:id", goalsController.Update)
	router.DELETE("/api/goals/:id", goalsController.Delete)
	router.GET("/api/goals/:id/progress", goalsController.Progress)

	// Dashboard endpoint
	router.GET("/api/dashboard", dashboardController.Summary)

	// Open Library lookups
	if cfg.Metadata != nil {
		metadataController := NewMetadataController(cfg.Metadata, cfg.BookStore)
		router.GET("/api/metadata", metadataController.Lookup)
		router.POST("/api/books/:id/enrich", metadataController.Enrich)
	}

	// Backup endpoints
	router.GET("/api/export/books.csv", transferController.ExportBooks)
	router.GET("/api/export/sessions.csv", transferController.ExportSessions)
	router.POST("/api/import/books", transferController.ImportBooks)
	router.POST("/api/import/sessions", transferController.ImportSessions)

	// Reading timer endpoints
	if cfg.TimerManager != nil {
		timerController := NewTimerController(cfg.TimerManager, cfg.BookStore, cfg.SessionStore)
		router.POST("/api/timer/start", timerController.Start)
		router.GET("/api/timer", timerController.Status)
		router.POST("/api/timer/stop", timerController.Stop)
	}

	return router
}
