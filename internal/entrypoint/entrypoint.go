package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"booktracker/internal/config"
	"booktracker/internal/database"
	"booktracker/internal/database/books"
	"booktracker/internal/database/goals"
	"booktracker/internal/database/sessions"
	http_controllers "booktracker/internal/http"
	"booktracker/internal/metadata"
	"booktracker/internal/scheduler"
	"booktracker/internal/timer"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the backup scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Tracker v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path, cfg.Database.SeedSampleData)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookStore := books.NewRepository(db.DB)
	sessionStore := sessions.NewRepository(db.DB)
	goalStore := goals.NewRepository(db.DB)

	// Timer state lives in cookie sessions stored next to the tracker data
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for timer sessions: %v", err)
	}
	timerManager, err := timer.NewManager(sqlDB, cfg.Timer)
	if err != nil {
		log.Fatalf("Failed to initialize timer session manager: %v", err)
	}

	csrfSecret := []byte(cfg.Timer.CSRFSecret)
	if len(csrfSecret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret = secret
		log.Printf("Generated CSRF secret %s... (set CSRF_SECRET to persist)", hex.EncodeToString(secret[:4]))
	}

	var backupScheduler *scheduler.BackupScheduler
	var backupCtxCancel context.CancelFunc
	if cfg.Backup.Enabled {
		backupScheduler = scheduler.NewBackupScheduler(bookStore, sessionStore, cfg.Backup.Dir, cfg.Backup.Schedule)

		var backupCtx context.Context
		backupCtx, backupCtxCancel = context.WithCancel(context.Background())
		if err := backupScheduler.Start(backupCtx); err != nil {
			log.Fatalf("Failed to start backup scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		BookStore:     bookStore,
		SessionStore:  sessionStore,
		GoalStore:     goalStore,
		TimerManager:  timerManager,
		Metadata:      metadata.NewOpenLibraryClient(),
		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.Timer.SecureCookies,
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if backupScheduler != nil && backupCtxCancel != nil {
			backupScheduler.Stop()
			backupCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
