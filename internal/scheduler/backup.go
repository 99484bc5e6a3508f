// Package scheduler runs periodic CSV backup snapshots of the tracker data.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"booktracker/internal/database/books"
	"booktracker/internal/database/sessions"
	"booktracker/internal/entities"
	"booktracker/internal/exporters"
)

// BookLister is the slice of the books repository the scheduler needs.
type BookLister interface {
	List(f books.Filter) ([]entities.Book, error)
}

// SessionLister is the slice of the sessions repository the scheduler needs.
type SessionLister interface {
	List(f sessions.Filter) ([]entities.ReadingSession, error)
}

// BackupScheduler writes timestamped books/sessions CSV snapshots to a
// directory on a cron schedule.
type BackupScheduler struct {
	bookStore    BookLister
	sessionStore SessionLister
	dir          string
	schedule     string

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewBackupScheduler creates a new scheduler instance.
func NewBackupScheduler(bookStore BookLister, sessionStore SessionLister, dir, schedule string) *BackupScheduler {
	return &BackupScheduler{
		bookStore:    bookStore,
		sessionStore: sessionStore,
		dir:          dir,
		schedule:     schedule,
		cron:         cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory %s: %w", s.dir, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunBackup(); err != nil {
			log.Printf("Backup scheduler: backup failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup job with '%s': %w", s.schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("Backup scheduler: started with schedule '%s', writing to %s", s.schedule, s.dir)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running backup.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Backup scheduler: stopped")
}

// RunBackup writes one snapshot pair immediately.
func (s *BackupScheduler) RunBackup() error {
	stamp := time.Now().Format("2006-01-02_150405")

	allBooks, err := s.bookStore.List(books.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load books: %w", err)
	}
	if err := s.writeSnapshot(fmt.Sprintf("books_%s.csv", stamp), func(f *os.File) error {
		return exporters.WriteBooksCSV(f, allBooks)
	}); err != nil {
		return err
	}

	allSessions, err := s.sessionStore.List(sessions.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	if err := s.writeSnapshot(fmt.Sprintf("sessions_%s.csv", stamp), func(f *os.File) error {
		return exporters.WriteSessionsCSV(f, allSessions)
	}); err != nil {
		return err
	}

	log.Printf("Backup scheduler: wrote snapshot %s (%d books, %d sessions)", stamp, len(allBooks), len(allSessions))
	return nil
}

func (s *BackupScheduler) writeSnapshot(name string, write func(*os.File) error) error {
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
