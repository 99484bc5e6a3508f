package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"booktracker/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (or creates) the tracker database at dbPath and migrates
// the schema. Reopening against an existing matching schema is a no-op.
// When seedSampleData is true, an empty database gets a few starter rows.
func NewDatabase(dbPath string, seedSampleData bool) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.ReadingSession{},
		&entities.Goal{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if seedSampleData {
		if err := database.seedSampleData(); err != nil {
			return nil, fmt.Errorf("failed to seed sample data: %w", err)
		}
	}

	log.Printf("Database initialized at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// seedSampleData populates an empty database with a few starter rows so the
// dashboard has something to show on first run. Non-empty databases are left
// untouched.
func (d *Database) seedSampleData() error {
	var bookCount int64
	if err := d.DB.Model(&entities.Book{}).Count(&bookCount).Error; err != nil {
		return err
	}
	if bookCount > 0 {
		return nil
	}

	now := time.Now().UTC()
	books := []entities.Book{
		{Title: "Atomic Habits", Author: "James Clear", ISBN: "9780735211292", TotalPages: 320, Shelf: entities.ShelfReading, AddedAt: now},
		{Title: "Project Hail Mary", Author: "Andy Weir", ISBN: "9780593135204", TotalPages: 496, Shelf: entities.ShelfUnread, AddedAt: now},
		{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", ISBN: "9780201616224", TotalPages: 352, Shelf: entities.ShelfFinished, AddedAt: now},
	}
	if err := d.DB.Create(&books).Error; err != nil {
		return err
	}

	session := entities.ReadingSession{
		BookID:          books[0].ID,
		Date:            now,
		PagesRead:       25,
		DurationMinutes: 60,
		Note:            "Morning session",
	}
	if err := d.DB.Create(&session).Error; err != nil {
		return err
	}

	goal := entities.Goal{
		Name:        fmt.Sprintf("Read 24 books in %d", now.Year()),
		Metric:      entities.GoalMetricBooks,
		Target:      24,
		PeriodStart: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(now.Year(), time.December, 31, 23, 59, 59, 0, time.UTC),
		CreatedAt:   now,
	}
	if err := d.DB.Create(&goal).Error; err != nil {
		return err
	}

	log.Printf("Seeded sample data: %d books, 1 session, 1 goal", len(books))
	return nil
}
