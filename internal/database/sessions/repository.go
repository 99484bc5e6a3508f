// Package sessions provides database operations for reading session logs.
package sessions

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"booktracker/internal/database"
	"booktracker/internal/entities"
)

// Repository handles all reading session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Input is the validated set of fields accepted for creating or updating a
// reading session. A zero Date defaults to the current time.
type Input struct {
	BookID          uint      `json:"book_id"`
	Date            time.Time `json:"date"`
	PagesRead       int       `json:"pages_read"`
	DurationMinutes int       `json:"duration_minutes"`
	Note            string    `json:"note"`
}

// Validate checks field constraints before any write.
func (in *Input) Validate() error {
	in.Note = strings.TrimSpace(in.Note)
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}

	if in.BookID == 0 {
		return &database.ValidationError{Field: "book_id", Message: "is required"}
	}
	if in.PagesRead < 0 {
		return &database.ValidationError{Field: "pages_read", Message: "must not be negative"}
	}
	if in.DurationMinutes < 0 {
		return &database.ValidationError{Field: "duration_minutes", Message: "must not be negative"}
	}
	return nil
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	BookID uint
	From   time.Time
	To     time.Time
	Limit  int
}

// checkBookExists verifies the referenced book exists so the caller gets a
// ReferentialError instead of a raw foreign key failure.
func checkBookExists(tx *gorm.DB, bookID uint) error {
	var count int64
	if err := tx.Model(&entities.Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
		return database.WrapWriteError("reading session", err)
	}
	if count == 0 {
		return &database.ReferentialError{
			Entity:  "book",
			ID:      bookID,
			Message: "referenced book does not exist",
		}
	}
	return nil
}

// Create validates the input and inserts a new reading session.
func (r *Repository) Create(in Input) (*entities.ReadingSession, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var session *entities.ReadingSession
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkBookExists(tx, in.BookID); err != nil {
			return err
		}
		session = &entities.ReadingSession{
			BookID:          in.BookID,
			Date:            in.Date,
			PagesRead:       in.PagesRead,
			DurationMinutes: in.DurationMinutes,
			Note:            in.Note,
		}
		if err := tx.Create(session).Error; err != nil {
			return database.WrapWriteError("reading session", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Update validates the input and overwrites the session's fields.
func (r *Repository) Update(id uint, in Input) (*entities.ReadingSession, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var session entities.ReadingSession
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, id).Error; err != nil {
			return database.NotFoundOr("reading session", id, err)
		}
		if err := checkBookExists(tx, in.BookID); err != nil {
			return err
		}
		session.BookID = in.BookID
		session.Date = in.Date
		session.PagesRead = in.PagesRead
		session.DurationMinutes = in.DurationMinutes
		session.Note = in.Note
		if err := tx.Save(&session).Error; err != nil {
			return database.WrapWriteError("reading session", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a reading session. Sessions are deleted independently of
// their book.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.ReadingSession{}, id)
	if result.Error != nil {
		return database.WrapWriteError("reading session", result.Error)
	}
	if result.RowsAffected == 0 {
		return &database.NotFoundError{Entity: "reading session", ID: id}
	}
	return nil
}

// GetByID retrieves a single reading session.
func (r *Repository) GetByID(id uint) (*entities.ReadingSession, error) {
	var session entities.ReadingSession
	if err := r.db.First(&session, id).Error; err != nil {
		return nil, database.NotFoundOr("reading session", id, err)
	}
	return &session, nil
}

// List retrieves reading sessions matching the filter in insertion order.
func (r *Repository) List(f Filter) ([]entities.ReadingSession, error) {
	query := r.db.Model(&entities.ReadingSession{})

	if f.BookID != 0 {
		query = query.Where("book_id = ?", f.BookID)
	}
	if !f.From.IsZero() {
		query = query.Where("date >= ?", f.From)
	}
	if !f.To.IsZero() {
		query = query.Where("date < ?", f.To)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var sessions []entities.ReadingSession
	err := query.Order("id ASC").Find(&sessions).Error
	return sessions, err
}

// PagesReadBetween sums pages read over sessions dated within [from, to).
func (r *Repository) PagesReadBetween(from, to time.Time) (int64, error) {
	return r.sumBetween("pages_read", from, to)
}

// MinutesReadBetween sums logged minutes over sessions dated within [from, to).
func (r *Repository) MinutesReadBetween(from, to time.Time) (int64, error) {
	return r.sumBetween("duration_minutes", from, to)
}

func (r *Repository) sumBetween(column string, from, to time.Time) (int64, error) {
	var total *int64
	err := r.db.Model(&entities.ReadingSession{}).
		Select("SUM("+column+")").
		Where("date >= ? AND date < ?", from, to).
		Scan(&total).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// CountForBook returns the number of sessions logged against a book.
func (r *Repository) CountForBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingSession{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}
