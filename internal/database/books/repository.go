// Package books provides database operations for the book catalog.
package books

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"booktracker/internal/database"
	"booktracker/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Input is the validated set of fields accepted for creating or updating a
// book. AddedAt is honored on create when set (backup restores carry the
// original date); a zero value means "now". It is never changed afterwards
// and is not accepted over the JSON API.
type Input struct {
	Title      string         `json:"title"`
	Author     string         `json:"author"`
	ISBN       string         `json:"isbn"`
	TotalPages int            `json:"total_pages"`
	Shelf      entities.Shelf `json:"shelf"`
	AddedAt    time.Time      `json:"-"`
}

// Validate checks field constraints before any write. An empty shelf defaults
// to unread.
func (in *Input) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	if in.Shelf == "" {
		in.Shelf = entities.ShelfUnread
	}

	if in.Title == "" {
		return &database.ValidationError{Field: "title", Message: "must not be empty"}
	}
	if in.TotalPages < 0 {
		return &database.ValidationError{Field: "total_pages", Message: "must not be negative (use 0 for unknown)"}
	}
	if !in.Shelf.Valid() {
		return &database.ValidationError{Field: "shelf", Message: "must be one of: unread, reading, finished"}
	}
	return nil
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Shelf     entities.Shelf
	Search    string // case-insensitive match against title or author
	AddedFrom time.Time
	AddedTo   time.Time
	OrderBy   string // title, author, added_at or shelf; default is insertion order
}

var orderColumns = map[string]string{
	"title":    "title COLLATE NOCASE ASC",
	"author":   "author COLLATE NOCASE ASC",
	"added_at": "added_at ASC",
	"shelf":    "shelf ASC",
}

// Create validates the input and inserts a new book.
func (r *Repository) Create(in Input) (*entities.Book, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	addedAt := in.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}
	book := &entities.Book{
		Title:      in.Title,
		Author:     in.Author,
		ISBN:       in.ISBN,
		TotalPages: in.TotalPages,
		Shelf:      in.Shelf,
		AddedAt:    addedAt,
	}
	if err := r.db.Create(book).Error; err != nil {
		return nil, database.WrapWriteError("book", err)
	}
	return book, nil
}

// Update validates the input and overwrites the book's mutable fields.
// ID and AddedAt are immutable.
func (r *Repository) Update(id uint, in Input) (*entities.Book, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, database.NotFoundOr("book", id, err)
	}

	book.Title = in.Title
	book.Author = in.Author
	book.ISBN = in.ISBN
	book.TotalPages = in.TotalPages
	book.Shelf = in.Shelf
	if err := r.db.Save(&book).Error; err != nil {
		return nil, database.WrapWriteError("book", err)
	}
	return &book, nil
}

// Delete removes a book. Without cascade, deletion is blocked with a
// ReferentialError while reading sessions still reference the book; with
// cascade, the sessions are removed in the same transaction.
func (r *Repository) Delete(id uint, cascade bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return database.NotFoundOr("book", id, err)
		}

		var dependents int64
		if err := tx.Model(&entities.ReadingSession{}).Where("book_id = ?", id).Count(&dependents).Error; err != nil {
			return database.WrapWriteError("book", err)
		}
		if dependents > 0 {
			if !cascade {
				return &database.ReferentialError{
					Entity:  "book",
					ID:      id,
					Message: "has dependent reading sessions; delete them first or request cascade",
				}
			}
			if err := tx.Where("book_id = ?", id).Delete(&entities.ReadingSession{}).Error; err != nil {
				return database.WrapWriteError("reading session", err)
			}
		}

		if err := tx.Delete(&entities.Book{}, id).Error; err != nil {
			return database.WrapWriteError("book", err)
		}
		return nil
	})
}

// GetByID retrieves a book with its reading sessions.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Sessions", func(db *gorm.DB) *gorm.DB {
		return db.Order("date ASC, id ASC")
	}).First(&book, id).Error
	if err != nil {
		return nil, database.NotFoundOr("book", id, err)
	}
	return &book, nil
}

// List retrieves books matching the filter, in insertion order unless an
// explicit order column is given.
func (r *Repository) List(f Filter) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{})

	if f.Shelf != "" {
		if !f.Shelf.Valid() {
			return nil, &database.ValidationError{Field: "shelf", Message: "must be one of: unread, reading, finished"}
		}
		query = query.Where("shelf = ?", f.Shelf)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern)
	}
	if !f.AddedFrom.IsZero() {
		query = query.Where("added_at >= ?", f.AddedFrom)
	}
	if !f.AddedTo.IsZero() {
		query = query.Where("added_at < ?", f.AddedTo)
	}

	order := "id ASC"
	if f.OrderBy != "" {
		column, ok := orderColumns[f.OrderBy]
		if !ok {
			return nil, &database.ValidationError{Field: "order_by", Message: "must be one of: title, author, added_at, shelf"}
		}
		order = column
	}

	var books []entities.Book
	err := query.Order(order).Find(&books).Error
	return books, err
}

// CountByShelf returns the number of books on each shelf.
func (r *Repository) CountByShelf() (map[entities.Shelf]int64, error) {
	type shelfCount struct {
		Shelf entities.Shelf
		Count int64
	}
	var rows []shelfCount
	err := r.db.Model(&entities.Book{}).
		Select("shelf, COUNT(*) as count").
		Group("shelf").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entities.Shelf]int64, len(entities.Shelves))
	for _, shelf := range entities.Shelves {
		counts[shelf] = 0
	}
	for _, row := range rows {
		counts[row.Shelf] = row.Count
	}
	return counts, nil
}

// CountFinished returns the number of books on the finished shelf.
func (r *Repository) CountFinished() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("shelf = ?", entities.ShelfFinished).Count(&count).Error
	return count, err
}
