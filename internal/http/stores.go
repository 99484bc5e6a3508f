package http

import (
	"time"

	"booktracker/internal/database/books"
	"booktracker/internal/database/goals"
	"booktracker/internal/database/sessions"
	"booktracker/internal/entities"
)

// This file consolidates the store interfaces consumed by HTTP controllers.
// Each controller depends only on the slice of the access layer it uses.

// BookStore provides the book operations exposed over HTTP.
type BookStore interface {
	Create(in books.Input) (*entities.Book, error)
	Update(id uint, in books.Input) (*entities.Book, error)
	Delete(id uint, cascade bool) error
	GetByID(id uint) (*entities.Book, error)
	List(f books.Filter) ([]entities.Book, error)
	CountByShelf() (map[entities.Shelf]int64, error)
}

// SessionStore provides the reading session operations exposed over HTTP.
type SessionStore interface {
	Create(in sessions.Input) (*entities.ReadingSession, error)
	Update(id uint, in sessions.Input) (*entities.ReadingSession, error)
	Delete(id uint) error
	GetByID(id uint) (*entities.ReadingSession, error)
	List(f sessions.Filter) ([]entities.ReadingSession, error)
	PagesReadBetween(from, to time.Time) (int64, error)
	CountForBook(bookID uint) (int64, error)
}

// GoalStore provides the goal operations exposed over HTTP.
type GoalStore interface {
	Create(in goals.Input) (*entities.Goal, error)
	Update(id uint, in goals.Input) (*entities.Goal, error)
	Delete(id uint) error
	GetByID(id uint) (*entities.Goal, error)
	List() ([]entities.Goal, error)
}
