package entities

import (
	"time"
)

type Shelf string

const (
	ShelfUnread   Shelf = "unread"
	ShelfReading  Shelf = "reading"
	ShelfFinished Shelf = "finished"
)

// Shelves lists all valid shelf values in display order.
var Shelves = []Shelf{ShelfUnread, ShelfReading, ShelfFinished}

func (s Shelf) Valid() bool {
	switch s {
	case ShelfUnread, ShelfReading, ShelfFinished:
		return true
	}
	return false
}

type GoalMetric string

const (
	GoalMetricPages GoalMetric = "pages"
	GoalMetricBooks GoalMetric = "books"
)

func (m GoalMetric) Valid() bool {
	return m == GoalMetricPages || m == GoalMetricBooks
}

type Book struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"index;size:512" json:"title"`
	Author     string    `gorm:"index;size:256" json:"author"`
	ISBN       string    `gorm:"size:20" json:"isbn,omitempty"`
	TotalPages int       `json:"total_pages"` // 0 means unknown
	Shelf      Shelf     `gorm:"size:20;default:'unread';index" json:"shelf"`
	AddedAt    time.Time `json:"added_at"`

	Sessions []ReadingSession `gorm:"foreignKey:BookID" json:"sessions,omitempty"`
}

type ReadingSession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BookID          uint      `gorm:"index;not null" json:"book_id"`
	Date            time.Time `gorm:"index" json:"date"`
	PagesRead       int       `json:"pages_read"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Note            string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
}

// Goal is a reading target over a fixed period. Progress is never stored;
// it is recomputed from books and sessions at read time.
type Goal struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:256" json:"name"`
	Metric      GoalMetric `gorm:"size:20" json:"metric"`
	Target      int        `json:"target"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

func (Goal) TableName() string {
	return "goals"
}
