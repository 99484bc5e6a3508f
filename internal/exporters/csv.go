// Package exporters serializes tracker rows to CSV for backups. One file per
// entity, header row first, column order matching the entity's attributes.
package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"booktracker/internal/entities"
)

// Column orders are part of the backup format; importers rely on the names,
// not the positions.
var (
	BookColumns    = []string{"id", "title", "author", "isbn", "total_pages", "shelf", "added_at"}
	SessionColumns = []string{"id", "book_id", "date", "pages_read", "duration_minutes", "note"}
)

// TimeFormat is used for all timestamps in CSV backups.
const TimeFormat = time.RFC3339

// WriteBooksCSV writes all books as CSV.
func WriteBooksCSV(w io.Writer, books []entities.Book) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(BookColumns); err != nil {
		return fmt.Errorf("failed to write books header: %w", err)
	}
	for _, b := range books {
		record := []string{
			strconv.FormatUint(uint64(b.ID), 10),
			b.Title,
			b.Author,
			b.ISBN,
			strconv.Itoa(b.TotalPages),
			string(b.Shelf),
			b.AddedAt.UTC().Format(TimeFormat),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write book %d: %w", b.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSessionsCSV writes all reading sessions as CSV.
func WriteSessionsCSV(w io.Writer, sessions []entities.ReadingSession) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(SessionColumns); err != nil {
		return fmt.Errorf("failed to write sessions header: %w", err)
	}
	for _, s := range sessions {
		record := []string{
			strconv.FormatUint(uint64(s.ID), 10),
			strconv.FormatUint(uint64(s.BookID), 10),
			s.Date.UTC().Format(TimeFormat),
			strconv.Itoa(s.PagesRead),
			strconv.Itoa(s.DurationMinutes),
			s.Note,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write session %d: %w", s.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
