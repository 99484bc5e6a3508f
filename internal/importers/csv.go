// Package importers restores tracker rows from CSV backups. Rows are
// validated with the same rules as direct creates and committed one by one:
// a bad row is reported and skipped, it never aborts the batch.
package importers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"booktracker/internal/database"
	"booktracker/internal/database/books"
	"booktracker/internal/database/sessions"
	"booktracker/internal/entities"
	"booktracker/internal/exporters"
)

// BookCreator is the slice of the books repository the importer needs.
type BookCreator interface {
	Create(in books.Input) (*entities.Book, error)
}

// SessionCreator is the slice of the sessions repository the importer needs.
type SessionCreator interface {
	Create(in sessions.Input) (*entities.ReadingSession, error)
}

// RowError describes one rejected CSV row.
type RowError struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result summarizes an import run. BookIDs records, for a books import, which
// newly assigned identifier replaced each exported one; a following sessions
// import uses it to retarget the book_id column.
type Result struct {
	TotalRows int           `json:"total_rows"`
	Imported  int           `json:"imported"`
	Errors    []RowError    `json:"errors,omitempty"`
	BookIDs   map[uint]uint `json:"-"`
}

// dateFormats accepted in backup files, tried in order.
var dateFormats = []string{
	exporters.TimeFormat,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", value)
}

// headerIndex maps lowercased column names to their positions and verifies
// the required columns are present.
func headerIndex(reader *csv.Reader, required []string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, column := range required {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("missing required header: %s", column)
		}
	}
	return index, nil
}

func columnValue(record []string, index map[string]int, column string) string {
	if i, ok := index[column]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

// readErrorLine pulls the physical line number out of a csv parse error.
func readErrorLine(err error) int {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Line
	}
	return 0
}

// rowError converts a create failure into a RowError, pulling the offending
// field out of the structured error kinds.
func rowError(line int, err error) RowError {
	var validationErr *database.ValidationError
	if errors.As(err, &validationErr) {
		return RowError{Line: line, Field: validationErr.Field, Message: validationErr.Message}
	}
	var refErr *database.ReferentialError
	if errors.As(err, &refErr) {
		return RowError{Line: line, Field: "book_id", Message: refErr.Error()}
	}
	return RowError{Line: line, Message: err.Error()}
}

// ImportBooksCSV parses a books backup and creates a row per record. The
// store assigns fresh identifiers; the exported id column is kept only to
// fill Result.BookIDs so a sessions import can follow the renumbering.
// Files without an id column leave BookIDs nil.
func ImportBooksCSV(r io.Reader, store BookCreator) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	index, err := headerIndex(reader, []string{"title"})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if _, ok := index["id"]; ok {
		result.BookIDs = make(map[uint]uint)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.Errors = append(result.Errors, RowError{Line: readErrorLine(err), Message: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		result.TotalRows++

		in := books.Input{
			Title:  columnValue(record, index, "title"),
			Author: columnValue(record, index, "author"),
			ISBN:   columnValue(record, index, "isbn"),
			Shelf:  entities.Shelf(columnValue(record, index, "shelf")),
		}
		if pages := columnValue(record, index, "total_pages"); pages != "" {
			value, err := strconv.Atoi(pages)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Line: line, Field: "total_pages", Message: "must be an integer"})
				continue
			}
			in.TotalPages = value
		}
		if added := columnValue(record, index, "added_at"); added != "" {
			t, err := parseTimestamp(added)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Line: line, Field: "added_at", Message: err.Error()})
				continue
			}
			in.AddedAt = t
		}

		created, err := store.Create(in)
		if err != nil {
			result.Errors = append(result.Errors, rowError(line, err))
			continue
		}
		result.Imported++

		if result.BookIDs != nil {
			if oldID, err := strconv.ParseUint(columnValue(record, index, "id"), 10, 32); err == nil {
				result.BookIDs[uint(oldID)] = created.ID
			}
		}
	}

	return result, nil
}

// ImportSessionsCSV parses a sessions backup and creates a row per record.
// A non-nil bookIDs map (from a preceding ImportBooksCSV of the matching
// backup) translates exported book identifiers to the freshly assigned ones;
// rows referencing a book absent from the map are rejected rather than left
// pointing at whatever row now holds the old id. A nil map means the ids
// already match the target store.
func ImportSessionsCSV(r io.Reader, store SessionCreator, bookIDs map[uint]uint) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	index, err := headerIndex(reader, []string{"book_id", "pages_read"})
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.Errors = append(result.Errors, RowError{Line: readErrorLine(err), Message: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		result.TotalRows++

		bookID, err := strconv.ParseUint(columnValue(record, index, "book_id"), 10, 32)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Field: "book_id", Message: "must be an integer"})
			continue
		}
		targetID := uint(bookID)
		if bookIDs != nil {
			mapped, ok := bookIDs[targetID]
			if !ok {
				result.Errors = append(result.Errors, RowError{Line: line, Field: "book_id", Message: "no imported book matches this id"})
				continue
			}
			targetID = mapped
		}

		in := sessions.Input{
			BookID: targetID,
			Note:   columnValue(record, index, "note"),
		}
		if date := columnValue(record, index, "date"); date != "" {
			t, err := parseTimestamp(date)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Line: line, Field: "date", Message: err.Error()})
				continue
			}
			in.Date = t
		}
		if pages := columnValue(record, index, "pages_read"); pages != "" {
			value, err := strconv.Atoi(pages)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Line: line, Field: "pages_read", Message: "must be an integer"})
				continue
			}
			in.PagesRead = value
		}
		if minutes := columnValue(record, index, "duration_minutes"); minutes != "" {
			value, err := strconv.Atoi(minutes)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Line: line, Field: "duration_minutes", Message: "must be an integer"})
				continue
			}
			in.DurationMinutes = value
		}

		if _, err := store.Create(in); err != nil {
			result.Errors = append(result.Errors, rowError(line, err))
			continue
		}
		result.Imported++
	}

	return result, nil
}
