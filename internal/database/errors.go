package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ValidationError reports a bad field value that blocked a write.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports an operation targeting a non-existent identifier.
type NotFoundError struct {
	Entity string `json:"entity"`
	ID     uint   `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ReferentialError reports a dependent-record conflict: either a delete
// blocked by dependents, or a write referencing a row that does not exist.
type ReferentialError struct {
	Entity  string `json:"entity"`
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Message)
}

// ConstraintViolation reports a storage-level uniqueness or integrity failure.
type ConstraintViolation struct {
	Entity string
	Err    error
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation on %s: %v", e.Entity, e.Err)
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// NotFoundOr converts gorm's record-not-found into a NotFoundError and wraps
// anything else so callers never see raw storage errors.
func NotFoundOr(entity string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}

// WrapWriteError maps sqlite constraint failures to ConstraintViolation.
func WrapWriteError(entity string, err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return &ConstraintViolation{Entity: entity, Err: serr}
	}
	return fmt.Errorf("failed to write %s: %w", entity, err)
}
