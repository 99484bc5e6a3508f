// Package goals provides database operations for reading goals.
package goals

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"booktracker/internal/database"
	"booktracker/internal/entities"
)

// Repository handles all goal database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new goals repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Input is the validated set of fields accepted for creating or updating a
// goal. Progress is derived at read time and is not part of the input.
type Input struct {
	Name        string              `json:"name"`
	Metric      entities.GoalMetric `json:"metric"`
	Target      int                 `json:"target"`
	PeriodStart time.Time           `json:"period_start"`
	PeriodEnd   time.Time           `json:"period_end"`
}

// Validate checks field constraints before any write.
func (in *Input) Validate() error {
	in.Name = strings.TrimSpace(in.Name)

	if !in.Metric.Valid() {
		return &database.ValidationError{Field: "metric", Message: "must be one of: pages, books"}
	}
	if in.Target <= 0 {
		return &database.ValidationError{Field: "target", Message: "must be positive"}
	}
	if in.PeriodStart.IsZero() {
		return &database.ValidationError{Field: "period_start", Message: "is required"}
	}
	if in.PeriodEnd.IsZero() {
		return &database.ValidationError{Field: "period_end", Message: "is required"}
	}
	if !in.PeriodEnd.After(in.PeriodStart) {
		return &database.ValidationError{Field: "period_end", Message: "must be after period_start"}
	}
	return nil
}

// Create validates the input and inserts a new goal.
func (r *Repository) Create(in Input) (*entities.Goal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	goal := &entities.Goal{
		Name:        in.Name,
		Metric:      in.Metric,
		Target:      in.Target,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.Create(goal).Error; err != nil {
		return nil, database.WrapWriteError("goal", err)
	}
	return goal, nil
}

// Update validates the input and overwrites the goal's fields.
func (r *Repository) Update(id uint, in Input) (*entities.Goal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var goal entities.Goal
	if err := r.db.First(&goal, id).Error; err != nil {
		return nil, database.NotFoundOr("goal", id, err)
	}

	goal.Name = in.Name
	goal.Metric = in.Metric
	goal.Target = in.Target
	goal.PeriodStart = in.PeriodStart
	goal.PeriodEnd = in.PeriodEnd
	if err := r.db.Save(&goal).Error; err != nil {
		return nil, database.WrapWriteError("goal", err)
	}
	return &goal, nil
}

// Delete removes a goal.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Goal{}, id)
	if result.Error != nil {
		return database.WrapWriteError("goal", result.Error)
	}
	if result.RowsAffected == 0 {
		return &database.NotFoundError{Entity: "goal", ID: id}
	}
	return nil
}

// GetByID retrieves a single goal.
func (r *Repository) GetByID(id uint) (*entities.Goal, error) {
	var goal entities.Goal
	if err := r.db.First(&goal, id).Error; err != nil {
		return nil, database.NotFoundOr("goal", id, err)
	}
	return &goal, nil
}

// List retrieves all goals in insertion order.
func (r *Repository) List() ([]entities.Goal, error) {
	var goals []entities.Goal
	err := r.db.Order("id ASC").Find(&goals).Error
	return goals, err
}
