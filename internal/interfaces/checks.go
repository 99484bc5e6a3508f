package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"booktracker/internal/database/books"
	"booktracker/internal/database/goals"
	"booktracker/internal/database/sessions"
	"booktracker/internal/http"
	"booktracker/internal/importers"
	"booktracker/internal/metadata"
	"booktracker/internal/scheduler"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookStore implementations
var _ http.BookStore = (*books.Repository)(nil)

// SessionStore implementations
var _ http.SessionStore = (*sessions.Repository)(nil)

// GoalStore implementations
var _ http.GoalStore = (*goals.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

// MetadataProvider implementations
var _ http.MetadataProvider = (*metadata.OpenLibraryClient)(nil)

// =============================================================================
// Import / Backup Pipeline
// =============================================================================

// Creator implementations consumed by the CSV importers
var _ importers.BookCreator = (*books.Repository)(nil)
var _ importers.SessionCreator = (*sessions.Repository)(nil)

// Lister implementations consumed by the backup scheduler
var _ scheduler.BookLister = (*books.Repository)(nil)
var _ scheduler.SessionLister = (*sessions.Repository)(nil)
