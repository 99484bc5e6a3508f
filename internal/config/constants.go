package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the tracker database
	DefaultDatabasePath = "./book-tracker.db"
)
