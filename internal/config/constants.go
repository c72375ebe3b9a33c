package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./data/library.db"

	// DefaultSnapshotDir is the default directory for catalog snapshot exports
	DefaultSnapshotDir = "./exports"
)
