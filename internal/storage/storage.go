package storage

import (
	"context"

	"github.com/steveyegge/pmc/internal/storage/sqlite"
)

// Keys under which application state is persisted.
// Each holds an independently serialized JSON document.
const (
	KeyProjects  = "pmc_projects"
	KeyActive    = "pmc_active"
	KeyKnowledge = "pmc_knowledge"
)

// Store is a key/value store of serialized documents
type Store interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Close releases the underlying resources
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	// Default: ".pmc/pmc.db"
	// Special value ":memory:" creates an in-memory database (useful for tests)
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: DefaultPath,
	}
}

// NewStorage creates a new SQLite storage backend
func NewStorage(ctx context.Context, cfg *Config) (Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	s, err := sqlite.New(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
