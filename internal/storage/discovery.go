package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir is the per-directory folder holding the database and config
const Dir = ".pmc"

// DefaultPath is the database location relative to a project directory
var DefaultPath = filepath.Join(Dir, "pmc.db")

// DiscoverDatabase finds the database to use.
//
// PMC_DB_PATH wins when set (":memory:" is allowed). Otherwise .pmc/*.db in the
// current directory is used, and failing that ~/.pmc/pmc.db, which is created
// on first open.
func DiscoverDatabase() (string, error) {
	if dbPath := os.Getenv("PMC_DB_PATH"); dbPath != "" {
		return dbPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	if dbPath, ok := discoverDatabaseInDir(dir); ok {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf(
			"no %s/*.db found in %s and no home directory: %w\n"+
				"  Run 'pmc init' here or use --db to specify a database path",
			Dir, dir, err)
	}
	return filepath.Join(home, DefaultPath), nil
}

// discoverDatabaseInDir checks for .pmc/*.db in dir only; it does not walk up the tree
func discoverDatabaseInDir(dir string) (string, bool) {
	pmcDir := filepath.Join(dir, Dir)
	entries, err := os.ReadDir(pmcDir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		absPath, err := filepath.Abs(filepath.Join(pmcDir, entry.Name()))
		if err != nil {
			return "", false
		}
		return absPath, true
	}
	return "", false
}

// InitProject creates the .pmc directory in projectDir.
// Returns the path the database should be opened at.
func InitProject(projectDir string) (string, error) {
	if _, err := os.Stat(projectDir); os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", projectDir)
	}

	pmcDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(pmcDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", Dir, err)
	}

	dbPath := filepath.Join(projectDir, DefaultPath)
	if _, err := os.Stat(dbPath); err == nil {
		return "", fmt.Errorf("database already exists: %s", dbPath)
	}

	// Database will be created on first connection
	return dbPath, nil
}
