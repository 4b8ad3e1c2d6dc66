package migrations

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

var (
	createNotes = Migration{
		Version:     1,
		Description: "Add notes table",
		Up:          `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL)`,
		Down:        `DROP TABLE notes`,
	}
	addNotesTitle = Migration{
		Version:     2,
		Description: "Add notes.title",
		Up:          `ALTER TABLE notes ADD COLUMN title TEXT NOT NULL DEFAULT ''`,
		Down:        `ALTER TABLE notes DROP COLUMN title`,
	}
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyAndRollback(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	// Registered out of order on purpose
	manager := NewManager(addNotesTitle)
	manager.Register(createNotes)

	if err := manager.Apply(ctx, db); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	if v, err := Version(ctx, db); err != nil || v != 2 {
		t.Fatalf("expected version 2, got %d (err=%v)", v, err)
	}
	if _, err := db.Exec("INSERT INTO notes (id, body, title) VALUES (1, 'b', 't')"); err != nil {
		t.Fatalf("notes table not migrated: %v", err)
	}

	// Applying again is a no-op
	if err := manager.Apply(ctx, db); err != nil {
		t.Fatalf("second apply failed: %v", err)
	}

	if err := manager.Rollback(ctx, db); err != nil {
		t.Fatalf("failed to rollback: %v", err)
	}
	if v, _ := Version(ctx, db); v != 1 {
		t.Errorf("expected version 1 after rollback, got %d", v)
	}
	if _, err := db.Exec("INSERT INTO notes (id, body, title) VALUES (2, 'b', 't')"); err == nil {
		t.Error("title column should have been dropped")
	}

	if err := manager.Rollback(ctx, db); err != nil {
		t.Fatalf("failed to rollback: %v", err)
	}
	if err := manager.Rollback(ctx, db); err == nil {
		t.Error("expected error rolling back with nothing applied")
	}
}

func TestApply_FailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	manager := NewManager(createNotes, Migration{Version: 2, Description: "broken", Up: "NOT SQL"})
	if err := manager.Apply(ctx, db); err == nil {
		t.Fatal("expected error from broken migration")
	}
	if v, _ := Version(ctx, db); v != 1 {
		t.Errorf("expected version 1, got %d", v)
	}
}
