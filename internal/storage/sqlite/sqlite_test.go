package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/steveyegge/pmc/internal/storage/migrations"
)

// TestGetSet mirrors the config round trip: missing key, insert, update
func TestGetSet(t *testing.T) {
	ctx := context.Background()

	db, err := New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	value, ok, err := db.Get(ctx, "nonexistent")
	if err != nil {
		t.Errorf("Get on non-existent key should not error: %v", err)
	}
	if ok || value != "" {
		t.Errorf("expected missing key, got %q (ok=%v)", value, ok)
	}

	if err := db.Set(ctx, "k", `["a"]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok, err = db.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if value != `["a"]` {
		t.Errorf("expected %q, got %q", `["a"]`, value)
	}

	if err := db.Set(ctx, "k", `"b"`); err != nil {
		t.Fatalf("Set update failed: %v", err)
	}
	value, _, _ = db.Get(ctx, "k")
	if value != `"b"` {
		t.Errorf("expected updated value, got %q", value)
	}
}

// TestPersistsAcrossReopen verifies values survive closing the file database
func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "pmc.db")

	db, err := New(ctx, path)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.Set(ctx, "pmc_active", `"abc"`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = New(ctx, path)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer func() { _ = db.Close() }()

	value, ok, err := db.Get(ctx, "pmc_active")
	if err != nil || !ok {
		t.Fatalf("Get after reopen failed: ok=%v err=%v", ok, err)
	}
	if value != `"abc"` {
		t.Errorf("expected %q, got %q", `"abc"`, value)
	}
}

func TestSchemaVersion(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	version, err := migrations.Version(ctx, db.db)
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if want := schema[len(schema)-1].Version; version != want {
		t.Errorf("expected schema version %d, got %d", want, version)
	}
}
