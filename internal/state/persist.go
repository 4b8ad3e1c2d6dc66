package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/steveyegge/pmc/internal/storage"
	"github.com/steveyegge/pmc/internal/types"
)

// Load reads persisted state from store and returns an App that writes every
// later change back to it. Missing or unreadable values fall back to empty
// defaults; only a failing store is an error.
func Load(ctx context.Context, store storage.Store, opts ...Option) (*App, error) {
	var projects []types.Project
	if err := loadKey(ctx, store, storage.KeyProjects, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []types.Project{}
	}
	for i := range projects {
		projects[i].Normalize()
	}

	var activeID string
	if err := loadKey(ctx, store, storage.KeyActive, &activeID); err != nil {
		return nil, err
	}
	var knowledge string
	if err := loadKey(ctx, store, storage.KeyKnowledge, &knowledge); err != nil {
		return nil, err
	}

	app := New(opts...)
	app.restore(projects, activeID, knowledge)
	app.Subscribe(Persister(store))
	return app, nil
}

// loadKey decodes key into dst. A parse failure leaves dst at its zero value.
func loadKey(ctx context.Context, store storage.Store, key string, dst any) error {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Debug("ignoring unreadable persisted value", "key", key, "error", err)
		// reset anything a partial decode may have written
		switch v := dst.(type) {
		case *[]types.Project:
			*v = nil
		case *string:
			*v = ""
		}
	}
	return nil
}

// Persister returns a Subscriber that writes the keys named by each change,
// and only those, as JSON documents.
func Persister(store storage.Store) Subscriber {
	return func(ctx context.Context, c Change) error {
		var errs []error
		write := func(key string, v any) {
			data, err := json.Marshal(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to encode %s: %w", key, err))
				return
			}
			if err := store.Set(ctx, key, string(data)); err != nil {
				errs = append(errs, fmt.Errorf("failed to write %s: %w", key, err))
			}
		}
		if c.Keys.Has(KeyProjects) {
			projects := c.Snapshot.Projects
			if projects == nil {
				projects = []types.Project{}
			}
			write(storage.KeyProjects, projects)
		}
		if c.Keys.Has(KeyActive) {
			write(storage.KeyActive, c.Snapshot.ActiveID)
		}
		if c.Keys.Has(KeyKnowledge) {
			write(storage.KeyKnowledge, c.Snapshot.Knowledge)
		}
		return errors.Join(errs...)
	}
}
