// Package memory provides an in-process Store for tests.
package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned after Close
var ErrClosed = errors.New("memory store is closed")

// Store keeps values in a map
type Store struct {
	mu     sync.RWMutex
	data   map[string]string
	writes map[string]int
	closed bool

	// FailSet, when non-nil, is returned from every Set. Tests use it to simulate write failures.
	FailSet error
}

// New returns an empty store
func New() *Store {
	return &Store{
		data:   make(map[string]string),
		writes: make(map[string]int),
	}
}

// Get returns the value for key
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Set stores value under key
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailSet != nil {
		return s.FailSet
	}
	s.data[key] = value
	s.writes[key]++
	return nil
}

// Writes reports how many times key has been written
func (s *Store) Writes(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[key]
}

// Close marks the store closed
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
