// Package storage provides string-keyed durable local storage for the
// client: the cached session and the theme preference.
package storage

import (
	"context"
	"sync"
)

// Keys used by the client.
const (
	KeyUser  = "user"
	KeyToken = "token"
	KeyTheme = "theme"
)

// Store is a string-keyed value store. Values are always read and written
// whole; Put writes every entry or none.
type Store interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Put writes all entries atomically.
	Put(ctx context.Context, entries map[string]string) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases underlying resources.
	Close() error
}

// Memory is an in-memory Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string

	// Error injection for testing
	GetErr    error
	PutErr    error
	DeleteErr error
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Put implements Store.
func (m *Memory) Put(ctx context.Context, entries map[string]string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.values[k] = v
	}
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
