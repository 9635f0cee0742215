// Package theme holds the persisted light/dark preference.
package theme

import (
	"context"
	"fmt"
	"sync"

	"todoctl/internal/storage"
)

const (
	dark  = "dark"
	light = "light"
)

// DefaultDark is the preference used when nothing is persisted.
const DefaultDark = false

// Flag is the persisted theme preference.
type Flag struct {
	kv storage.Store

	mu   sync.RWMutex
	dark bool
}

// New creates a Flag set to the default. Call Restore to load the
// persisted value.
func New(kv storage.Store) *Flag {
	return &Flag{kv: kv, dark: DefaultDark}
}

// Restore reads the persisted preference. Absent or unrecognized values,
// and read failures, leave the default in place.
func (f *Flag) Restore(ctx context.Context) {
	v, ok, err := f.kv.Get(ctx, storage.KeyTheme)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.dark = DefaultDark
	if err != nil || !ok {
		return
	}
	switch v {
	case dark:
		f.dark = true
	case light:
		f.dark = false
	}
}

// Toggle flips the preference, persists it and returns the new value.
// On a storage failure the preference is left unchanged.
func (f *Flag) Toggle(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := !f.dark
	if err := f.kv.Put(ctx, map[string]string{storage.KeyTheme: Name(next)}); err != nil {
		return f.dark, fmt.Errorf("saving theme: %w", err)
	}
	f.dark = next
	return next, nil
}

// Dark reports whether the dark palette is selected.
func (f *Flag) Dark() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dark
}

// Name returns "dark" or "light".
func Name(isDark bool) string {
	if isDark {
		return dark
	}
	return light
}
