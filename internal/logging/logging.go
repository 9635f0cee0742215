// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
)

// New returns a debug-level text logger writing to w when debug is set,
// and a logger that drops everything otherwise.
func New(w io.Writer, debug bool) *slog.Logger {
	if !debug || w == nil {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Nop returns a logger that drops everything. Useful for tests.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
