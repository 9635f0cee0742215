// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/notify"
	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/tasklist"
	"todoctl/internal/theme"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env is the state shared by every command in one invocation.
// Service is nil when the backend could not be constructed and the
// command does not need a session.
type Env struct {
	Config  *config.Config
	Session *session.Store
	Service service.Service
	Tasks   *tasklist.Controller
	Notes   *notify.Channel
	Theme   *theme.Flag
	Log     *slog.Logger

	// IsInteractive reports whether prompts may be shown.
	IsInteractive func() bool

	muted atomic.Bool
}

// EchoNotes prints every pushed notification: success and info to out
// (unless quiet), warning and error to errOut.
func (e *Env) EchoNotes(out, errOut io.Writer) {
	e.Notes.Subscribe(func(n notify.Notification) {
		if e.muted.Load() {
			return
		}
		switch n.Kind {
		case notify.Warning, notify.Error:
			fmt.Fprintf(errOut, "error: %s\n", n.Message)
		default:
			if !e.Config.Quiet {
				fmt.Fprintln(out, n.Message)
			}
		}
	})
}

// MuteNotes stops EchoNotes output, for views that render notifications
// themselves.
func (e *Env) MuteNotes() { e.muted.Store(true) }

func (e *Env) interactive() bool {
	return e.IsInteractive != nil && e.IsInteractive()
}
