package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/logging"
	"todoctl/internal/notify"
	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/storage"
	"todoctl/internal/tasklist"
	"todoctl/internal/theme"
)

// ServiceFactory creates the backend for one invocation. sess is the
// restored session; authenticated requests read their token from it.
type ServiceFactory func(ctx context.Context, cfg *config.Config, sess *session.Store, log *slog.Logger) (service.Service, error)

// StoreOpener opens local storage for cfg.
type StoreOpener func(cfg *config.Config) (storage.Store, error)

// OpenSQLiteStore is the default StoreOpener: state.db in the config dir.
// The dir is created 0700 since the database holds the session token.
func OpenSQLiteStore(cfg *config.Config) (storage.Store, error) {
	if err := cfg.EnsureDir(); err != nil {
		return nil, err
	}
	return storage.OpenSQLite(cfg.StatePath())
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry    *commands.Registry
	factory     ServiceFactory
	openStore   StoreOpener
	interactive func() bool
	logOut      io.Writer
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		factory:   factory,
		openStore: OpenSQLiteStore,
	}
}

// WithStore replaces the local storage opener. Tests use it to share an
// in-memory store across invocations.
func (d *Dispatcher) WithStore(open StoreOpener) *Dispatcher {
	d.openStore = open
	return d
}

// WithInteractive sets the check for whether prompts and the TUI may run.
func (d *Dispatcher) WithInteractive(fn func() bool) *Dispatcher {
	d.interactive = fn
	return d
}

// WithLogOutput sets where --debug logs go. Defaults to errOut.
func (d *Dispatcher) WithLogOutput(w io.Writer) *Dispatcher {
	d.logOut = w
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No command runs "list"; leading flags still apply to it.
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return d.dispatch(ctx, "list", args, out, errOut)
	}
	return d.dispatch(ctx, args[0], args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir, apiURL string
	var quiet, debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&apiURL, "api", "", "")
	fs.BoolVarP(&quiet, "quiet", "q", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "%s\n\n  %s\n", cmd.Synopsis(), cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.SetAPIURL(apiURL)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logOut := d.logOut
	if logOut == nil {
		logOut = errOut
	}
	log := logging.New(logOut, cfg.Debug)

	env, closeEnv, code := d.buildEnv(ctx, cfg, log, errOut)
	if code != exitcode.Success {
		return code
	}
	defer closeEnv()

	if cmd.NeedsAuth() {
		if !env.Session.Authenticated() {
			fmt.Fprintln(errOut, "error: not logged in (run: todoctl login)")
			return exitcode.AuthError
		}
		if env.Service == nil {
			fmt.Fprintln(errOut, "error: backend unavailable")
			return exitcode.BackendError
		}
	}

	env.EchoNotes(out, errOut)
	return cmd.Run(ctx, env, fs.Args(), out, errOut)
}

// buildEnv wires the shared components in dependency order: storage,
// session, theme, notifications, backend, task list. The returned func
// releases storage.
func (d *Dispatcher) buildEnv(ctx context.Context, cfg *config.Config, log *slog.Logger, errOut io.Writer) (*commands.Env, func(), int) {
	kv, err := d.openStore(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: opening local storage: %v\n", err)
		return nil, nil, exitcode.BackendError
	}

	sess := session.New(kv, log)
	sess.Restore(ctx)

	themeFlag := theme.New(kv)
	themeFlag.Restore(ctx)

	notes := notify.New(notify.WithLogger(log))

	var svc service.Service
	if d.factory != nil {
		svc, err = d.factory(ctx, cfg, sess, log)
		if err != nil {
			// Only commands that talk to the backend care.
			log.Debug("backend unavailable", "backend", cfg.Backend, "err", err)
			svc = nil
		}
	}

	env := &commands.Env{
		Config:        cfg,
		Session:       sess,
		Service:       svc,
		Notes:         notes,
		Theme:         themeFlag,
		Log:           log,
		IsInteractive: d.interactive,
	}
	if svc != nil {
		env.Tasks = tasklist.New(svc, notes, log)
	}
	return env, func() { kv.Close() }, exitcode.Success
}
