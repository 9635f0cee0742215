// Package main is the entry point for the todoctl CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"todoctl/internal/backend/googletasks"
	"todoctl/internal/backend/todoapi"
	"todoctl/internal/cli"
	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService).
		WithInteractive(isTerminal)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newService picks the backend named by the config.
func newService(ctx context.Context, cfg *config.Config, sess *session.Store, log *slog.Logger) (service.Service, error) {
	if cfg.Backend == config.BackendGoogle {
		return googletasks.New(ctx, cfg, sess, log)
	}
	return todoapi.New(cfg, sess, log), nil
}

func isTerminal() bool {
	return tty(os.Stdin) && tty(os.Stdout)
}

func tty(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
