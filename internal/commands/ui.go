package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"todoctl/internal/exitcode"
	"todoctl/internal/tui"
)

func init() {
	Register(&UICmd{In: os.Stdin})
}

// UICmd opens the interactive task view.
type UICmd struct {
	In io.Reader
}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return []string{"tui"} }
func (c *UICmd) Synopsis() string  { return "Open the interactive task view" }
func (c *UICmd) Usage() string     { return "todoctl ui" }
func (c *UICmd) NeedsAuth() bool   { return true }

func (c *UICmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if !env.interactive() {
		fmt.Fprintln(errOut, "error: ui needs an interactive terminal")
		return exitcode.UserError
	}

	// The view renders notifications itself.
	env.MuteNotes()
	err := tui.Run(ctx, tui.Options{
		Tasks:   env.Tasks,
		Notes:   env.Notes,
		Theme:   env.Theme,
		Session: env.Session,
	}, c.In, out)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
