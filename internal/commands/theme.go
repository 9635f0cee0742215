package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todoctl/internal/exitcode"
	"todoctl/internal/theme"
)

func init() {
	Register(&ThemeCmd{})
}

// ThemeCmd shows or toggles the persisted light/dark theme.
type ThemeCmd struct{}

func (c *ThemeCmd) Name() string      { return "theme" }
func (c *ThemeCmd) Aliases() []string { return nil }
func (c *ThemeCmd) Synopsis() string  { return "Show or toggle the light/dark theme" }
func (c *ThemeCmd) Usage() string     { return "todoctl theme [toggle]" }
func (c *ThemeCmd) NeedsAuth() bool   { return false }

func (c *ThemeCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ThemeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	switch {
	case len(args) == 0:
		fmt.Fprintln(out, theme.Name(env.Theme.Dark()))
		return exitcode.Success
	case len(args) == 1 && args[0] == "toggle":
		dark, err := env.Theme.Toggle(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		fmt.Fprintln(out, theme.Name(dark))
		return exitcode.Success
	default:
		fmt.Fprintf(errOut, "error: unknown theme action: %s\n", args[0])
		return exitcode.UserError
	}
}
