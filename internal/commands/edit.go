package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todoctl/internal/exitcode"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	id string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"rename"} }
func (c *EditCmd) Synopsis() string  { return "Change a task's text" }
func (c *EditCmd) Usage() string     { return "todoctl edit <n> | --id <task-id> <text...>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	taskRefFlags(fs, &c.id)
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, rest, code := loadAndResolve(ctx, env, c.id, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(rest) == 0 {
		fmt.Fprintln(errOut, "error: task text required")
		return exitcode.UserError
	}

	if _, err := env.Tasks.Rename(ctx, task.ID, strings.Join(rest, " ")); err != nil {
		return exitcode.FromError(err)
	}
	return exitcode.Success
}
