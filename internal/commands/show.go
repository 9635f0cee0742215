package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todoctl/internal/exitcode"
	"todoctl/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints one task with its server id, which --id accepts.
type ShowCmd struct {
	id string
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"info"} }
func (c *ShowCmd) Synopsis() string  { return "Show a task and its id" }
func (c *ShowCmd) Usage() string     { return "todoctl show <n> | --id <task-id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {
	taskRefFlags(fs, &c.id)
}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, rest, code := loadAndResolve(ctx, env, c.id, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(rest) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[0])
		return exitcode.UserError
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
