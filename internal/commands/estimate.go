package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todoctl/internal/exitcode"
	"todoctl/internal/tasklist"
)

func init() {
	Register(&EstimateCmd{})
}

// EstimateCmd implements the estimate command.
type EstimateCmd struct {
	id string
}

func (c *EstimateCmd) Name() string      { return "estimate" }
func (c *EstimateCmd) Aliases() []string { return []string{"est"} }
func (c *EstimateCmd) Synopsis() string  { return "Set a task's estimated duration" }
func (c *EstimateCmd) Usage() string {
	return "todoctl estimate <n> | --id <task-id> <duration>   (90, 45m, 1h30m)"
}
func (c *EstimateCmd) NeedsAuth() bool { return true }

func (c *EstimateCmd) RegisterFlags(fs *pflag.FlagSet) {
	taskRefFlags(fs, &c.id)
}

func (c *EstimateCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	// Validate the duration before any request.
	ref, rest, err := ParseTaskRef(c.id, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if len(rest) == 0 {
		fmt.Fprintln(errOut, "error: duration required")
		return exitcode.UserError
	}
	raw := strings.Join(rest, "")
	minutes, err := tasklist.ParseMinutes(raw)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid estimate: %s (use 90, 45m or 1h30m)\n", raw)
		return exitcode.UserError
	}

	if err := env.Tasks.Load(ctx); err != nil {
		return exitcode.FromError(err)
	}
	task, err := ref.resolve(env.Tasks.Tasks())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if _, err := env.Tasks.SetEstimate(ctx, task.ID, minutes); err != nil {
		return exitcode.FromError(err)
	}
	return exitcode.Success
}
