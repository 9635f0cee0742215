package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/tasklist"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. It also runs for `todoctl` with
// no arguments.
type ListCmd struct {
	filter string
	stats  bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "todoctl list [--filter <text>] [--stats]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.filter, "filter", "f", "", "")
	fs.BoolVarP(&c.stats, "stats", "s", false, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if err := env.Tasks.Load(ctx); err != nil {
		return exitcode.FromError(err)
	}

	all := env.Tasks.Tasks()
	printed := 0
	// Numbers are positions in the full list so they stay valid as refs.
	for i, task := range all {
		if !tasklist.Matches(task, c.filter) {
			continue
		}
		output.FormatTask(out, i+1, task)
		printed++
	}

	if printed == 0 && !env.Config.Quiet {
		if c.filter != "" && len(all) > 0 {
			fmt.Fprintf(out, "no tasks match %s\n", c.filter)
		} else {
			fmt.Fprintln(out, "no tasks found")
		}
	}
	if c.stats {
		output.FormatStats(out, tasklist.Summarize(all))
	}
	return exitcode.Success
}
