package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/spf13/pflag"

	"todoctl/internal/exitcode"
	"todoctl/internal/service"
)

// TaskRef identifies a task either by its 1-based number in the list
// output or by its server id.
type TaskRef struct {
	Num int
	ID  string
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference. id comes from the --id flag; when
// it is set no positional number is consumed. It returns the reference
// and the remaining args.
//
// Parsing rules:
// 1. --id <id> → reference by id, all args remain
// 2. first arg all digits → reference by number, rest remain
// 3. no args → task reference required
// 4. otherwise → invalid task reference: <arg>
func ParseTaskRef(id string, args []string) (TaskRef, []string, error) {
	if id != "" {
		return TaskRef{ID: id}, args, nil
	}
	if len(args) == 0 {
		return TaskRef{}, nil, ErrTaskRefRequired
	}

	first := args[0]
	if !isAllDigits(first) {
		return TaskRef{}, nil, fmt.Errorf("invalid task reference: %s", first)
	}
	num, err := strconv.Atoi(first)
	if err != nil {
		return TaskRef{}, nil, fmt.Errorf("invalid task reference: %s", first)
	}
	return TaskRef{Num: num}, args[1:], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// resolve maps ref onto the loaded collection.
func (ref TaskRef) resolve(tasks []service.Task) (service.Task, error) {
	if ref.ID != "" {
		for _, t := range tasks {
			if t.ID == ref.ID {
				return t, nil
			}
		}
		return service.Task{}, fmt.Errorf("task not found: %s", ref.ID)
	}
	if ref.Num < 1 || ref.Num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
	}
	return tasks[ref.Num-1], nil
}

// taskRefFlags registers --id on fs.
func taskRefFlags(fs *pflag.FlagSet, id *string) {
	fs.StringVar(id, "id", "", "")
}

// loadAndResolve parses the task reference, loads the collection and
// returns the referenced task. On failure it has already printed the
// error and returns the exit code.
func loadAndResolve(ctx context.Context, env *Env, id string, args []string, errOut io.Writer) (service.Task, []string, int) {
	ref, rest, err := ParseTaskRef(id, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, nil, exitcode.UserError
	}
	if err := env.Tasks.Load(ctx); err != nil {
		return service.Task{}, nil, exitcode.FromError(err)
	}
	task, err := ref.resolve(env.Tasks.Tasks())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, nil, exitcode.UserError
	}
	return task, rest, exitcode.Success
}
