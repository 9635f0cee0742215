package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

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
	"todoctl/internal/testutil"
	"todoctl/internal/theme"
)

// newEnv builds an Env over svc with an in-memory store. When user is
// non-nil the session is logged in as that user.
func newEnv(t *testing.T, svc *testutil.FakeService, user *service.User, quiet bool) *commands.Env {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemory()
	log := logging.Nop()

	sess := session.New(kv, log)
	if user != nil {
		if err := sess.Login(ctx, *user, "token-"+user.ID); err != nil {
			t.Fatalf("session login: %v", err)
		}
	}
	cfg := config.Default(t.TempDir())
	cfg.Quiet = quiet

	notes := notify.New()
	env := &commands.Env{
		Config:  cfg,
		Session: sess,
		Notes:   notes,
		Theme:   theme.New(kv),
		Log:     log,
	}
	if svc != nil {
		env.Service = svc
		env.Tasks = tasklist.New(svc, notes, log)
	}
	return env
}

// runCommand parses args with the command's flags, then runs it with
// notifications echoed.
func runCommand(t *testing.T, cmd commands.Command, env *commands.Env, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	env.EchoNotes(&outBuf, &errBuf)
	code = cmd.Run(context.Background(), env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

var ada = &service.User{ID: "u1", Username: "ada", Email: "ada@example.com"}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk", false)
	svc.AddTask("t2", "Call mom", true)
	svc.AddTask("t3", "Write report", false)
	return svc
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, newEnv(t, nil, nil, false))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todoctl 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, newEnv(t, nil, nil, false))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "  add ", "  estimate ", "  ui ", "--api <url>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestHelpCommand_SingleCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, newEnv(t, nil, nil, false), "rm")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "Delete a task\n\n  todoctl rm <n> | --id <task-id>\n\nAliases: delete\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestHelpCommand_UnknownCommand(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.HelpCmd{}, newEnv(t, nil, nil, false), "nope")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: nope\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for list command
func TestListCommand(t *testing.T) {
	env := newEnv(t, seeded(), ada, false)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, env)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  [ ] Buy milk\n   2  [x] Call mom\n   3  [ ] Write report\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	env := newEnv(t, testutil.NewFakeService(), ada, false)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, env)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	env := newEnv(t, testutil.NewFakeService(), ada, true)

	stdout, _, _ := runCommand(t, &commands.ListCmd{}, env)

	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestListCommand_FilterKeepsNumbers(t *testing.T) {
	env := newEnv(t, seeded(), ada, false)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, env, "--filter", "REPORT")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "   3  [ ] Write report\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_FilterNoMatch(t *testing.T) {
	env := newEnv(t, seeded(), ada, false)

	stdout, _, _ := runCommand(t, &commands.ListCmd{}, env, "-f", "zzz")

	if stdout != "no tasks match zzz\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_Stats(t *testing.T) {
	env := newEnv(t, seeded(), ada, false)

	stdout, _, _ := runCommand(t, &commands.ListCmd{}, env, "--stats")

	if !strings.HasSuffix(stdout, "3 total, 1 completed, 2 pending\n") {
		t.Errorf("expected stats line, got %q", stdout)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.ListTasksErr = &service.APIError{Status: 500}
	env := newEnv(t, svc, ada, false)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, env)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: could not load tasks\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_UnexpectedArgument(t *testing.T) {
	env := newEnv(t, seeded(), ada, false)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, env, "extra")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unexpected argument: extra\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	env := newEnv(t, svc, ada, false)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, env, "Buy", "milk")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "task added\n" {
		t.Errorf("expected 'task added', got %q", stdout)
	}
	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" {
		t.Errorf("expected one task 'Buy milk', got %+v", tasks)
	}
}

func TestAddCommand_MissingText(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.AddCmd{}, newEnv(t, testutil.NewFakeService(), ada, false))

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task text required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_BlankText(t *testing.T) {
	svc := testutil.NewFakeService()
	_, stderr, code := runCommand(t, &commands.AddCmd{}, newEnv(t, svc, ada, false), "   ")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("expected an error line, got %q", stderr)
	}
	if svc.CallCount("CreateTask") != 0 {
		t.Error("expected no create request for blank text")
	}
}

func TestAddCommand_ServerMessage(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = &service.APIError{Status: 400, Message: "Text is required"}

	_, stderr, code := runCommand(t, &commands.AddCmd{}, newEnv(t, svc, ada, false), "x")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: Text is required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for done command
func TestDoneCommand_ByNumber(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.DoneCmd{}, newEnv(t, svc, ada, false), "1")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "task completed\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if !svc.Tasks()[0].Completed {
		t.Error("expected task 1 completed")
	}
}

func TestDoneCommand_ReopensByID(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.DoneCmd{}, newEnv(t, svc, ada, false), "--id", "t2")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "task reopened\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if svc.Tasks()[1].Completed {
		t.Error("expected task t2 reopened")
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc := seeded()
	_, stderr, code := runCommand(t, &commands.DoneCmd{}, newEnv(t, svc, ada, false), "9")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task number out of range: 9\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.CallCount("UpdateTask") != 0 {
		t.Error("expected no update request")
	}
}

func TestDoneCommand_MissingRef(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.DoneCmd{}, newEnv(t, seeded(), ada, false))

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task reference required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.EditCmd{}, newEnv(t, svc, ada, false), "3", "Write", "final", "report")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "task updated\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if got := svc.Tasks()[2].Text; got != "Write final report" {
		t.Errorf("expected renamed task, got %q", got)
	}
}

func TestEditCommand_MissingText(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.EditCmd{}, newEnv(t, seeded(), ada, false), "1")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task text required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for estimate command
func TestEstimateCommand(t *testing.T) {
	tests := []struct {
		arg     string
		minutes int
		stdout  string
	}{
		{"90", 90, "estimate set to 1h 30m\n"},
		{"45m", 45, "estimate set to 45m\n"},
		{"2h", 120, "estimate set to 2h 0m\n"},
		{"0", 0, "estimate set to 0m\n"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			svc := seeded()
			stdout, stderr, code := runCommand(t, &commands.EstimateCmd{}, newEnv(t, svc, ada, false), "1", tt.arg)

			if code != exitcode.Success {
				t.Fatalf("expected exit code %d, got %d (%q)", exitcode.Success, code, stderr)
			}
			if stdout != tt.stdout {
				t.Errorf("expected %q, got %q", tt.stdout, stdout)
			}
			got := svc.Tasks()[0].EstimatedMinutes
			if got == nil || *got != tt.minutes {
				t.Errorf("expected %d minutes, got %v", tt.minutes, got)
			}
		})
	}
}

func TestEstimateCommand_Invalid(t *testing.T) {
	svc := seeded()
	_, stderr, code := runCommand(t, &commands.EstimateCmd{}, newEnv(t, svc, ada, false), "1", "soon")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid estimate: soon (use 90, 45m or 1h30m)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.CallCount("ListTasks") != 0 {
		t.Error("expected validation before any request")
	}
}

func TestEstimateCommand_MissingDuration(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.EstimateCmd{}, newEnv(t, seeded(), ada, false), "1")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: duration required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.RmCmd{}, newEnv(t, svc, ada, false), "2")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "task deleted\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	for _, task := range svc.Tasks() {
		if task.ID == "t2" {
			t.Error("expected t2 deleted")
		}
	}
}

func TestRmCommand_NotFoundOnServer(t *testing.T) {
	svc := seeded()
	svc.DeleteTaskErr = testutil.ErrNotFound

	_, stderr, code := runCommand(t, &commands.RmCmd{}, newEnv(t, svc, ada, false), "--id", "t1")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: Todo not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Tasks()) != 3 {
		t.Error("expected tasks unchanged")
	}
}

func TestRmCommand_UnknownID(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.RmCmd{}, newEnv(t, seeded(), ada, false), "--id", "nope")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found: nope\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for show command
func TestShowCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ShowCmd{}, newEnv(t, seeded(), ada, false), "2")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "Call mom\n  id: t2\n  status: done\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Tests for whoami command
func TestWhoamiCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, newEnv(t, nil, ada, false))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ada <ada@example.com>\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

// Tests for theme command
func TestThemeCommand(t *testing.T) {
	env := newEnv(t, nil, nil, false)

	if stdout, _, _ := runCommand(t, &commands.ThemeCmd{}, env); stdout != "light\n" {
		t.Errorf("expected light, got %q", stdout)
	}
	if stdout, _, _ := runCommand(t, &commands.ThemeCmd{}, env, "toggle"); stdout != "dark\n" {
		t.Errorf("expected dark, got %q", stdout)
	}
	if !env.Theme.Dark() {
		t.Error("expected dark theme selected")
	}
}

func TestThemeCommand_UnknownAction(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ThemeCmd{}, newEnv(t, nil, nil, false), "blue")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown theme action: blue\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for ui command
func TestUICommand_NotInteractive(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.UICmd{}, newEnv(t, seeded(), ada, false))

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: ui needs an interactive terminal\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegistry_AliasesResolve(t *testing.T) {
	aliases := map[string]string{
		"ls":     "list",
		"create": "add",
		"toggle": "done",
		"rename": "edit",
		"est":    "estimate",
		"delete": "rm",
		"signup": "register",
		"tui":    "ui",
		"info":   "show",
	}
	for alias, name := range aliases {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok {
			t.Errorf("alias %q not registered", alias)
			continue
		}
		if cmd.Name() != name {
			t.Errorf("alias %q resolves to %q, want %q", alias, cmd.Name(), name)
		}
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.VersionCmd{}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(&commands.VersionCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
