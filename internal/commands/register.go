package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/notify"
	"todoctl/internal/service"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command. A successful registration
// is followed by a login with the same credentials.
type RegisterCmd struct {
	username string
	email    string
	password string
	confirm  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "todoctl register [--username <name>] [--email <email>] [--password <pw>] [--confirm <pw>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "")
	fs.StringVarP(&c.email, "email", "e", "", "")
	fs.StringVarP(&c.password, "password", "p", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if env.Config.Backend == config.BackendGoogle {
		fmt.Fprintln(errOut, "error: register is not supported by the google backend (run: todoctl login)")
		return exitcode.UserError
	}

	// A confirmation given by flag or asked at the prompt must match,
	// even when left empty.
	checkConfirm := c.confirm != ""
	if c.username == "" || c.email == "" || c.password == "" {
		if !env.interactive() {
			fmt.Fprintln(errOut, "error: username, email and password required")
			return exitcode.UserError
		}
		asked, err := promptRegister(ctx, &c.username, &c.email, &c.password, &c.confirm)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		checkConfirm = checkConfirm || asked
	}

	reg := service.Registration{
		Username: strings.TrimSpace(c.username),
		Email:    strings.TrimSpace(c.email),
		Password: c.password,
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		fmt.Fprintln(errOut, "error: username, email and password required")
		return exitcode.UserError
	}
	if checkConfirm && c.confirm != c.password {
		env.Notes.Push("passwords do not match", notify.Error, 0)
		return exitcode.UserError
	}

	if env.Service == nil {
		fmt.Fprintln(errOut, "error: backend unavailable")
		return exitcode.BackendError
	}

	auth, err := env.Service.Register(ctx, reg)
	if err != nil {
		env.Notes.Push(service.MessageOf(err, "registration failed"), notify.Error, authErrorTimeout)
		return exitcode.FromError(err)
	}
	env.Notes.Push("account created, logging in", notify.Success, authSuccessTimeout)

	// Some servers issue a session on registration; otherwise log in.
	if auth.Token == "" || auth.User.IsZero() {
		auth, err = env.Service.Login(ctx, service.Credentials{Email: reg.Email, Password: reg.Password})
		if err != nil {
			env.Notes.Push(service.MessageOf(err, "login failed"), notify.Error, authErrorTimeout)
			return exitcode.FromError(err)
		}
	}
	return startSession(ctx, env, auth, errOut)
}
