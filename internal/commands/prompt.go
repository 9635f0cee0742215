package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// runForm shows a form on the terminal. Tests replace it.
var runForm = func(ctx context.Context, form *huh.Form) error {
	return form.WithShowHelp(false).RunWithContext(ctx)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// credentialFields returns inputs for the credentials not already set.
func credentialFields(email, password *string) []huh.Field {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(email).Validate(required("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().Title("Password").
			EchoMode(huh.EchoModePassword).Value(password).Validate(required("password")))
	}
	return fields
}

// promptLogin asks for a missing email or password.
func promptLogin(ctx context.Context, email, password *string) error {
	fields := credentialFields(email, password)
	if len(fields) == 0 {
		return nil
	}
	return runForm(ctx, huh.NewForm(huh.NewGroup(fields...)))
}

// promptRegister asks for missing registration fields. The confirmation
// is only asked when the password was typed at the prompt; confirmAsked
// reports whether it was.
func promptRegister(ctx context.Context, username, email, password, confirm *string) (confirmAsked bool, err error) {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(username).Validate(required("username")))
	}
	askConfirm := *password == "" && *confirm == ""
	fields = append(fields, credentialFields(email, password)...)
	if askConfirm {
		fields = append(fields, huh.NewInput().Title("Confirm password").
			EchoMode(huh.EchoModePassword).Value(confirm))
	}
	if len(fields) == 0 {
		return false, nil
	}
	return askConfirm, runForm(ctx, huh.NewForm(huh.NewGroup(fields...)))
}
