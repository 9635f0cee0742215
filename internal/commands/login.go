package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"todoctl/internal/backend/googletasks"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/notify"
	"todoctl/internal/service"
)

const (
	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5

	authSuccessTimeout = 2 * time.Second
	authErrorTimeout   = 4 * time.Second
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command. The api backend takes email and
// password; the google backend runs the OAuth browser flow.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and cache the session" }
func (c *LoginCmd) Usage() string     { return "todoctl login [--email <email>] [--password <pw>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.email, "email", "e", "", "")
	fs.StringVarP(&c.password, "password", "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if env.Config.Backend == config.BackendGoogle {
		return runOAuthLogin(ctx, env, out, errOut)
	}

	if c.email == "" || c.password == "" {
		if !env.interactive() {
			fmt.Fprintln(errOut, "error: email and password required")
			return exitcode.UserError
		}
		if err := promptLogin(ctx, &c.email, &c.password); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if env.Service == nil {
		fmt.Fprintln(errOut, "error: backend unavailable")
		return exitcode.BackendError
	}

	auth, err := env.Service.Login(ctx, service.Credentials{Email: c.email, Password: c.password})
	if err != nil {
		env.Notes.Push(service.MessageOf(err, "login failed"), notify.Error, authErrorTimeout)
		return exitcode.FromError(err)
	}
	return startSession(ctx, env, auth, errOut)
}

// startSession persists auth and announces the user.
func startSession(ctx context.Context, env *Env, auth service.Auth, errOut io.Writer) int {
	if err := env.Session.Login(ctx, auth.User, auth.Token); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.FromError(err)
	}
	env.Notes.Push("welcome, "+auth.User.Username, notify.Success, authSuccessTimeout)
	return exitcode.Success
}

func runOAuthLogin(ctx context.Context, env *Env, out, errOut io.Writer) int {
	cfg := env.Config
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
		fmt.Fprintln(errOut, "The google backend needs OAuth credentials:")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
		fmt.Fprintln(errOut, "2. Enable the Google Tasks API for your project")
		fmt.Fprintln(errOut, "3. Create an OAuth client ID of type 'Desktop app' and download the JSON")
		fmt.Fprintf(errOut, "4. Save it as %s\n", cfg.OAuthClientPath())
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "Then run 'todoctl login' again.")
		return exitcode.AuthError
	}

	oauthConfig, err := googletasks.LoadOAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if hasRefreshableToken(env.Session.AccessToken()) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		fmt.Fprintf(errOut, "error: could not bind to local port for OAuth callback\n")
		return exitcode.AuthError
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			errCh <- fmt.Errorf("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Logged in</h1><p>You may close this window.</p></body></html>")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	case <-time.After(oauthCallbackTimeout):
		fmt.Fprintln(errOut, "error: oauth callback timed out")
		return exitcode.AuthError
	case <-ctx.Done():
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.AuthError
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	exchangeCtx, cancelExchange := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancelExchange()

	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return exitcode.AuthError
	}

	encoded, err := googletasks.EncodeToken(token)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to encode token: %v\n", err)
		return exitcode.AuthError
	}
	return startSession(ctx, env, service.Auth{Token: encoded, User: googletasks.SessionUser}, errOut)
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}

// hasRefreshableToken reports whether raw is a stored google token that
// can be refreshed without a new browser login.
func hasRefreshableToken(raw string) bool {
	if raw == "" {
		return false
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return false
	}
	return token.RefreshToken != ""
}
