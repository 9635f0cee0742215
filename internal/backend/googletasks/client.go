// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todoctl/internal/config"
	"todoctl/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// TasksScope is the OAuth scope for Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// SessionUser is the identity stored in the session after an OAuth login.
// The tasks scope grants no profile access, so the user is fixed.
var SessionUser = service.User{ID: "google", Username: "google"}

// AccessTokener exposes the raw session token. For this backend the token
// is a JSON-encoded oauth2.Token.
type AccessTokener interface {
	AccessToken() string
}

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	timeout time.Duration
	log     *slog.Logger
}

// New creates a new Google Tasks client. Requires oauth_client.json. The
// OAuth token is read from sess on each request and refreshed as needed.
func New(ctx context.Context, cfg *config.Config, sess AccessTokener, log *slog.Logger) (*Client, error) {
	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	src := &sessionTokenSource{ctx: ctx, conf: oauthConfig, sess: sess}
	httpClient := &http.Client{Transport: &oauth2.Transport{Source: src}}

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return newClient(svc, cfg.Timeout, log), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	return newClient(svc, config.DefaultTimeout, nil), nil
}

func newClient(svc *tasks.Service, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &Client{svc: svc, timeout: timeout, log: log}
}

// LoadOAuthConfig reads oauth_client.json for the tasks scope.
func LoadOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, TasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// EncodeToken serializes an OAuth token for storage in the session.
func EncodeToken(tok *oauth2.Token) (string, error) {
	data, err := json.Marshal(tok)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sessionTokenSource decodes the session token and refreshes it through
// the OAuth config. The refreshing source is rebuilt when the session
// token changes.
type sessionTokenSource struct {
	ctx  context.Context
	conf *oauth2.Config
	sess AccessTokener

	mu  sync.Mutex
	raw string
	src oauth2.TokenSource
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	raw := s.sess.AccessToken()
	if raw == "" {
		return nil, service.ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if raw != s.raw || s.src == nil {
		var tok oauth2.Token
		if err := json.Unmarshal([]byte(raw), &tok); err != nil {
			return nil, fmt.Errorf("%w: stored token is not a google token", service.ErrNotAuthenticated)
		}
		s.raw = raw
		s.src = s.conf.TokenSource(s.ctx, &tok)
	}
	return s.src.Token()
}

// Register implements service.Service. Accounts are managed by Google.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.Auth, error) {
	return service.Auth{}, fmt.Errorf("register: %w", service.ErrUnsupported)
}

// Login implements service.Service. Use the OAuth browser flow instead.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.Auth, error) {
	return service.Auth{}, fmt.Errorf("password login: %w", service.ErrUnsupported)
}

// ListTasks returns every task in the default list, completed ones included.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result := []service.Task{}
	err := c.svc.Tasks.List(DefaultListID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, toTask(t))
			}
			return nil
		})
	c.log.Debug("google tasks list", "count", len(result), "latency_ms", time.Since(start).Milliseconds())
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateTask creates a new task in the default list.
func (c *Client) CreateTask(ctx context.Context, text string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	t, err := c.svc.Tasks.Insert(DefaultListID, &tasks.Task{Title: text}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(t), nil
}

// UpdateTask patches the task. Changing the estimate rewrites its line in
// the task notes, so the current notes are fetched first.
func (c *Client) UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	patch := &tasks.Task{}
	if upd.Text != nil {
		patch.Title = *upd.Text
		patch.ForceSendFields = append(patch.ForceSendFields, "Title")
	}
	if upd.Completed != nil {
		if *upd.Completed {
			patch.Status = statusCompleted
		} else {
			patch.Status = statusNeedsAction
			patch.NullFields = append(patch.NullFields, "Completed")
		}
	}
	if upd.EstimatedMinutes != nil {
		current, err := c.svc.Tasks.Get(DefaultListID, id).Context(ctx).Do()
		if err != nil {
			return service.Task{}, wrapError(err)
		}
		patch.Notes = setEstimate(current.Notes, *upd.EstimatedMinutes)
		patch.ForceSendFields = append(patch.ForceSendFields, "Notes")
	}

	t, err := c.svc.Tasks.Patch(DefaultListID, id, patch).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(t), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(DefaultListID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func toTask(t *tasks.Task) service.Task {
	return service.Task{
		ID:               t.Id,
		Text:             t.Title,
		Completed:        t.Status == statusCompleted,
		EstimatedMinutes: parseEstimate(t.Notes),
	}
}

var estimateLine = regexp.MustCompile(`^estimate:\s*(\d+)m\s*$`)

// parseEstimate finds an "estimate: <n>m" line in task notes.
func parseEstimate(notes string) *int {
	for _, line := range strings.Split(notes, "\n") {
		m := estimateLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n
		}
	}
	return nil
}

// setEstimate replaces or appends the estimate line, keeping other notes.
func setEstimate(notes string, minutes int) string {
	var kept []string
	for _, line := range strings.Split(notes, "\n") {
		if estimateLine.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	body := strings.TrimRight(strings.Join(kept, "\n"), "\n")
	est := fmt.Sprintf("estimate: %dm", minutes)
	if body == "" {
		return est
	}
	return body + "\n" + est
}

// wrapError normalizes API errors into service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrNotAuthenticated) {
		return service.ErrNotAuthenticated
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrUnavailable)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &service.APIError{Status: gerr.Code, Message: "token expired or revoked (run: todoctl login)"}
		case http.StatusNotFound:
			return &service.APIError{Status: gerr.Code, Message: "not found"}
		}
		return &service.APIError{Status: gerr.Code, Message: gerr.Message}
	}
	return fmt.Errorf("%w: %v", service.ErrUnavailable, err)
}

var _ service.Service = (*Client)(nil)
