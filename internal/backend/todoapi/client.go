// Package todoapi implements the service.Service interface over the todo
// HTTP API.
package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"todoctl/internal/config"
	"todoctl/internal/service"
)

// maxBody caps how much of a response body is read.
const maxBody = 1 << 20

// Client implements service.Service against the todo API.
type Client struct {
	baseURL string
	anon    *http.Client // register and login
	authed  *http.Client // every /todos call; carries the bearer token
	log     *slog.Logger
}

// New creates a client for cfg.APIURL. Authenticated requests take their
// bearer token from src at send time.
func New(cfg *config.Config, src oauth2.TokenSource, log *slog.Logger) *Client {
	return NewWithHTTPClient(cfg.APIURL, &http.Client{Timeout: cfg.Timeout}, src, log)
}

// NewWithHTTPClient creates a client with a custom base HTTP client (for testing).
func NewWithHTTPClient(baseURL string, base *http.Client, src oauth2.TokenSource, log *slog.Logger) *Client {
	if base == nil {
		base = http.DefaultClient
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	authed := *base
	authed.Transport = &oauth2.Transport{Source: src, Base: base.Transport}
	return &Client{
		baseURL: baseURL,
		anon:    base,
		authed:  &authed,
		log:     log,
	}
}

// Register implements service.Service. The returned Auth has an empty
// token when the server does not log the new account in.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.Auth, error) {
	body := map[string]string{
		"username": reg.Username,
		"email":    reg.Email,
		"password": reg.Password,
	}
	var out wireAuth
	if err := c.do(ctx, c.anon, http.MethodPost, "/auth/register", body, &out); err != nil {
		return service.Auth{}, err
	}
	return service.Auth{Token: out.Token, User: out.User.toUser()}, nil
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.Auth, error) {
	body := map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}
	var out wireAuth
	if err := c.do(ctx, c.anon, http.MethodPost, "/auth/login", body, &out); err != nil {
		return service.Auth{}, err
	}
	user := out.User.toUser()
	if out.Token == "" || user.IsZero() {
		return service.Auth{}, &service.APIError{Status: http.StatusOK, Err: service.ErrMalformed}
	}
	return service.Auth{Token: out.Token, User: user}, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var out []wireTask
	if err := c.do(ctx, c.authed, http.MethodGet, "/todos", nil, &out); err != nil {
		return nil, err
	}
	tasks := make([]service.Task, 0, len(out))
	for _, w := range out {
		t, err := w.toTask()
		if err != nil {
			return nil, malformed(err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, text string) (service.Task, error) {
	var out wireTask
	if err := c.do(ctx, c.authed, http.MethodPost, "/todos", map[string]string{"text": text}, &out); err != nil {
		return service.Task{}, err
	}
	t, err := out.toTask()
	if err != nil {
		return service.Task{}, malformed(err)
	}
	return t, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (service.Task, error) {
	body := wireUpdate{
		Completed:        upd.Completed,
		Text:             upd.Text,
		EstimatedMinutes: upd.EstimatedMinutes,
	}
	var out wireTask
	if err := c.do(ctx, c.authed, http.MethodPut, "/todos/"+url.PathEscape(id), body, &out); err != nil {
		return service.Task{}, err
	}
	t, err := out.toTask()
	if err != nil {
		return service.Task{}, malformed(err)
	}
	return t, nil
}

// DeleteTask implements service.Service. An empty body or "{}" is success.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
}

// do sends a JSON request and decodes a 2xx body into out. Every failure is
// returned as service.ErrNotAuthenticated, service.ErrUnavailable or a
// *service.APIError.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "method", method, "path", path, "err", err)
		return wrapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.log.Debug("api request", "method", method, "path", path,
		"status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", service.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &service.APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		if len(bytes.TrimSpace(data)) == 0 || json.Valid(data) {
			return nil
		}
		return &service.APIError{Status: resp.StatusCode, Err: service.ErrMalformed}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &service.APIError{Status: resp.StatusCode, Err: fmt.Errorf("%w: %v", service.ErrMalformed, err)}
	}
	return nil
}

func malformed(err error) error {
	return &service.APIError{Status: http.StatusOK, Err: fmt.Errorf("%w: %v", service.ErrMalformed, err)}
}

// wrapTransportError classifies errors that produced no HTTP response.
func wrapTransportError(ctx context.Context, err error) error {
	if errors.Is(err, service.ErrNotAuthenticated) {
		return service.ErrNotAuthenticated
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return fmt.Errorf("%w: request timed out", service.ErrUnavailable)
	}
	return fmt.Errorf("%w: %v", service.ErrUnavailable, err)
}

var _ service.Service = (*Client)(nil)
