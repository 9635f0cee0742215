package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"todoctl/internal/service"
)

// FakeAPI serves the todo HTTP API over a FakeService.
type FakeAPI struct {
	Server  *httptest.Server
	Service *FakeService

	// UseMongoIDs makes task and user payloads carry "_id" instead of "id".
	UseMongoIDs bool
}

// NewFakeAPI starts a fake API server. It is closed when the test ends.
// The base URL for clients is URL().
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	api := &FakeAPI{Service: NewFakeService()}

	r := mux.NewRouter()
	s := r.PathPrefix("/api").Subrouter()
	s.HandleFunc("/auth/register", api.register).Methods(http.MethodPost)
	s.HandleFunc("/auth/login", api.login).Methods(http.MethodPost)

	todos := s.PathPrefix("/todos").Subrouter()
	todos.Use(api.requireToken)
	todos.HandleFunc("", api.listTodos).Methods(http.MethodGet)
	todos.HandleFunc("", api.createTodo).Methods(http.MethodPost)
	todos.HandleFunc("/{id}", api.updateTodo).Methods(http.MethodPut)
	todos.HandleFunc("/{id}", api.deleteTodo).Methods(http.MethodDelete)

	api.Server = httptest.NewServer(r)
	t.Cleanup(api.Server.Close)
	return api
}

// URL returns the API base URL.
func (a *FakeAPI) URL() string {
	return a.Server.URL + "/api"
}

func (a *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !strings.HasPrefix(tok, "token-") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "No token, authorization denied"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	auth, err := a.Service.Register(r.Context(), service.Registration(in))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.authPayload(auth))
}

func (a *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	auth, err := a.Service.Login(r.Context(), service.Credentials(in))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.authPayload(auth))
}

func (a *FakeAPI) listTodos(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.Service.ListTasks(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	out := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, a.taskPayload(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *FakeAPI) createTodo(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	t, err := a.Service.CreateTask(r.Context(), in.Text)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.taskPayload(t))
}

func (a *FakeAPI) updateTodo(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Completed        *bool   `json:"completed"`
		Text             *string `json:"text"`
		EstimatedMinutes *int    `json:"estimatedMinutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	t, err := a.Service.UpdateTask(r.Context(), mux.Vars(r)["id"], service.TaskUpdate(in))
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.taskPayload(t))
}

func (a *FakeAPI) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.DeleteTask(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
}

func (a *FakeAPI) idKey() string {
	if a.UseMongoIDs {
		return "_id"
	}
	return "id"
}

func (a *FakeAPI) taskPayload(t service.Task) map[string]any {
	m := map[string]any{
		a.idKey():   t.ID,
		"text":      t.Text,
		"completed": t.Completed,
	}
	if t.EstimatedMinutes != nil {
		m["estimatedMinutes"] = *t.EstimatedMinutes
	}
	return m
}

func (a *FakeAPI) authPayload(auth service.Auth) map[string]any {
	m := map[string]any{
		"user": map[string]any{
			a.idKey():  auth.User.ID,
			"username": auth.User.Username,
			"email":    auth.User.Email,
		},
	}
	if auth.Token != "" {
		m["token"] = auth.Token
	}
	return m
}

func (a *FakeAPI) writeErr(w http.ResponseWriter, err error) {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		writeJSON(w, apiErr.Status, map[string]string{"message": apiErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
