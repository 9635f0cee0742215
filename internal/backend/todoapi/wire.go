package todoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"todoctl/internal/service"
)

// flexID accepts a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", data)
	}
	*f = flexID(n.String())
	return nil
}

// wireTask is a task as the server sends it. Some deployments use "_id"
// and the older "estimatedTime" field name.
type wireTask struct {
	ID               flexID `json:"id"`
	MongoID          flexID `json:"_id"`
	Text             string `json:"text"`
	Title            string `json:"title"`
	Completed        bool   `json:"completed"`
	EstimatedMinutes *int   `json:"estimatedMinutes"`
	EstimatedTime    *int   `json:"estimatedTime"`
}

func (w wireTask) toTask() (service.Task, error) {
	id := string(w.ID)
	if id == "" {
		id = string(w.MongoID)
	}
	if id == "" {
		return service.Task{}, fmt.Errorf("task without id")
	}
	text := w.Text
	if text == "" {
		text = w.Title
	}
	est := w.EstimatedMinutes
	if est == nil {
		est = w.EstimatedTime
	}
	return service.Task{
		ID:               id,
		Text:             text,
		Completed:        w.Completed,
		EstimatedMinutes: est,
	}, nil
}

type wireUpdate struct {
	Completed        *bool   `json:"completed,omitempty"`
	Text             *string `json:"text,omitempty"`
	EstimatedMinutes *int    `json:"estimatedMinutes,omitempty"`
}

type wireUser struct {
	ID       flexID `json:"id"`
	MongoID  flexID `json:"_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (w wireUser) toUser() service.User {
	id := string(w.ID)
	if id == "" {
		id = string(w.MongoID)
	}
	username := w.Username
	if username == "" {
		username = w.Name
	}
	return service.User{ID: id, Username: username, Email: w.Email}
}

type wireAuth struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

// errorMessage extracts the server-provided message from an error body:
// the "error" key if it is a non-empty string, else "message".
func errorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message"} {
		switch v := payload[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
