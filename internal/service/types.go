package service

// Task represents a single task item.
type Task struct {
	ID               string
	Text             string
	Completed        bool
	EstimatedMinutes *int // nil when no estimate was set
}

// TaskUpdate carries the fields of a partial task update. Nil fields are
// left untouched by the server.
type TaskUpdate struct {
	Completed        *bool
	Text             *string
	EstimatedMinutes *int
}

// User is the authenticated identity.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// IsZero reports whether u carries no identity.
func (u User) IsZero() bool {
	return u.ID == "" && u.Username == ""
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string
	Password string
}

// Registration are the register inputs.
type Registration struct {
	Username string
	Email    string
	Password string
}

// Auth is a successful login or registration.
type Auth struct {
	Token string
	User  User
}

// Minutes returns a pointer to n, for building TaskUpdate values.
func Minutes(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s.
func String(s string) *string { return &s }
