// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todoctl/internal/service"
	"todoctl/internal/tasklist"
)

// FormatTask formats a numbered task line.
// Format: "{N:>4}  [x] {TEXT}  ({ESTIMATE})\n". The estimate is omitted
// when unset.
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s", num, checkbox(task.Completed), NormalizeText(task.Text))
	if task.EstimatedMinutes != nil {
		fmt.Fprintf(w, "  (%s)", tasklist.FormatMinutes(*task.EstimatedMinutes))
	}
	fmt.Fprintln(w)
}

// FormatTaskDetail formats a task with its id, for --id lookups and debugging.
// Format: "{TEXT}\n  id: {ID}\n  status: done|pending\n  estimate: {ESTIMATE}\n"
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintln(w, NormalizeText(task.Text))
	fmt.Fprintf(w, "  id: %s\n", task.ID)
	status := "pending"
	if task.Completed {
		status = "done"
	}
	fmt.Fprintf(w, "  status: %s\n", status)
	if task.EstimatedMinutes != nil {
		fmt.Fprintf(w, "  estimate: %s\n", tasklist.FormatMinutes(*task.EstimatedMinutes))
	}
}

// FormatStats formats the totals line.
// Format: "{TOTAL} total, {DONE} completed, {PENDING} pending[, {EST} estimated]\n"
func FormatStats(w io.Writer, s tasklist.Stats) {
	fmt.Fprintf(w, "%d total, %d completed, %d pending", s.Total, s.Completed, s.Pending)
	if s.EstimatedMinutes > 0 {
		fmt.Fprintf(w, ", %s estimated", tasklist.FormatMinutes(s.EstimatedMinutes))
	}
	fmt.Fprintln(w)
}

// FormatUser formats the session identity for whoami.
func FormatUser(w io.Writer, u service.User) {
	if u.Email != "" {
		fmt.Fprintf(w, "%s <%s>\n", u.Username, u.Email)
		return
	}
	fmt.Fprintln(w, u.Username)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// NormalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
