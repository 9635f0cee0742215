package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todoctl/internal/notify"
	"todoctl/internal/service"
	"todoctl/internal/tasklist"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.body())
	b.WriteString("\n")

	if m.mode != modeBrowse {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else if m.filter != "" {
		b.WriteString(m.styles.Stats.Render("filter: " + m.filter))
		b.WriteString("\n")
	}

	for _, n := range m.opts.Notes.Active() {
		b.WriteString(m.noteStyle(n.Kind).Render(n.Message))
		b.WriteString("\n")
	}

	b.WriteString(m.help())
	return b.String()
}

func (m *Model) header() string {
	title := "todoctl"
	if m.opts.Session != nil {
		if u, ok := m.opts.Session.User(); ok {
			title += " · " + u.Username
		}
	}
	s := m.opts.Tasks.Stats()
	stats := fmt.Sprintf("%d total, %d completed, %d pending", s.Total, s.Completed, s.Pending)
	if s.EstimatedMinutes > 0 {
		stats += ", " + tasklist.FormatMinutes(s.EstimatedMinutes) + " estimated"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(title),
		m.styles.Stats.Render(stats),
	)
}

func (m *Model) body() string {
	if m.loading && !m.opts.Tasks.Loaded() {
		return m.styles.Stats.Render("loading...") + "\n"
	}
	tasks := m.visible()
	if len(tasks) == 0 {
		if m.filter != "" {
			return m.styles.Stats.Render("no tasks match "+m.filter) + "\n"
		}
		return m.styles.Stats.Render("no tasks yet, press a to add one") + "\n"
	}

	var b strings.Builder
	for i, t := range tasks {
		b.WriteString(m.row(t, i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) row(t service.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	text := t.Text
	if text == "" {
		text = "(untitled)"
	}

	style := m.styles.Item
	switch {
	case selected:
		style = m.styles.Selected
	case t.Completed:
		style = m.styles.Done
	}
	line := style.Render(cursor + box + " " + text)
	if t.EstimatedMinutes != nil {
		line += " " + m.styles.Estimate.Render("("+tasklist.FormatMinutes(*t.EstimatedMinutes)+")")
	}
	return line
}

func (m *Model) noteStyle(k notify.Kind) lipgloss.Style {
	switch k {
	case notify.Success:
		return m.styles.Success
	case notify.Warning:
		return m.styles.Warning
	case notify.Error:
		return m.styles.Error
	default:
		return m.styles.Info
	}
}

func (m *Model) help() string {
	if m.mode != modeBrowse {
		return m.styles.Help.Render("enter confirm · esc cancel")
	}
	parts := make([]string, 0, len(m.keys.short()))
	for _, k := range m.keys.short() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.Help.Render(strings.Join(parts, " · "))
}
