// Package tui is the interactive terminal view over the task list.
package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todoctl/internal/notify"
	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/tasklist"
	"todoctl/internal/theme"
)

// tickInterval controls how often expired notifications disappear from
// the screen.
const tickInterval = 250 * time.Millisecond

// Options are the shared components the view renders and drives.
type Options struct {
	Tasks   *tasklist.Controller
	Notes   *notify.Channel
	Theme   *theme.Flag
	Session *session.Store
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeEstimate
	modeFilter
)

type loadedMsg struct{ err error }

// opDoneMsg follows every mutation. The controller has already updated
// the collection and pushed the outcome notification.
type opDoneMsg struct{ err error }

type tickMsg time.Time

// Model is the bubbletea model.
type Model struct {
	ctx  context.Context
	opts Options
	keys keyMap

	styles  styles
	width   int
	height  int
	loading bool

	cursor   int
	filter   string
	mode     mode
	input    textinput.Model
	targetID string // task being edited or estimated
}

// New creates the model. Call Init (or Run) to load tasks.
func New(ctx context.Context, opts Options) *Model {
	ti := textinput.New()
	ti.CharLimit = 500
	return &Model{
		ctx:     ctx,
		opts:    opts,
		keys:    defaultKeys(),
		styles:  newStyles(opts.Theme.Dark()),
		loading: true,
		input:   ti,
	}
}

// Run shows the view until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) load() tea.Cmd {
	tasks, ctx := m.opts.Tasks, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: tasks.Load(ctx)}
	}
}

// run wraps a controller call in a Cmd.
func (m *Model) run(op func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: op(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-20)
		return m, nil

	case tickMsg:
		return m, tick()

	case loadedMsg:
		m.loading = false
		m.clampCursor()
		return m, nil

	case opDoneMsg:
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, m.run(func(ctx context.Context) error {
				_, err := m.opts.Tasks.Toggle(ctx, t.ID)
				return err
			})
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			return m, m.run(func(ctx context.Context) error {
				return m.opts.Tasks.Remove(ctx, t.ID)
			})
		}
	case key.Matches(msg, m.keys.Add):
		return m, m.startInput(modeAdd, "", "new task: ", "")
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			return m, m.startInput(modeEdit, t.ID, "edit: ", t.Text)
		}
	case key.Matches(msg, m.keys.Estimate):
		if t, ok := m.selected(); ok {
			current := ""
			if t.EstimatedMinutes != nil {
				current = tasklist.FormatMinutes(*t.EstimatedMinutes)
			}
			return m, m.startInput(modeEstimate, t.ID, "estimate (90, 45m, 1h30m): ", current)
		}
	case key.Matches(msg, m.keys.Filter):
		return m, m.startInput(modeFilter, "", "filter: ", m.filter)
	case key.Matches(msg, m.keys.Theme):
		// On a save failure the flag and palette stay as they were.
		dark, err := m.opts.Theme.Toggle(m.ctx)
		if err != nil {
			m.opts.Notes.Push("could not save theme", notify.Warning, 0)
		}
		m.styles = newStyles(dark)
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m *Model) startInput(md mode, targetID, prompt, value string) tea.Cmd {
	m.mode = md
	m.targetID = targetID
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeBrowse
	m.targetID = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.mode == modeFilter {
			m.filter = ""
			m.clampCursor()
		}
		m.stopInput()
		return m, nil
	case tea.KeyEnter:
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeFilter {
		m.filter = m.input.Value()
		m.clampCursor()
	}
	return m, cmd
}

// submit completes the active input mode. Validation is left to the
// controller so rejected input produces the same notifications as the CLI.
func (m *Model) submit() tea.Cmd {
	value, id, md := m.input.Value(), m.targetID, m.mode
	m.stopInput()

	switch md {
	case modeAdd:
		return m.run(func(ctx context.Context) error {
			_, err := m.opts.Tasks.Create(ctx, value)
			return err
		})
	case modeEdit:
		return m.run(func(ctx context.Context) error {
			_, err := m.opts.Tasks.Rename(ctx, id, value)
			return err
		})
	case modeEstimate:
		minutes, err := tasklist.ParseMinutes(value)
		if err != nil {
			m.opts.Notes.Push("invalid estimate (use 90, 45m or 1h30m)", notify.Warning, 0)
			return nil
		}
		return m.run(func(ctx context.Context) error {
			_, err := m.opts.Tasks.SetEstimate(ctx, id, minutes)
			return err
		})
	case modeFilter:
		m.filter = value
		m.clampCursor()
	}
	return nil
}

func (m *Model) visible() []service.Task {
	return m.opts.Tasks.Filter(m.filter)
}

func (m *Model) selected() (service.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
