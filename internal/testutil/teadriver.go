package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDrainDepth bounds Cmd draining so a self-scheduling model cannot loop.
const maxDrainDepth = 100

// cmdTimeout separates immediate Cmds from timer Cmds (ticks, cursor
// blink), which are skipped.
const cmdTimeout = 50 * time.Millisecond

// TeaDriver runs a bubbletea model synchronously: each message goes
// through Update and the returned Cmds are executed and fed back.
type TeaDriver struct {
	T        *testing.T
	Model    tea.Model
	Quitting bool
}

// NewTeaDriver sizes the model, then drains its Init Cmd.
func NewTeaDriver(t *testing.T, m tea.Model, width, height int) *TeaDriver {
	t.Helper()
	d := &TeaDriver{T: t, Model: m}
	d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: width, Height: height})
	d.drain(d.Model.Init(), 0)
	return d
}

// Send dispatches msg and drains the resulting Cmds.
func (d *TeaDriver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd, 0)
}

// PressKey sends a single rune key.
func (d *TeaDriver) PressKey(r rune) {
	d.T.Helper()
	if r == ' ' {
		d.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		return
	}
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Press sends a special key such as tea.KeyEnter or tea.KeyEsc.
func (d *TeaDriver) Press(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

// Type sends s one rune at a time.
func (d *TeaDriver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

// View renders the model.
func (d *TeaDriver) View() string {
	return d.Model.View()
}

func (d *TeaDriver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDrainDepth {
		d.T.Logf("tea driver: drain depth limit (%d) reached", maxDrainDepth)
		return
	}

	msg := runWithTimeout(cmd)
	if msg == nil || isBlink(msg) {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			d.drain(sub, depth+1)
		}
		return
	}
	if _, ok := msg.(tea.QuitMsg); ok {
		d.Quitting = true
		return
	}

	var next tea.Cmd
	d.Model, next = d.Model.Update(msg)
	d.drain(next, depth+1)
}

func runWithTimeout(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
