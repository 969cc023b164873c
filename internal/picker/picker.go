// Package picker is a small bubbletea program for choosing a base document
// and an ordered list of preferences from the catalog.
package picker

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/promptlayers/internal/compose"
	"github.com/kingrea/promptlayers/internal/document"
)

// ErrCancelled is returned when the user leaves the picker without choosing.
var ErrCancelled = errors.New("picker: cancelled")

type stage int

const (
	stageBase stage = iota
	stagePreferences
	stageDone
	stageCancelled
)

type keyMap struct {
	Toggle  key.Binding
	Confirm key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

// docItem implements list.Item for catalog entries.
type docItem struct {
	entry document.Entry
	order int
}

func (i docItem) Title() string {
	if i.order > 0 {
		return fmt.Sprintf("[%d] %s", i.order, i.entry.ID)
	}
	return i.entry.ID
}
func (i docItem) Description() string { return i.entry.Path }
func (i docItem) FilterValue() string { return i.entry.ID }

// Model is the picker state.
type Model struct {
	stage       stage
	bases       list.Model
	preferences list.Model
	baseID      string
	selected    []string
	status      string
}

// New builds a picker over the catalog entries. Entries are split by role.
func New(entries []document.Entry) Model {
	var bases, prefs []list.Item
	for _, e := range entries {
		if e.Role == document.RolePreference {
			prefs = append(prefs, docItem{entry: e})
		} else {
			bases = append(bases, docItem{entry: e})
		}
	}
	m := Model{
		bases:       newList("Choose a base document", bases),
		preferences: newList("Layer preferences (space toggles, order is kept)", prefs),
	}
	if len(bases) == 0 {
		m.status = "No base documents found under the root."
	}
	return m
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.DisableQuitKeybindings()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Confirm, keys.Back}
	}
	return l
}

// Request returns the chosen request; ok is false until the user confirms.
func (m Model) Request() (compose.Request, bool) {
	if m.stage != stageDone {
		return compose.Request{}, false
	}
	return compose.Request{BaseID: m.baseID, PreferenceIDs: slices.Clone(m.selected)}, true
}

// Cancelled reports whether the user quit.
func (m Model) Cancelled() bool {
	return m.stage == stageCancelled
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := max(4, msg.Height-2)
		m.bases.SetSize(msg.Width, h)
		m.preferences.SetSize(msg.Width, h)
		return m, nil

	case tea.KeyMsg:
		if m.active().FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.Quit):
			m.stage = stageCancelled
			return m, tea.Quit
		case key.Matches(msg, keys.Confirm):
			return m.confirm()
		case key.Matches(msg, keys.Back):
			if m.stage == stagePreferences {
				m.stage = stageBase
				return m, nil
			}
		case key.Matches(msg, keys.Toggle):
			if m.stage == stagePreferences {
				return m.toggle()
			}
		}
	}

	var cmd tea.Cmd
	if m.stage == stagePreferences {
		m.preferences, cmd = m.preferences.Update(msg)
	} else {
		m.bases, cmd = m.bases.Update(msg)
	}
	return m, cmd
}

func (m Model) active() *list.Model {
	if m.stage == stagePreferences {
		return &m.preferences
	}
	return &m.bases
}

func (m Model) confirm() (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageBase:
		item, ok := m.bases.SelectedItem().(docItem)
		if !ok {
			return m, nil
		}
		m.baseID = item.entry.ID
		m.stage = stagePreferences
		return m, nil
	case stagePreferences:
		m.stage = stageDone
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) toggle() (tea.Model, tea.Cmd) {
	item, ok := m.preferences.SelectedItem().(docItem)
	if !ok {
		return m, nil
	}
	id := item.entry.ID
	if idx := slices.Index(m.selected, id); idx >= 0 {
		m.selected = slices.Delete(slices.Clone(m.selected), idx, idx+1)
	} else {
		m.selected = append(slices.Clone(m.selected), id)
	}
	return m, m.renumber()
}

// renumber refreshes the order badges after a toggle.
func (m *Model) renumber() tea.Cmd {
	var cmds []tea.Cmd
	for i, raw := range m.preferences.Items() {
		item := raw.(docItem)
		item.order = slices.Index(m.selected, item.entry.ID) + 1
		cmds = append(cmds, m.preferences.SetItem(i, item))
	}
	return tea.Batch(cmds...)
}

func (m Model) View() string {
	var body string
	switch m.stage {
	case stageBase:
		body = m.bases.View()
	case stagePreferences:
		body = m.preferences.View()
	default:
		return ""
	}
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	summary := "base: " + valueOr(m.baseID, "-") + "  preferences: " + valueOr(strings.Join(m.selected, " → "), "-")
	if m.status != "" {
		summary = m.status
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer.Render(summary))
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Run shows the picker on in/out and returns the chosen request.
func Run(entries []document.Entry, in io.Reader, out io.Writer) (compose.Request, error) {
	p := tea.NewProgram(New(entries), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return compose.Request{}, fmt.Errorf("picker: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return compose.Request{}, ErrCancelled
	}
	req, ok := m.Request()
	if !ok {
		return compose.Request{}, ErrCancelled
	}
	return req, nil
}
