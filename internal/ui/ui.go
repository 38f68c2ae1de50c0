package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	// ErrCancelled is returned when the user leaves a picker without choosing.
	ErrCancelled = errors.New("selection cancelled")
	ErrNoItems   = errors.New("nothing to choose from")
)

// Model is a single-choice list picker.
type Model struct {
	list      list.Model
	help      help.Model
	keys      keyMap
	chosen    *Item
	cancelled bool
	err       error
	width     int
	height    int
}

// NewModel creates a picker over items.
func NewModel(title string, items []Item) *Model {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = listItem{item: it}
	}

	l := list.New(listItems, list.NewDefaultDelegate(), 80, 20)
	l.Title = title
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &Model{list: l, help: help.New(), keys: newKeyMap()}
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case Msg:
		if msg.kind == MsgContextDone {
			m.cancelled = true
			m.err, _ = msg.data.(error)
			return m, tea.Quit
		}

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back) && m.list.FilterState() == list.Unfiltered:
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if selected, ok := m.list.SelectedItem().(listItem); ok {
				m.chosen = &selected.item
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list with a short help line.
func (m *Model) View() string {
	if m.chosen != nil || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s\n%s", m.list.View(), styles.help.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
}

// Chosen returns the selected item, or false when nothing was picked.
func (m *Model) Chosen() (Item, bool) {
	if m.chosen == nil {
		return Item{}, false
	}
	return *m.chosen, true
}

// Pick runs an interactive picker and returns the chosen item.
func Pick(ctx context.Context, title string, items []Item, opts ...tea.ProgramOption) (Item, error) {
	if len(items) == 0 {
		return Item{}, ErrNoItems
	}

	m := NewModel(title, items)
	p := tea.NewProgram(m, opts...)

	stop := context.AfterFunc(ctx, func() { p.Send(contextDoneMsg(ctx.Err())) })
	defer stop()

	final, err := p.Run()
	if err != nil {
		return Item{}, fmt.Errorf("picker failed: %w", err)
	}

	fm := final.(*Model)
	if fm.err != nil {
		return Item{}, fm.err
	}
	if chosen, ok := fm.Chosen(); ok {
		return chosen, nil
	}
	return Item{}, ErrCancelled
}
