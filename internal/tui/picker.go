package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/helper/internal/history"
)

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Select key.Binding
	Quit   key.Binding
}

var pickerKeys = pickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Top: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "first"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "last"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
}

// PickerModel lists conversations and lets the user choose one
type PickerModel struct {
	conversations []*history.Conversation
	current       int64
	keys          pickerKeyMap

	cursor    int
	confirmed bool
	selected  *history.Conversation

	width  int
	height int
	ready  bool
}

// NewPickerModel creates a picker over h with the cursor on the current conversation
func NewPickerModel(h *history.History) PickerModel {
	m := PickerModel{
		conversations: h.List(),
		current:       h.CurrentConversationID,
		keys:          pickerKeys,
	}
	for i, conv := range m.conversations {
		if conv.ID == m.current {
			m.cursor = i
			break
		}
	}
	return m
}

// Init implements tea.Model
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tea.KeyMsg:
		n := len(m.conversations)

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case n == 0:
			return m, nil

		case key.Matches(msg, m.keys.Up):
			m.cursor = (m.cursor - 1 + n) % n

		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + 1) % n

		case key.Matches(msg, m.keys.Top):
			m.cursor = 0

		case key.Matches(msg, m.keys.Bottom):
			m.cursor = n - 1

		case key.Matches(msg, m.keys.Select):
			m.confirmed = true
			m.selected = m.conversations[m.cursor]
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model
func (m PickerModel) View() string {
	if !m.ready {
		return hintStyle.Render("  Initializing...")
	}

	width := m.width - 4
	if width < 40 {
		width = 40
	}

	header := headerStyle.Width(width).Render(
		lipgloss.JoinHorizontal(lipgloss.Center,
			titleStyle.Render("Select Conversation"),
			hintStyle.Render(fmt.Sprintf("  %d saved", len(m.conversations)))))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderList(width),
		m.renderStatusBar(width))
}

func (m PickerModel) renderList(width int) string {
	if len(m.conversations) == 0 {
		return panelStyle.Width(width).Render(errorStyle.Render("No conversations in history"))
	}

	maxItems := m.height - 10
	if maxItems < 5 {
		maxItems = 5
	}

	offset := 0
	if m.cursor >= maxItems {
		offset = m.cursor - maxItems + 1
	}
	end := offset + maxItems
	if end > len(m.conversations) {
		end = len(m.conversations)
	}

	var items []string
	if offset > 0 {
		items = append(items, hintStyle.Render("  ..."))
	}
	for i := offset; i < end; i++ {
		items = append(items, m.renderItem(i))
	}
	if end < len(m.conversations) {
		items = append(items, hintStyle.Render("  ..."))
	}

	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (m PickerModel) renderItem(i int) string {
	conv := m.conversations[i]

	cursor := "  "
	style := itemStyle
	if i == m.cursor {
		cursor = cursorStyle.Render("> ")
		style = selectedItemStyle
	}

	mark := " "
	if conv.ID == m.current {
		mark = currentMarkStyle.Render("*")
	}

	return fmt.Sprintf("%s%s %s %s",
		cursor,
		mark,
		style.Render(fmt.Sprintf("%3d  %s", conv.ID, conv.Title())),
		metaStyle.Render(fmt.Sprintf("(%d messages)", len(conv.Messages))))
}

func (m PickerModel) renderStatusBar(width int) string {
	bindings := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Quit}

	items := make([]string, 0, len(bindings))
	for _, b := range bindings {
		help := b.Help()
		items = append(items, statusKeyStyle.Render(help.Key)+statusDescStyle.Render(" "+help.Desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  |  "))
}

// Selected returns the chosen conversation and whether the user confirmed a choice
func (m PickerModel) Selected() (*history.Conversation, bool) {
	return m.selected, m.confirmed
}

// RunPicker shows the picker and returns the chosen conversation, or nil if
// the user quit without choosing.
func RunPicker(h *history.History) (*history.Conversation, error) {
	p := tea.NewProgram(NewPickerModel(h), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	if pm, ok := final.(PickerModel); ok {
		if conv, confirmed := pm.Selected(); confirmed {
			return conv, nil
		}
	}
	return nil, nil
}
