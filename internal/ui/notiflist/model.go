package notiflist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ghnotif/internal/github"
	"github.com/nhle/ghnotif/internal/keys"
	"github.com/nhle/ghnotif/internal/theme"
)

// OpenRequestMsg is sent when the user opens the selected notification
// for detail viewing.
type OpenRequestMsg struct {
	Notification github.Notification
}

// BrowseRequestMsg is sent when the user asks to open the selected
// notification in the browser.
type BrowseRequestMsg struct {
	Notification github.Notification
}

// MarkAsReadRequestMsg is sent when the user marks the selected
// notification as read.
type MarkAsReadRequestMsg struct {
	Notification github.Notification
}

// RefreshRequestMsg is sent when the user requests a manual refresh.
type RefreshRequestMsg struct{}

// Model is the inbox list view.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates the notification list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetNotifications replaces the list contents with a fresh snapshot,
// keeping the cursor on the same row where possible.
func (m *Model) SetNotifications(notifications []github.Notification) tea.Cmd {
	items := make([]list.Item, len(notifications))
	for i, n := range notifications {
		items[i] = Item{Notification: n}
	}

	index := m.list.Index()
	cmd := m.list.SetItems(items)
	if index >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	return cmd
}

// Selected returns the currently highlighted notification.
func (m Model) Selected() (github.Notification, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return github.Notification{}, false
	}
	return item.Notification, true
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch {
		case key.Matches(keyMsg, m.keys.Open):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenRequestMsg{Notification: n} }
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.OpenInBrowser):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return BrowseRequestMsg{Notification: n} }
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.MarkAsRead):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return MarkAsReadRequestMsg{Notification: n} }
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshRequestMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when the inbox is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	return style.Render(
		"Inbox zero.\n\nPress r to refresh.",
	)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
