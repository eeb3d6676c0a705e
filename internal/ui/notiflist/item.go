package notiflist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ghnotif/internal/github"
	"github.com/nhle/ghnotif/internal/theme"
)

// Item wraps a hydrated notification for the bubbles list.
type Item struct {
	Notification github.Notification
}

// FilterValue returns the text the list's fuzzy filter matches on.
func (i Item) FilterValue() string {
	return i.Notification.Stub.Repository.FullName + " " +
		i.Notification.Stub.Subject.Title
}

// label renders "repo#N ⇄ title" without styling.
func (i Item) label() (repo string, subject string) {
	n := i.Notification
	repo = n.Stub.Repository.Name
	if number, ok := github.TargetNumber(n.Target); ok {
		repo = fmt.Sprintf("%s#%d", repo, number)
	}
	subject = fmt.Sprintf(
		"%s %s", theme.TargetIcon(n.Target), n.Stub.Subject.Title,
	)
	return repo, subject
}

// Delegate renders a single notification row: repo and number, a
// kind-colored icon and title, dimmed once the thread has been read.
type Delegate struct{}

func (d Delegate) Height() int  { return 1 }
func (d Delegate) Spacing() int { return 0 }

func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render writes one row of the notification list.
func (d Delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(Item)
	if !ok {
		return
	}

	repo, subject := item.label()
	n := item.Notification

	repoStyle := lipgloss.NewStyle()
	subjectStyle := lipgloss.NewStyle().
		Foreground(theme.TargetColor(n.Target))
	if !n.Stub.Unread {
		repoStyle = repoStyle.Foreground(theme.ColorGray)
		subjectStyle = lipgloss.NewStyle().Foreground(theme.ColorGray)
	}

	row := repoStyle.Render(repo+": ") + subjectStyle.Render(subject)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(row))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(row))
}
