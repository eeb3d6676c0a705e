package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ghnotif/internal/github"
	"github.com/nhle/ghnotif/internal/keys"
	"github.com/nhle/ghnotif/internal/theme"
)

// BackMsg is sent when the user leaves the detail view.
type BackMsg struct{}

// Model renders a fully loaded issue, pull request, or discussion in a
// scrollable panel.
type Model struct {
	viewport viewport.Model
	keys     *keys.KeyMap
	title    string
	loading  bool
	width    int
	height   int
}

// New creates an empty detail model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// SetLoading toggles the loading placeholder.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// Loading reports whether the view is still waiting for its content.
func (m Model) Loading() bool {
	return m.loading
}

// SetIssue fills the view with an issue and its timeline.
func (m *Model) SetIssue(issue *github.Issue) {
	meta := issue.Meta
	m.loading = false
	m.title = fmt.Sprintf(
		"%s/%s#%d", meta.Repo.Owner, meta.Repo.Name, meta.Number,
	)

	var b strings.Builder
	writeHeader(&b, meta.Title, meta.State.String(), meta.Author)
	b.WriteString(meta.Body)
	b.WriteString("\n")
	writeEvents(&b, issue.Events)

	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

// SetPullRequest fills the view with a pull request and its timeline.
func (m *Model) SetPullRequest(pr *github.PullRequest) {
	meta := pr.Meta
	m.loading = false
	m.title = fmt.Sprintf(
		"%s/%s#%d", meta.Repo.Owner, meta.Repo.Name, meta.Number,
	)

	var b strings.Builder
	writeHeader(&b, meta.Title, meta.State.String(), meta.Author)
	b.WriteString(meta.Body)
	b.WriteString("\n")
	writeEvents(&b, pr.Events)

	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

// SetDiscussion fills the view with a discussion thread.
func (m *Model) SetDiscussion(disc *github.Discussion) {
	meta := disc.Meta
	m.loading = false
	m.title = fmt.Sprintf(
		"%s/%s discussion #%d", meta.Repo.Owner, meta.Repo.Name, meta.Number,
	)

	var b strings.Builder
	writeHeader(&b, meta.Title, meta.State.String(), disc.Author)
	fmt.Fprintf(&b, "%s\n▲ %d\n", disc.Body, disc.Upvotes)

	for _, answer := range disc.Answers {
		marker := " "
		if answer.IsAnswer {
			marker = "✓"
		}
		fmt.Fprintf(
			&b, "\n%s %s (▲ %d)\n%s\n",
			marker, answer.Author, answer.Upvotes, answer.Body,
		)
		for _, reply := range answer.Replies {
			fmt.Fprintf(&b, "    %s: %s\n", reply.Author, reply.Body)
		}
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

// writeHeader renders the shared title/state/author block.
func writeHeader(b *strings.Builder, title, state string, author github.User) {
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(theme.StateStyle(state).Render(state))
	fmt.Fprintf(b, " opened by %s\n\n", author)
}

// writeEvents renders a timeline, one event per block.
func writeEvents(b *strings.Builder, events []github.TimelineEvent) {
	for _, ev := range events {
		b.WriteString("\n")
		b.WriteString(formatEvent(ev))
		b.WriteString("\n")
	}
}

// formatEvent renders one timeline event as a short line, with bodies
// indented beneath comment and review entries.
func formatEvent(ev github.TimelineEvent) string {
	actor := ev.Actor.String()

	switch ev.Kind {
	case github.EventCommented:
		return fmt.Sprintf("%s commented:\n%s", actor, indent(ev.Body))
	case github.EventClosed:
		if ev.Closer != "" {
			return fmt.Sprintf("%s closed this via %s", actor, ev.Closer)
		}
		return fmt.Sprintf("%s closed this", actor)
	case github.EventReopened:
		return fmt.Sprintf("%s reopened this", actor)
	case github.EventMerged:
		return fmt.Sprintf("%s merged this into %s", actor, ev.Branch)
	case github.EventCommitted:
		return fmt.Sprintf("%s committed %s: %s", actor, ev.CommitID, ev.CommitSummary)
	case github.EventLabeled:
		return fmt.Sprintf("%s added the %q label", actor, ev.Label)
	case github.EventUnlabeled:
		return fmt.Sprintf("%s removed the %q label", actor, ev.Label)
	case github.EventAssigned:
		return fmt.Sprintf("%s assigned @%s", actor, ev.Reviewer)
	case github.EventUnassigned:
		return fmt.Sprintf("%s unassigned @%s", actor, ev.Reviewer)
	case github.EventMilestoned:
		return fmt.Sprintf("%s added this to the %q milestone", actor, ev.To)
	case github.EventRenamed:
		return fmt.Sprintf("%s renamed this from %q to %q", actor, ev.From, ev.To)
	case github.EventLocked:
		return fmt.Sprintf("%s locked this conversation", actor)
	case github.EventUnlocked:
		return fmt.Sprintf("%s unlocked this conversation", actor)
	case github.EventPinned:
		return fmt.Sprintf("%s pinned this", actor)
	case github.EventUnpinned:
		return fmt.Sprintf("%s unpinned this", actor)
	case github.EventReferenced:
		return fmt.Sprintf("%s referenced this from %s: %s", actor, ev.CommitID, ev.CommitSummary)
	case github.EventCrossReferenced:
		return fmt.Sprintf("%s cross-referenced this from %s %q", actor, ev.Closer, ev.CommitSummary)
	case github.EventReviewed:
		line := fmt.Sprintf("%s reviewed (%s)", actor, ev.ReviewState)
		if ev.Body != "" {
			line += ":\n" + indent(ev.Body)
		}
		return line
	case github.EventReviewRequested:
		return fmt.Sprintf("%s requested a review from @%s", actor, ev.Reviewer)
	case github.EventReadyForReview:
		return fmt.Sprintf("%s marked this as ready for review", actor)
	case github.EventConvertedToDraft:
		return fmt.Sprintf("%s converted this to a draft", actor)
	case github.EventHeadRefDeleted:
		return fmt.Sprintf("%s deleted the %s branch", actor, ev.Branch)
	case github.EventSubscribed:
		return "you were subscribed"
	case github.EventMentioned:
		return "you were mentioned"
	default:
		return theme.HelpStyle.Render(fmt.Sprintf("(%s)", ev.Raw))
	}
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail panel.
func (m Model) View() string {
	if m.loading {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading…")
	}

	title := theme.HeaderStyle.Render(m.title)
	return lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View())
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
