package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/ghnotif/internal/browser"
	"github.com/nhle/ghnotif/internal/keys"
	"github.com/nhle/ghnotif/internal/pipeline"
	"github.com/nhle/ghnotif/internal/remote"
	"github.com/nhle/ghnotif/internal/ui"
	"github.com/nhle/ghnotif/internal/ui/detail"
	"github.com/nhle/ghnotif/internal/ui/helpview"
	"github.com/nhle/ghnotif/internal/ui/notiflist"
	"github.com/nhle/ghnotif/internal/ui/setup"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewSetup
)

// WorkerFactory builds the sync pipeline once a token is available.
// First-run setup calls it after the token is stored.
type WorkerFactory func(token string) *pipeline.Worker

// Model is the root Bubble Tea model that manages view routing, layout,
// and the background sync pipeline.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	notifList notiflist.Model
	detail    detail.Model
	helpView  helpview.Model
	setupView setup.Model

	worker     *pipeline.Worker
	newWorker  WorkerFactory
	spinner    spinner.Model
	ready      bool
	busy       bool
	statusMsg  string
	statusErr  bool
	lastSynced time.Time
}

// New creates the root application model. When token is empty the app
// starts in first-run setup and builds the worker with newWorker once
// a token has been stored.
func New(token string, newWorker WorkerFactory) Model {
	k := keys.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		currentView: ViewList,
		keys:        k,
		notifList:   notiflist.New(k, 80, 24),
		detail:      detail.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		setupView:   setup.New(80, 24),
		newWorker:   newWorker,
		spinner:     sp,
	}

	if token == "" {
		m.currentView = ViewSetup
	} else {
		m.worker = newWorker(token)
	}
	return m
}

// Init starts the pipeline and triggers the initial refresh, or opens
// first-run setup when no token is stored yet.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewSetup {
		return m.setupView.Init()
	}
	return tea.Batch(m.worker.Start(), m.worker.Refresh())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.notifList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.setupView.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can lay themselves out.
		return m.updateActiveView(msg)

	case pipeline.TaskStartedMsg:
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, m.worker.WaitForNextResult())

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pipeline.TaskDoneMsg:
		m.busy = false
		return m, m.worker.WaitForNextResult()

	case pipeline.NotificationsReplacedMsg:
		m.lastSynced = time.Now()
		m.setStatus(fmt.Sprintf("Synced %d notifications", msg.Count), false)
		cmd := m.notifList.SetNotifications(m.worker.Cache().Snapshot())
		return m, tea.Batch(cmd, m.worker.WaitForNextResult())

	case pipeline.NotificationRemovedMsg:
		cmd := m.notifList.SetNotifications(m.worker.Cache().Snapshot())
		return m, tea.Batch(cmd, m.worker.WaitForNextResult())

	case pipeline.OpenURLResolvedMsg:
		if err := browser.Open(msg.URL); err != nil {
			m.setStatus(fmt.Sprintf("Could not open browser: %v", err), true)
		}
		return m, m.worker.WaitForNextResult()

	case pipeline.ItemLoadedMsg:
		switch {
		case msg.Issue != nil:
			m.detail.SetIssue(msg.Issue)
		case msg.PullRequest != nil:
			m.detail.SetPullRequest(msg.PullRequest)
		case msg.Discussion != nil:
			m.detail.SetDiscussion(msg.Discussion)
		}
		m.currentView = ViewDetail
		return m, m.worker.WaitForNextResult()

	case pipeline.OperationFailedMsg:
		m.setStatus(describeError(msg.Err), true)
		if m.currentView == ViewDetail && m.detailLoading() {
			m.currentView = ViewList
		}
		return m, m.worker.WaitForNextResult()

	case notiflist.OpenRequestMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetLoading(true)
		return m, m.worker.OpenItem(msg.Notification)

	case notiflist.BrowseRequestMsg:
		return m, m.worker.ResolveOpenURL(msg.Notification)

	case notiflist.MarkAsReadRequestMsg:
		return m, m.worker.MarkAsRead(msg.Notification)

	case notiflist.RefreshRequestMsg:
		return m, m.worker.Refresh()

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case setup.TokenSavedMsg:
		m.worker = m.newWorker(msg.Token)
		m.currentView = ViewList
		return m, tea.Batch(m.worker.Start(), m.worker.Refresh())

	case setup.AbortedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		// Any keypress clears a lingering status line.
		m.statusMsg = ""
		m.statusErr = false

		switch msg.String() {
		case "ctrl+c":
			m.stopWorker()
			return m, tea.Quit

		case "q":
			if m.currentView == ViewList {
				m.stopWorker()
				return m, tea.Quit
			}

		case "?":
			if m.currentView == ViewSetup {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.notifList, cmd = m.notifList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewSetup {
		return m.setupView.View()
	}

	headerTitle := "GitHub Notifications"
	if count := m.unreadCount(); count > 0 {
		headerTitle = fmt.Sprintf("GitHub Notifications [%d]", count)
	}
	header := m.layout.RenderHeader(headerTitle, m.syncStatus())
	content := m.renderContent()

	statusText, statusIsErr := m.statusLine()
	statusBar := m.layout.RenderStatusBar(statusText, statusIsErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.notifList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// syncStatus returns a short indicator for the header's right edge.
func (m Model) syncStatus() string {
	if m.busy {
		return m.spinner.View() + "syncing"
	}
	if m.lastSynced.IsZero() {
		return "not synced"
	}
	return "synced " + m.lastSynced.Format("15:04")
}

// statusLine picks the status bar content: an error or status message
// when one is pending, key hints otherwise.
func (m Model) statusLine() (string, bool) {
	if m.statusMsg != "" {
		return m.statusMsg, m.statusErr
	}
	return m.keyHints(), false
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | j/k scroll | q quit"
	default:
		return "enter open | o browser | d mark read | r refresh | ? help | q quit"
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusErr = isErr
}

func (m Model) unreadCount() int {
	if m.worker == nil {
		return 0
	}
	return m.worker.Cache().Len()
}

// detailLoading reports whether the detail view is still waiting for
// its content, meaning a failed open should fall back to the list.
func (m Model) detailLoading() bool {
	return m.detail.Loading()
}

func (m *Model) stopWorker() {
	if m.worker != nil {
		m.worker.Stop()
	}
}

// describeError maps pipeline failures to actionable status text.
func describeError(err error) string {
	switch {
	case remote.IsAuthError(err):
		return "Authentication failed: check your GitHub token"
	case remote.IsRateLimitError(err):
		var rle *remote.RateLimitError
		if errors.As(err, &rle) && !rle.ResetAt.IsZero() {
			return fmt.Sprintf(
				"Rate limited by GitHub, resets at %s",
				rle.ResetAt.Local().Format("15:04:05"),
			)
		}
		return "Rate limited by GitHub, try again later"
	}

	var hydrationErr *remote.HydrationError
	if errors.As(err, &hydrationErr) {
		return fmt.Sprintf(
			"Refresh failed: %d notifications could not be resolved",
			len(hydrationErr.Failures),
		)
	}

	var browseErr *remote.NoBrowsableURLError
	if errors.As(err, &browseErr) {
		return "Nothing to open in the browser for this notification"
	}

	return err.Error()
}
