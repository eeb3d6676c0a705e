package setup

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ghnotif/internal/credential"
	"github.com/nhle/ghnotif/internal/theme"
)

// TokenSavedMsg signals that a token was stored and the inbox can start.
type TokenSavedMsg struct {
	Token string
}

// AbortedMsg signals the user cancelled first-run setup.
type AbortedMsg struct{}

// Model is the first-run view that collects a GitHub token and stores
// it in the system keyring.
type Model struct {
	form      *huh.Form
	token     string
	statusMsg string
	width     int
	height    int
}

// New creates the setup form.
func New(width, height int) Model {
	m := Model{width: width, height: height}
	m.form = m.buildForm()
	return m
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub Token").
				Description("A personal access token with the notifications scope").
				EchoMode(huh.EchoModePassword).
				Value(&m.token).
				Validate(validateToken),
		),
	).WithWidth(m.formWidth())
}

func validateToken(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}

func (m Model) formWidth() int {
	width := m.width - 8
	if width > 72 {
		width = 72
	}
	return width
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the setup view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if sizeMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = sizeMsg.Width
		m.height = sizeMsg.Height
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		token := strings.TrimSpace(m.token)
		if err := credential.Set(credential.TokenKey, token); err != nil {
			m.statusMsg = fmt.Sprintf("Could not store token: %v", err)
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return TokenSavedMsg{Token: token} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return AbortedMsg{} }
	}

	return m, cmd
}

// View renders the setup form.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Welcome to ghnotif")

	intro := theme.HelpStyle.Render(
		"No GitHub token found. Enter one to sync your notification inbox.",
	)

	parts := []string{title, intro, "", m.form.View()}
	if m.statusMsg != "" {
		parts = append(parts, theme.ErrorStatusStyle.Render(m.statusMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
