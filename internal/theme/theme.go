package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ghnotif/internal/github"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the
// application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ErrorStatusStyle highlights pipeline failures in the status bar.
var ErrorStatusStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// ReadItemStyle dims entries whose thread has no unread activity.
var ReadItemStyle = lipgloss.NewStyle().
	PaddingLeft(2).
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// TargetColor returns the accent color for a notification target,
// keyed by its kind and state.
func TargetColor(t github.Target) lipgloss.AdaptiveColor {
	switch target := t.(type) {
	case github.IssueMeta:
		if target.State.IsOpen() {
			return ColorGreen
		}
		return ColorMagenta
	case github.PullRequestMeta:
		switch target.State {
		case github.PullRequestMerged:
			return ColorMagenta
		case github.PullRequestClosed:
			return ColorRed
		default:
			return ColorGreen
		}
	case github.ReleaseMeta:
		return ColorBlue
	case github.DiscussionMeta:
		if target.State == github.DiscussionAnswered {
			return ColorGreen
		}
		return ColorYellow
	case github.CiBuild:
		return ColorOrange
	default:
		return ColorGray
	}
}

// TargetIcon returns a single-character marker for a target kind.
func TargetIcon(t github.Target) string {
	switch t.Kind() {
	case github.KindIssue:
		return "◉"
	case github.KindPullRequest:
		return "⇄"
	case github.KindRelease:
		return "⏏"
	case github.KindDiscussion:
		return "◆"
	case github.KindCiBuild:
		return "⚙"
	default:
		return "•"
	}
}

// StateStyle returns a color-coded style for a rendered state label
// such as "Open", "Merged", or "Answered".
func StateStyle(state string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch state {
	case "Open", "Answered":
		return base.Foreground(ColorGreen)
	case "Merged":
		return base.Foreground(ColorMagenta)
	case "Closed":
		return base.Foreground(ColorRed)
	case "Unanswered":
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}
