package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const appTitle = "YouTube Companion"

// renderHeader draws the title bar with the signed-in user.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	left := bg.Render("▶ "+appTitle, styles.Logo)

	var right []string
	if u := m.snap.User; u != nil {
		right = append(right, bg.Render(u.DisplayName(), styles.Text))
		if u.Email != "" && u.Email != u.DisplayName() {
			right = append(right, bg.Render("<"+u.Email+">", styles.MutedText))
		}
		right = append(right, bg.Render("L", styles.Key)+bg.Sep(":")+bg.Render("Logout", styles.MutedText))
	}
	rightStr := strings.Join(right, bg.Spaces(2))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(rightStr) - 2
	line := left + bg.Spaces(max(gap, 1)) + rightStr
	return styles.Header.Width(m.width).Render(line)
}

// renderFooter draws key hints for the current context and the status line.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch {
	case m.dash.typing():
		commands = []cmd{{"ctrl+s", "Submit"}, {"esc", "Cancel"}, {"ctrl+l", "Logout"}}
	case m.dash.tab == tabNotes:
		commands = []cmd{
			{"a", "Add"}, {"e", "Edit"}, {"d", "Delete"}, {"/", "Filter"},
			{"+/-", "Rate"}, {"E", "Details"}, {"tab", "Comments"}, {"?", "More"},
		}
	default:
		commands = []cmd{
			{"c", "Comment"}, {"r", "Reply"}, {"d", "Delete"}, {"/", "Filter"},
			{"+/-", "Rate"}, {"E", "Details"}, {"tab", "Notes"}, {"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments, bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))
	left := strings.Join(segments, bg.Spaces(2))

	status := m.renderStatus(styles, bg)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		// Narrow terminals keep the status and drop the hints.
		return styles.Footer.Width(m.width).Render(status)
	}
	return styles.Footer.Width(m.width).Render(left + bg.Spaces(gap) + status)
}

func (m Model) renderStatus(styles Styles, bg BgStyle) string {
	if m.status.text == "" {
		return ""
	}
	style := styles.InfoText
	switch m.status.level {
	case statusSuccess:
		style = styles.SuccessText
	case statusWarn:
		style = styles.WarningText
	case statusError:
		style = styles.DangerText
	}
	return bg.Render(truncate(m.status.text, max(m.width/2, 20)), style)
}

// renderCentered places a single message in the middle of the screen.
func (m Model) renderCentered(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderNotFound() string {
	styles := m.theme.Styles()
	content := styles.DangerText.Render("Page not found") + "\n\n" +
		styles.MutedText.Render("Press enter to go to the dashboard.")
	return m.renderCentered(lipgloss.JoinVertical(lipgloss.Center, content))
}
