package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/companion/internal/api"
)

type ratingState struct {
	pending bool
	flash   int
}

func (d dashboard) currentRating() api.Rating {
	if d.rating.HasData {
		return d.rating.Data
	}
	return api.RatingNone
}

// rateVideo applies clicked to the current rating. Selecting the active
// rating clears it. Both controls are disabled while a rating is pending.
func (m *Model) rateVideo(clicked api.Rating) tea.Cmd {
	if m.snap.User == nil || m.dash.videoData() == nil || m.dash.rate.pending {
		return nil
	}
	next := m.dash.currentRating().Toggle(clicked)
	m.dash.rate.pending = true
	m.clearStatus()
	return mutateCmd(m.dash.scope, m.muts.rate, opRate, m.dash.videoID(), next)
}

func (m Model) renderRating() string {
	if m.snap.User == nil {
		return ""
	}
	styles := m.theme.Styles()
	current := m.dash.currentRating()

	button := func(k, label string, active bool, on lipgloss.Style) string {
		if m.dash.rate.pending {
			return styles.FaintText.Render("[" + k + "] " + label)
		}
		if active {
			return on.Render("[" + k + "] " + label)
		}
		return styles.Key.Render("["+k+"]") + styles.MutedText.Render(" "+label)
	}

	line := button("+", "Like", current == api.RatingLike, styles.Liked) + "  " +
		button("-", "Dislike", current == api.RatingDislike, styles.Disliked)
	switch {
	case m.dash.rate.pending:
		line += "  " + m.spinnerView()
	case m.dash.rate.flash != 0:
		line += "  " + styles.SuccessText.Render("✓")
	}
	return line
}
