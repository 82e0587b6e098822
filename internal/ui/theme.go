package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Every view derives its styles from the active
// theme through Styles, so cycling themes restyles the whole dashboard.
type Theme struct {
	Name string

	Background string // Outermost background
	Surface    string // Header and footer

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Rating buttons
	Like    string
	Dislike string
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	bar := lipgloss.NewStyle().
		Background(lipgloss.Color(t.Surface)).
		Padding(0, 1)

	return Styles{
		Background: lipgloss.NewStyle().Background(lipgloss.Color(t.Background)),

		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: bar.Foreground(lipgloss.Color(t.Text)),
		Footer: bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:   fg(t.Danger).Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Tab: fg(t.Muted).Padding(0, 2),
		TabActive: fg(t.Accent).
			Background(lipgloss.Color(t.SelectionBg)).
			Bold(true).
			Padding(0, 2),

		Key:       fg(t.Warning),
		Highlight: fg(t.Accent).Underline(true),

		Liked:    fg(t.Background).Background(lipgloss.Color(t.Like)).Bold(true),
		Disliked: fg(t.Background).Background(lipgloss.Color(t.Dislike)).Bold(true),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Logo      lipgloss.Style
	Selected  lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Key       lipgloss.Style
	Highlight lipgloss.Style

	// Active rating buttons.
	Liked    lipgloss.Style
	Disliked lipgloss.Style
}

// WithBackground returns a copy of Styles whose text styles carry bgColor
// instead of inheriting the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Background, &out.Text, &out.MutedText, &out.FaintText,
		&out.AccentText, &out.SuccessText, &out.WarningText, &out.DangerText,
		&out.InfoText, &out.Header, &out.Footer, &out.Logo, &out.Key,
	} {
		*st = st.Background(bg)
	}
	return out
}

// Theme definitions

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Studio":   studioTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Studio"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1

		SelectionBg:   "#2b3b51", // sel0
		SelectionText: "#cdcecf", // fg1

		Border:      "#39506d", // bg4
		BorderFocus: "#719cd6", // blue

		Text:    "#cdcecf", // fg1
		Muted:   "#738091", // comment
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#81b29a", // green
		Warning: "#dbc074", // yellow
		Danger:  "#c94f6d", // red
		Info:    "#63cdcf", // cyan

		Like:    "#81b29a", // green
		Dislike: "#c94f6d", // red
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Kanagawa",

		Background: "#16161D", // sumiInk0
		Surface:    "#1F1F28", // sumiInk3

		SelectionBg:   "#2D4F67", // waveBlue1
		SelectionText: "#DCD7BA", // fujiWhite

		Border:      "#54546D", // sumiInk6
		BorderFocus: "#7E9CD8", // crystalBlue

		Text:    "#DCD7BA", // fujiWhite
		Muted:   "#C8C093", // oldWhite
		Faint:   "#727169", // fujiGray
		Accent:  "#7E9CD8", // crystalBlue
		Success: "#98BB6C", // springGreen
		Warning: "#E6C384", // carpYellow
		Danger:  "#E46876", // waveRed
		Info:    "#7FB4CA", // springBlue

		Like:    "#98BB6C", // springGreen
		Dislike: "#E46876", // waveRed
	}
}

func studioTheme() Theme {
	// Dark palette modelled on the YouTube Studio web UI.
	return Theme{
		Name: "Studio",

		Background: "#0f0f0f",
		Surface:    "#212121",

		SelectionBg:   "#3f3f3f",
		SelectionText: "#f1f1f1",

		Border:      "#3f3f3f",
		BorderFocus: "#ff0033",

		Text:    "#f1f1f1",
		Muted:   "#aaaaaa",
		Faint:   "#717171",
		Accent:  "#3ea6ff",
		Success: "#2ba640",
		Warning: "#ffd600",
		Danger:  "#ff4e45",
		Info:    "#3ea6ff",

		Like:    "#3ea6ff",
		Dislike: "#ff4e45",
	}
}
