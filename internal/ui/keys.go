package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Logout     key.Binding
	Refresh    key.Binding
	Tab        key.Binding
	Escape     key.Binding

	// Login
	Login key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Video
	Like      key.Binding
	Dislike   key.Binding
	EditVideo key.Binding

	// Comments and notes
	NewComment key.Binding
	Reply      key.Binding
	PrevReply  key.Binding
	NextReply  key.Binding
	NewNote    key.Binding
	EditNote   key.Binding
	Delete     key.Binding
	Filter     key.Binding

	// Inputs and dialogs
	Submit  key.Binding
	Confirm key.Binding
	Yes     key.Binding
	No      key.Binding
	Field   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L", "ctrl+l"),
			key.WithHelp("L", "Log out"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Refresh"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Comments/Notes"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		Login: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Sign in with Google"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		// Video
		Like: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "Like"),
		),
		Dislike: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Dislike"),
		),
		EditVideo: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "Edit details"),
		),

		// Comments and notes
		NewComment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Write comment"),
		),
		Reply: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reply"),
		),
		PrevReply: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous reply"),
		),
		NextReply: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next reply"),
		),
		NewNote: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add note"),
		),
		EditNote: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit note"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Filter"),
		),

		// Inputs and dialogs
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Submit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "No"),
		),
		Field: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Next field"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Up, k.Down, k.Top, k.Bottom},
		{k.Like, k.Dislike, k.EditVideo},
		{k.NewComment, k.Reply, k.PrevReply, k.NextReply, k.NewNote, k.EditNote, k.Delete, k.Filter},
		{k.Submit, k.Escape},
		{k.Refresh, k.CycleTheme, k.Logout, k.Help, k.Quit},
	}
}
