package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
)

// staticCursor stops the cursor from blinking so inputs never schedule
// blink ticks.
func staticCursor(c *cursor.Model) {
	_ = c.SetMode(cursor.CursorStatic)
}

// newDraftArea builds a multi-line draft input.
func newDraftArea(placeholder string, limit int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = "│ "
	ta.CharLimit = limit
	ta.SetHeight(3)
	ta.SetWidth(60)
	staticCursor(&ta.Cursor)
	return ta
}

// blank reports whether s has no visible content.
func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
