package route

// History is a navigation stack. Replace overwrites the current entry so
// Back never returns to a location that immediately redirects.
type History struct {
	entries []string
}

// NewHistory starts at path.
func NewHistory(path string) *History {
	return &History{entries: []string{path}}
}

// Push appends path.
func (h *History) Push(path string) {
	h.entries = append(h.entries, path)
}

// Replace overwrites the current entry.
func (h *History) Replace(path string) {
	if len(h.entries) == 0 {
		h.entries = []string{path}
		return
	}
	h.entries[len(h.entries)-1] = path
}

// Back pops the current entry. It reports false at the first entry.
func (h *History) Back() bool {
	if len(h.entries) <= 1 {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return true
}

// Current returns the active path.
func (h *History) Current() string {
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Entries returns a copy of the stack, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
