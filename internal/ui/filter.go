package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/five82/companion/internal/api"
)

// commentRow is one visible comment with the byte offsets of its text
// that matched the filter.
type commentRow struct {
	comment api.Comment
	matched []int
}

// filterComments returns the comments to show for query, best match first.
// An empty query keeps server order.
func filterComments(comments []api.Comment, query string) []commentRow {
	query = strings.TrimSpace(query)
	if query == "" {
		rows := make([]commentRow, len(comments))
		for i, c := range comments {
			rows[i] = commentRow{comment: c}
		}
		return rows
	}

	// fuzzy matches case-insensitively and reports byte offsets into the
	// text it was given, so the text must not be case-folded first.
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}
	matches := fuzzy.Find(query, texts)
	rows := make([]commentRow, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, commentRow{comment: comments[match.Index], matched: match.MatchedIndexes})
	}
	return rows
}

// filterNotes returns the notes whose content contains query as a fuzzy
// subsequence, closest first. An empty query keeps server order.
func filterNotes(notes []api.Note, query string) []api.Note {
	query = strings.TrimSpace(query)
	if query == "" {
		return notes
	}

	contents := make([]string, len(notes))
	for i, n := range notes {
		contents[i] = n.Content
	}
	ranks := fuzzysearch.RankFindNormalizedFold(query, contents)
	sort.Stable(ranks)
	out := make([]api.Note, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, notes[r.OriginalIndex])
	}
	return out
}

// highlightMatches renders text with the matched byte offsets emphasised.
func highlightMatches(text string, matched []int, base, hit lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(text)
	}
	set := make(map[int]bool, len(matched))
	for _, idx := range matched {
		set[idx] = true
	}
	var b strings.Builder
	for i, r := range text {
		if set[i] {
			b.WriteString(hit.Render(string(r)))
			continue
		}
		b.WriteString(base.Render(string(r)))
	}
	return b.String()
}

// newFilterInput builds the single-line filter prompt.
func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter"
	ti.CharLimit = 80
	staticCursor(&ti.Cursor)
	return ti
}
