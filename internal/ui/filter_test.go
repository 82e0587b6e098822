package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/companion/internal/api"
)

func TestFilterCommentsEmptyQueryKeepsOrder(t *testing.T) {
	comments := []api.Comment{{CommentID: "a", Text: "one"}, {CommentID: "b", Text: "two"}}

	rows := filterComments(comments, "  ")

	if len(rows) != 2 || rows[0].comment.CommentID != "a" || rows[1].comment.CommentID != "b" {
		t.Fatalf("rows = %+v, want server order", rows)
	}
	if rows[0].matched != nil {
		t.Fatalf("matched = %v, want none", rows[0].matched)
	}
}

func TestFilterCommentsIsCaseInsensitive(t *testing.T) {
	comments := []api.Comment{
		{CommentID: "a", Text: "Nice editing"},
		{CommentID: "b", Text: "Great VIDEO"},
	}

	rows := filterComments(comments, "vid")

	if len(rows) != 1 || rows[0].comment.CommentID != "b" {
		t.Fatalf("rows = %+v, want [b]", rows)
	}
	if len(rows[0].matched) != 3 {
		t.Fatalf("matched = %v, want 3 offsets", rows[0].matched)
	}
}

func TestFilterNotes(t *testing.T) {
	notes := []api.Note{
		{ID: "1", Content: "Buy milk"},
		{ID: "2", Content: "Film the outro"},
		{ID: "3", Content: "fix INTRO lighting"},
	}

	if got := filterNotes(notes, ""); len(got) != 3 {
		t.Fatalf("empty query returned %d notes, want 3", len(got))
	}
	got := filterNotes(notes, "intro")
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("filterNotes(intro) = %+v, want [3]", got)
	}
	if got := filterNotes(notes, "zzz"); len(got) != 0 {
		t.Fatalf("filterNotes(zzz) = %+v, want none", got)
	}
}

func TestHighlightMatchesKeepsText(t *testing.T) {
	plain := lipgloss.NewStyle()
	if got := highlightMatches("hello", []int{0, 2}, plain, plain); got != "hello" {
		t.Fatalf("highlightMatches = %q, want hello", got)
	}
	if got := highlightMatches("hello", nil, plain, plain); got != "hello" {
		t.Fatalf("highlightMatches = %q, want hello", got)
	}
}

func TestFilterCommentsOffsetsPointIntoOriginalText(t *testing.T) {
	// İ lowercases to a longer byte sequence.
	comments := []api.Comment{{CommentID: "a", Text: "İİ Video"}}

	rows := filterComments(comments, "vid")

	if len(rows) != 1 {
		t.Fatalf("rows = %+v, want one match", rows)
	}
	text := rows[0].comment.Text
	var got []byte
	for _, idx := range rows[0].matched {
		got = append(got, text[idx])
	}
	if string(got) != "Vid" {
		t.Fatalf("matched bytes = %q, want Vid", got)
	}
}
