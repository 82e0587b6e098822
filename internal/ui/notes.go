package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/companion/internal/api"
)

// notesState is the local state of the notes section. At most one note is
// in edit mode at a time.
type notesState struct {
	draft     textarea.Model
	composing bool
	adding    bool

	selected int

	editingID api.ID
	editInput textarea.Model
	saving    bool

	deletingID api.ID

	filter    textinput.Model
	filtering bool
}

func newNotesState() notesState {
	edit := newDraftArea("", NoteCharLimit)
	edit.SetHeight(5)
	return notesState{
		draft:     newDraftArea("Write a private note…", NoteCharLimit),
		editInput: edit,
		filter:    newFilterInput(),
	}
}

func (n notesState) typing() bool {
	return n.composing || n.editingID != "" || n.filtering
}

func (m Model) visibleNotes() []api.Note {
	if !m.dash.notes.HasData {
		return nil
	}
	return filterNotes(m.dash.notes.Data, m.dash.nt.filter.Value())
}

func (m Model) selectedNote() (api.Note, bool) {
	notes := m.visibleNotes()
	if m.dash.nt.selected < 0 || m.dash.nt.selected >= len(notes) {
		return api.Note{}, false
	}
	return notes[m.dash.nt.selected], true
}

// handleNotesKey handles notes-tab keys while no input has focus.
func (m *Model) handleNotesKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	nt := &m.dash.nt
	count := len(m.visibleNotes())

	switch {
	case key.Matches(msg, m.keys.Up):
		if nt.selected > 0 {
			nt.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if nt.selected < count-1 {
			nt.selected++
		}
	case key.Matches(msg, m.keys.Top):
		nt.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		nt.selected = max(count-1, 0)
	case key.Matches(msg, m.keys.NewNote):
		if m.dash.videoID() == "" {
			m.setStatus(statusWarn, "Notes are available once the video has loaded")
			return true, nil
		}
		m.clearStatus()
		nt.composing = true
		return true, nt.draft.Focus()
	case key.Matches(msg, m.keys.EditNote):
		n, ok := m.selectedNote()
		if !ok {
			return true, nil
		}
		return true, m.startNoteEdit(n)
	case key.Matches(msg, m.keys.Delete):
		n, ok := m.selectedNote()
		if !ok {
			return true, nil
		}
		if nt.deletingID != "" {
			m.setStatus(statusWarn, "Wait for the current delete to finish")
			return true, nil
		}
		m.modal = newConfirmModal("Delete note?",
			"Delete the note \""+truncate(n.Content, 80)+"\"? This can't be undone.",
			confirmedMsg{op: opDeleteNote, target: n.ID})
	case key.Matches(msg, m.keys.Filter):
		nt.filtering = true
		return true, nt.filter.Focus()
	case key.Matches(msg, m.keys.Escape):
		if nt.filter.Value() == "" {
			return false, nil
		}
		nt.filter.SetValue("")
		nt.selected = 0
	default:
		return false, nil
	}
	return true, nil
}

// startNoteEdit puts n in edit mode, discarding any other edit in progress.
func (m *Model) startNoteEdit(n api.Note) tea.Cmd {
	nt := &m.dash.nt
	nt.editingID = n.ID
	nt.saving = false
	nt.editInput.SetValue(n.Content)
	m.clearStatus()
	return nt.editInput.Focus()
}

func (m *Model) cancelNoteEdit() {
	nt := &m.dash.nt
	nt.editingID = ""
	nt.editInput.Reset()
	nt.editInput.Blur()
}

// handleNotesInput routes keys to the focused notes input.
func (m *Model) handleNotesInput(msg tea.KeyMsg) tea.Cmd {
	nt := &m.dash.nt
	var cmd tea.Cmd

	switch {
	case nt.filtering:
		switch {
		case key.Matches(msg, m.keys.Escape):
			nt.filter.SetValue("")
			nt.filtering = false
			nt.filter.Blur()
			nt.selected = 0
		case key.Matches(msg, m.keys.Confirm):
			nt.filtering = false
			nt.filter.Blur()
		default:
			nt.filter, cmd = nt.filter.Update(msg)
			nt.selected = 0
		}
		return cmd

	case nt.editingID != "":
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.cancelNoteEdit()
			return nil
		case key.Matches(msg, m.keys.Submit):
			return m.saveNoteEdit()
		}
		nt.editInput, cmd = nt.editInput.Update(msg)
		return cmd

	case nt.composing:
		switch {
		case key.Matches(msg, m.keys.Escape):
			nt.composing = false
			nt.draft.Blur()
			return nil
		case key.Matches(msg, m.keys.Submit):
			return m.addNote()
		}
		nt.draft, cmd = nt.draft.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) addNote() tea.Cmd {
	nt := &m.dash.nt
	videoID := m.dash.videoID()
	content := nt.draft.Value()
	if videoID == "" || blank(content) || nt.adding {
		return nil
	}
	nt.adding = true
	m.clearStatus()
	return mutateCmd(m.dash.scope, m.muts.addNote, opAddNote, "",
		noteVars{videoID: videoID, content: strings.TrimSpace(content)})
}

// saveNoteEdit is disabled while the content is blank or a save is pending.
func (m *Model) saveNoteEdit() tea.Cmd {
	nt := &m.dash.nt
	content := nt.editInput.Value()
	if nt.editingID == "" || blank(content) || nt.saving {
		return nil
	}
	nt.saving = true
	m.clearStatus()
	return mutateCmd(m.dash.scope, m.muts.updateNote, opUpdateNote, nt.editingID,
		noteVars{videoID: m.dash.videoID(), noteID: nt.editingID, content: strings.TrimSpace(content)})
}

func (m *Model) deleteNote(id api.ID) tea.Cmd {
	nt := &m.dash.nt
	if nt.deletingID != "" {
		return nil
	}
	nt.deletingID = id
	m.clearStatus()
	return mutateCmd(m.dash.scope, m.muts.deleteNote, opDeleteNote, id,
		noteVars{videoID: m.dash.videoID(), noteID: id})
}

func (m *Model) settleNote(msg settledMsg) {
	nt := &m.dash.nt
	switch msg.op {
	case opAddNote:
		nt.adding = false
		if msg.err == nil {
			nt.draft.Reset()
			nt.draft.Blur()
			nt.composing = false
			m.setStatus(statusSuccess, "Note added")
		}
	case opUpdateNote:
		if nt.editingID == msg.target {
			nt.saving = false
			if msg.err == nil {
				m.cancelNoteEdit()
			}
		}
		if msg.err == nil {
			m.setStatus(statusSuccess, "Note saved")
		}
	case opDeleteNote:
		nt.deletingID = ""
		if msg.err == nil && nt.editingID == msg.target {
			m.cancelNoteEdit()
		}
	}
}

// renderNotesPanel returns the panel content and the first and last line
// of the focused block.
func (m *Model) renderNotesPanel(width int) (string, int, int) {
	styles := m.theme.Styles()
	nt := &m.dash.nt
	nt.draft.SetWidth(max(width-2, 10))
	nt.editInput.SetWidth(max(width-4, 10))
	nt.filter.Width = max(width-4, 10)

	var b lineBuilder
	selStart, selEnd := 0, 0

	switch {
	case nt.composing:
		b.write(styles.AccentText.Render("New note"))
		b.write(nt.draft.View())
		switch {
		case nt.adding:
			b.write(m.spinnerView() + styles.MutedText.Render(" Adding…"))
		case blank(nt.draft.Value()):
			b.write(styles.FaintText.Render("ctrl+s add (write something first) · esc close"))
		default:
			b.write(styles.Key.Render("ctrl+s") + styles.MutedText.Render(" add · esc close"))
		}
		selEnd = b.lines - 1
	case m.dash.videoID() == "":
		b.write(styles.FaintText.Render("Notes are available once the video has loaded"))
	default:
		b.write(styles.Key.Render("a") + styles.MutedText.Render(" add a note"))
	}

	if nt.filtering {
		b.write(nt.filter.View())
	} else if q := nt.filter.Value(); q != "" {
		b.write(styles.AccentText.Render("/"+q) + styles.FaintText.Render("  esc clears"))
	}
	b.write(styles.FaintText.Render(strings.Repeat("─", max(width, 1))))

	if placeholder := m.renderQueryState(m.dash.notes.Status, m.dash.notes.HasData, m.dash.notes.Err, "notes", width); placeholder != "" {
		b.write(placeholder)
		return b.String(), selStart, selEnd
	}

	notes := m.visibleNotes()
	if len(notes) == 0 {
		if nt.filter.Value() != "" {
			b.write(styles.MutedText.Render("No notes match the filter."))
		} else {
			b.write(styles.MutedText.Render("No notes yet. Press a to add one."))
		}
		return b.String(), selStart, selEnd
	}

	for i, n := range notes {
		editing := nt.editingID == n.ID
		selected := (i == nt.selected && !nt.composing && nt.editingID == "") || editing
		start := b.lines

		marker := "  "
		if selected {
			marker = styles.AccentText.Render("▸ ")
		}
		stamp := formatDateTime(n.ParsedCreatedAt())
		if n.UpdatedAt != "" && n.UpdatedAt != n.CreatedAt {
			stamp += " (edited)"
		}
		b.write(marker + styles.FaintText.Render(stamp))

		if editing {
			b.write(indent(nt.editInput.View(), "  "))
			switch {
			case nt.saving:
				b.write("  " + m.spinnerView() + styles.MutedText.Render(" Saving…"))
			case blank(nt.editInput.Value()):
				b.write("  " + styles.FaintText.Render("ctrl+s save (note can't be empty) · esc cancel"))
			default:
				b.write("  " + styles.Key.Render("ctrl+s") + styles.MutedText.Render(" save · esc cancel"))
			}
		} else {
			b.write(indent(styles.Text.Render(wrap(n.Content, max(width-2, 10))), "  "))
		}

		switch {
		case nt.deletingID == n.ID:
			b.write("  " + m.spinnerView() + styles.DangerText.Render(" Deleting…"))
		case selected && !editing:
			deleteHint := styles.Key.Render("d") + styles.MutedText.Render(" delete")
			if nt.deletingID != "" {
				deleteHint = styles.FaintText.Render("d delete")
			}
			b.write("  " + styles.Key.Render("e") + styles.MutedText.Render(" edit  ") + deleteHint)
		}

		if selected {
			selStart, selEnd = start, b.lines-1
		}
		b.write("")
	}
	return b.String(), selStart, selEnd
}
