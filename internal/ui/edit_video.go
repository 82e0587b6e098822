package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/companion/internal/api"
)

// editVideoModal edits the title and description of the video.
type editVideoModal struct {
	title       textinput.Model
	description textarea.Model
	focus       int

	origTitle       string
	origDescription string
}

func newEditVideoModal(v api.Video) editVideoModal {
	title := textinput.New()
	title.Prompt = ""
	title.CharLimit = TitleCharLimit
	title.Width = 50
	title.SetValue(v.Title)
	staticCursor(&title.Cursor)
	title.Focus()

	desc := newDraftArea("Description", NoteCharLimit)
	desc.SetWidth(52)
	desc.SetHeight(8)
	desc.SetValue(v.Description)

	return editVideoModal{
		title:           title,
		description:     desc,
		origTitle:       v.Title,
		origDescription: v.Description,
	}
}

// update returns the fields that changed.
func (e editVideoModal) update() api.VideoUpdate {
	var u api.VideoUpdate
	if t := strings.TrimSpace(e.title.Value()); t != e.origTitle {
		u.Title = &t
	}
	if d := e.description.Value(); d != e.origDescription {
		u.Description = &d
	}
	return u
}

func (e editVideoModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, false
	}

	switch {
	case key.Matches(keyMsg, keys.Escape):
		return e, nil, true
	case key.Matches(keyMsg, keys.Submit):
		if blank(e.title.Value()) {
			return e, nil, false
		}
		u := e.update()
		return e, func() tea.Msg { return editVideoSubmitMsg{update: u} }, true
	case key.Matches(keyMsg, keys.Field):
		if e.focus == 0 {
			e.focus = 1
			e.title.Blur()
			return e, e.description.Focus(), false
		}
		e.focus = 0
		e.description.Blur()
		return e, e.title.Focus(), false
	}

	var cmd tea.Cmd
	if e.focus == 0 {
		e.title, cmd = e.title.Update(keyMsg)
	} else {
		e.description, cmd = e.description.Update(keyMsg)
	}
	return e, cmd, false
}

func (e editVideoModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	label := func(text string, focused bool) string {
		if focused {
			return styles.AccentText.Bold(true).Render(text)
		}
		return styles.MutedText.Render(text)
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Edit details"))
	b.WriteString("\n\n")
	b.WriteString(label("Title", e.focus == 0))
	b.WriteString("\n")
	b.WriteString(e.title.View())
	b.WriteString("\n\n")
	b.WriteString(label("Description", e.focus == 1))
	b.WriteString("\n")
	b.WriteString(e.description.View())
	b.WriteString("\n\n")
	if blank(e.title.Value()) {
		b.WriteString(styles.FaintText.Render("ctrl+s save (title can't be empty)"))
	} else {
		b.WriteString(styles.Key.Render("ctrl+s") + styles.MutedText.Render(" save"))
	}
	b.WriteString(styles.MutedText.Render("   "))
	b.WriteString(styles.Key.Render("tab") + styles.MutedText.Render(" next field   "))
	b.WriteString(styles.Key.Render("esc") + styles.MutedText.Render(" cancel"))
	return placeModal(theme, theme.Accent, b.String(), 58, width, height)
}

func (m *Model) openVideoEditor() tea.Cmd {
	v := m.dash.videoData()
	if v == nil || m.dash.savingVideo {
		return nil
	}
	m.modal = newEditVideoModal(*v)
	return nil
}

// submitVideoEdit sends the changed fields, if any.
func (m *Model) submitVideoEdit(u api.VideoUpdate) tea.Cmd {
	if !m.dash.mounted() || m.dash.savingVideo {
		return nil
	}
	if u.Empty() {
		m.setStatus(statusInfo, "No changes to save")
		return nil
	}
	m.dash.savingVideo = true
	m.clearStatus()
	return mutateCmd(m.dash.scope, m.muts.updateVideo, opUpdateVideo, m.dash.videoID(), u)
}
