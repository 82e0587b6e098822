package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/companion/internal/api"
)

// commentsState is the local state of the comment section: the new-comment
// draft, one open reply form with per-comment drafts, and the pending flags
// that gate duplicate submissions.
type commentsState struct {
	draft     textarea.Model
	composing bool
	posting   bool
	postFlash int

	selected int
	// replyCursor picks within the selected thread: 0 is the comment,
	// n is its nth reply.
	replyCursor int

	replyOpen    api.ID
	replyInput   textarea.Model
	replyDrafts  map[api.ID]string
	replyPending map[api.ID]bool
	replyFlash   map[api.ID]int

	deletingID api.ID

	filter    textinput.Model
	filtering bool
}

func newCommentsState() commentsState {
	return commentsState{
		draft:        newDraftArea("Add a public comment…", CommentCharLimit),
		replyInput:   newDraftArea("Write a reply…", CommentCharLimit),
		replyDrafts:  make(map[api.ID]string),
		replyPending: make(map[api.ID]bool),
		replyFlash:   make(map[api.ID]int),
		filter:       newFilterInput(),
	}
}

func (c commentsState) typing() bool {
	return c.composing || c.replyOpen != "" || c.filtering
}

func (m Model) visibleComments() []commentRow {
	if !m.dash.comments.HasData {
		return nil
	}
	return filterComments(m.dash.comments.Data, m.dash.cm.filter.Value())
}

func (m Model) selectedComment() (api.Comment, bool) {
	rows := m.visibleComments()
	if m.dash.cm.selected < 0 || m.dash.cm.selected >= len(rows) {
		return api.Comment{}, false
	}
	return rows[m.dash.cm.selected].comment, true
}

// selectedReply returns the reply under the thread cursor, if any.
func (m Model) selectedReply() (api.Reply, bool) {
	c, ok := m.selectedComment()
	n := m.dash.cm.replyCursor
	if !ok || n < 1 || n > len(c.Replies) {
		return api.Reply{}, false
	}
	return c.Replies[n-1], true
}

func (c *commentsState) selectComment(i int) {
	c.selected = i
	c.replyCursor = 0
}

// handleCommentsKey handles comment-tab keys while no input has focus.
func (m *Model) handleCommentsKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	cm := &m.dash.cm
	count := len(m.visibleComments())

	switch {
	case key.Matches(msg, m.keys.Up):
		if cm.selected > 0 {
			cm.selectComment(cm.selected - 1)
		}
	case key.Matches(msg, m.keys.Down):
		if cm.selected < count-1 {
			cm.selectComment(cm.selected + 1)
		}
	case key.Matches(msg, m.keys.Top):
		cm.selectComment(0)
	case key.Matches(msg, m.keys.Bottom):
		cm.selectComment(max(count-1, 0))
	case key.Matches(msg, m.keys.PrevReply):
		if cm.replyCursor > 0 {
			cm.replyCursor--
		}
	case key.Matches(msg, m.keys.NextReply):
		if c, ok := m.selectedComment(); ok && cm.replyCursor < len(c.Replies) {
			cm.replyCursor++
		}
	case key.Matches(msg, m.keys.NewComment):
		if m.dash.videoData() == nil {
			m.setStatus(statusWarn, "The video hasn't loaded yet")
			return true, nil
		}
		m.clearStatus()
		cm.composing = true
		return true, cm.draft.Focus()
	case key.Matches(msg, m.keys.Reply):
		c, ok := m.selectedComment()
		if !ok {
			return true, nil
		}
		return true, m.openReply(c.CommentID)
	case key.Matches(msg, m.keys.Delete):
		c, ok := m.selectedComment()
		if !ok {
			return true, nil
		}
		if cm.deletingID != "" {
			m.setStatus(statusWarn, "Wait for the current delete to finish")
			return true, nil
		}
		if r, ok := m.selectedReply(); ok {
			m.modal = newConfirmModal("Delete reply?",
				"Delete the reply by "+r.AuthorDisplayName+": \""+truncate(r.Text, 80)+"\"? This can't be undone.",
				confirmedMsg{op: opDeleteComment, target: r.ID})
			return true, nil
		}
		m.modal = newConfirmModal("Delete comment?",
			"Delete the comment by "+c.AuthorDisplayName+": \""+truncate(c.Text, 80)+"\"? This can't be undone.",
			confirmedMsg{op: opDeleteComment, target: c.CommentID})
	case key.Matches(msg, m.keys.Filter):
		cm.filtering = true
		return true, cm.filter.Focus()
	case key.Matches(msg, m.keys.Escape):
		if cm.filter.Value() == "" {
			return false, nil
		}
		cm.filter.SetValue("")
		cm.selectComment(0)
	default:
		return false, nil
	}
	return true, nil
}

// openReply shows the reply form under commentID, parking the draft of
// any other open form.
func (m *Model) openReply(commentID api.ID) tea.Cmd {
	cm := &m.dash.cm
	if cm.replyOpen == commentID {
		return nil
	}
	if cm.replyOpen != "" {
		cm.replyDrafts[cm.replyOpen] = cm.replyInput.Value()
	}
	cm.replyOpen = commentID
	cm.replyInput.SetValue(cm.replyDrafts[commentID])
	return cm.replyInput.Focus()
}

func (m *Model) closeReply() {
	cm := &m.dash.cm
	if cm.replyOpen != "" {
		cm.replyDrafts[cm.replyOpen] = cm.replyInput.Value()
	}
	cm.replyOpen = ""
	cm.replyInput.Reset()
	cm.replyInput.Blur()
}

// handleCommentsInput routes keys to the focused comment input.
func (m *Model) handleCommentsInput(msg tea.KeyMsg) tea.Cmd {
	cm := &m.dash.cm
	var cmd tea.Cmd

	switch {
	case cm.filtering:
		switch {
		case key.Matches(msg, m.keys.Escape):
			cm.filter.SetValue("")
			cm.filtering = false
			cm.filter.Blur()
			cm.selectComment(0)
		case key.Matches(msg, m.keys.Confirm):
			cm.filtering = false
			cm.filter.Blur()
		default:
			cm.filter, cmd = cm.filter.Update(msg)
			cm.selectComment(0)
		}
		return cmd

	case cm.replyOpen != "":
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.closeReply()
			return nil
		case key.Matches(msg, m.keys.Submit):
			return m.sendReply()
		}
		cm.replyInput, cmd = cm.replyInput.Update(msg)
		return cmd

	case cm.composing:
		switch {
		case key.Matches(msg, m.keys.Escape):
			cm.composing = false
			cm.draft.Blur()
			return nil
		case key.Matches(msg, m.keys.Submit):
			return m.postComment()
		}
		cm.draft, cmd = cm.draft.Update(msg)
		return cmd
	}
	return nil
}

// postComment submits the draft. It does nothing while the draft is blank
// or a post is already pending; the draft is kept until the post succeeds.
func (m *Model) postComment() tea.Cmd {
	cm := &m.dash.cm
	text := cm.draft.Value()
	if blank(text) || cm.posting {
		return nil
	}
	cm.posting = true
	m.clearStatus()
	return mutateCmd(m.dash.scope, m.muts.addComment, opAddComment, "", strings.TrimSpace(text))
}

func (m *Model) sendReply() tea.Cmd {
	cm := &m.dash.cm
	id := cm.replyOpen
	text := cm.replyInput.Value()
	if id == "" || blank(text) || cm.replyPending[id] {
		return nil
	}
	cm.replyPending[id] = true
	m.clearStatus()
	return mutateCmd(m.dash.scope, m.muts.reply, opReply, id, replyVars{commentID: id, text: strings.TrimSpace(text)})
}

// deleteComment starts a confirmed delete. Only one delete runs at a time.
func (m *Model) deleteComment(id api.ID) tea.Cmd {
	cm := &m.dash.cm
	if cm.deletingID != "" {
		return nil
	}
	cm.deletingID = id
	m.clearStatus()
	return mutateCmd(m.dash.scope, m.muts.deleteComment, opDeleteComment, id, id)
}

func (m *Model) settleComment(msg settledMsg) tea.Cmd {
	cm := &m.dash.cm
	switch msg.op {
	case opAddComment:
		cm.posting = false
		if msg.err != nil {
			return nil
		}
		cm.draft.Reset()
		cm.draft.Blur()
		cm.composing = false
		cm.postFlash = m.nextSeq()
		return m.flashCmd(msg, cm.postFlash)

	case opReply:
		delete(cm.replyPending, msg.target)
		if msg.err != nil {
			return nil
		}
		delete(cm.replyDrafts, msg.target)
		if cm.replyOpen == msg.target {
			cm.replyOpen = ""
			cm.replyInput.Reset()
			cm.replyInput.Blur()
		}
		cm.replyFlash[msg.target] = m.nextSeq()
		return m.flashCmd(msg, cm.replyFlash[msg.target])

	case opDeleteComment:
		cm.deletingID = ""
		if msg.err != nil {
			return nil
		}
		delete(cm.replyDrafts, msg.target)
		if cm.replyOpen == msg.target {
			cm.replyOpen = ""
			cm.replyInput.Reset()
			cm.replyInput.Blur()
		}
	}
	return nil
}

// renderCommentsPanel returns the panel content and the first and last
// line of the focused block.
func (m *Model) renderCommentsPanel(width int) (string, int, int) {
	styles := m.theme.Styles()
	cm := &m.dash.cm
	cm.draft.SetWidth(max(width-2, 10))
	cm.replyInput.SetWidth(max(width-6, 10))
	cm.filter.Width = max(width-4, 10)

	var b lineBuilder
	selStart, selEnd := 0, 0

	// Composer
	if cm.composing {
		b.write(styles.AccentText.Render("New comment"))
		b.write(cm.draft.View())
		selEnd = b.lines - 1
	} else {
		b.write(styles.Key.Render("c") + styles.MutedText.Render(" write a comment"))
	}
	switch {
	case cm.posting:
		b.write(m.spinnerView() + styles.MutedText.Render(" Posting…"))
	case cm.postFlash != 0:
		b.write(styles.SuccessText.Render("✓ Comment posted"))
	case cm.composing && blank(cm.draft.Value()):
		b.write(styles.FaintText.Render("ctrl+s post (write something first) · esc close"))
	case cm.composing:
		b.write(styles.Key.Render("ctrl+s") + styles.MutedText.Render(" post · esc close"))
	}
	if cm.composing {
		selEnd = b.lines - 1
	}

	// Filter
	if cm.filtering {
		b.write(cm.filter.View())
	} else if q := cm.filter.Value(); q != "" {
		b.write(styles.AccentText.Render("/"+q) + styles.FaintText.Render("  esc clears"))
	}
	b.write(styles.FaintText.Render(strings.Repeat("─", max(width, 1))))

	if placeholder := m.renderQueryState(m.dash.comments.Status, m.dash.comments.HasData, m.dash.comments.Err, "comments", width); placeholder != "" {
		b.write(placeholder)
		return b.String(), selStart, selEnd
	}

	rows := m.visibleComments()
	if len(rows) == 0 {
		if cm.filter.Value() != "" {
			b.write(styles.MutedText.Render("No comments match the filter."))
		} else {
			b.write(styles.MutedText.Render("No comments yet. Be the first to comment!"))
		}
		return b.String(), selStart, selEnd
	}

	for i, row := range rows {
		c := row.comment
		selected := i == cm.selected && !cm.composing
		start := b.lines

		marker := "  "
		if selected {
			marker = styles.AccentText.Render("▸ ")
		}
		header := marker + styles.AccentText.Bold(true).Render(c.AuthorDisplayName)
		if date := formatDate(c.ParsedPublishedAt()); date != "" {
			header += styles.FaintText.Render(" · " + date)
		}
		b.write(header)
		b.write(indent(wrap(highlightMatches(c.Text, row.matched, styles.Text, styles.Highlight), max(width-2, 10)), "  "))

		for j, r := range c.Replies {
			lead := "    ↳ "
			if selected && cm.replyCursor == j+1 {
				lead = "  " + styles.AccentText.Render("▸") + " ↳ "
			}
			replyHeader := lead + styles.InfoText.Render(r.AuthorDisplayName)
			if date := formatDate(r.ParsedPublishedAt()); date != "" {
				replyHeader += styles.FaintText.Render(" · " + date)
			}
			b.write(replyHeader)
			b.write(indent(styles.Text.Render(wrap(r.Text, max(width-6, 10))), "      "))
			if cm.deletingID == r.ID {
				b.write("      " + m.spinnerView() + styles.DangerText.Render(" Deleting…"))
			}
		}

		switch {
		case cm.deletingID == c.CommentID:
			b.write("  " + m.spinnerView() + styles.DangerText.Render(" Deleting…"))
		case cm.replyFlash[c.CommentID] != 0:
			b.write("  " + styles.SuccessText.Render("✓ Reply sent"))
		case selected && cm.replyOpen != c.CommentID:
			label := " delete"
			if cm.replyCursor > 0 {
				label = " delete reply"
			}
			deleteHint := styles.Key.Render("d") + styles.MutedText.Render(label)
			if cm.deletingID != "" {
				deleteHint = styles.FaintText.Render("d" + label)
			}
			hint := "  " + styles.Key.Render("r") + styles.MutedText.Render(" reply  ") + deleteHint
			if len(c.Replies) > 0 {
				hint += styles.MutedText.Render("  ") + styles.Key.Render("[ ]") + styles.MutedText.Render(" replies")
			}
			b.write(hint)
		}

		if cm.replyOpen == c.CommentID {
			b.write("  " + styles.AccentText.Render("Reply to "+c.AuthorDisplayName))
			b.write(indent(cm.replyInput.View(), "  "))
			if cm.replyPending[c.CommentID] {
				b.write("  " + m.spinnerView() + styles.MutedText.Render(" Sending…"))
			} else {
				b.write("  " + styles.Key.Render("ctrl+s") + styles.MutedText.Render(" send · esc close"))
			}
		}

		if selected || cm.replyOpen == c.CommentID {
			selStart, selEnd = start, b.lines-1
		}
		b.write("")
	}
	return b.String(), selStart, selEnd
}

// lineBuilder accumulates lines and counts them.
type lineBuilder struct {
	sb    strings.Builder
	lines int
}

func (b *lineBuilder) write(s string) {
	if b.lines > 0 {
		b.sb.WriteString("\n")
	}
	b.sb.WriteString(s)
	b.lines += strings.Count(s, "\n") + 1
}

func (b *lineBuilder) String() string {
	return b.sb.String()
}
