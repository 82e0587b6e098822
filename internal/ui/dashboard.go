package ui

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/prefs"
	"github.com/five82/companion/internal/query"
)

type panelTab int

const (
	tabComments panelTab = iota
	tabNotes
)

func parseTab(name string) panelTab {
	if strings.EqualFold(strings.TrimSpace(name), prefs.TabNotes) {
		return tabNotes
	}
	return tabComments
}

func (t panelTab) prefsName() string {
	if t == tabNotes {
		return prefs.TabNotes
	}
	return prefs.TabComments
}

// dashboard is the state of one dashboard mount. It is rebuilt from
// scratch on every mount, so drafts never outlive a session.
type dashboard struct {
	scope *query.Scope
	tab   panelTab

	video    query.Result[*api.Video]
	comments query.Result[[]api.Comment]
	notes    query.Result[[]api.Note]
	rating   query.Result[api.Rating]

	rate        ratingState
	savingVideo bool
	cm          commentsState
	nt          notesState

	panel viewport.Model
}

func (d dashboard) mounted() bool {
	return d.scope != nil && d.scope.Alive()
}

func (d dashboard) videoData() *api.Video {
	if !d.video.HasData {
		return nil
	}
	return d.video.Data
}

func (d dashboard) videoID() api.ID {
	if v := d.videoData(); v != nil {
		return v.ID
	}
	return ""
}

// typing reports whether a text input owns the keyboard.
func (d dashboard) typing() bool {
	return d.cm.typing() || d.nt.typing()
}

// mountDashboard opens a fresh scope and starts the queries. Comments and
// notes stay disabled until the video has arrived.
func (m *Model) mountDashboard() tea.Cmd {
	m.dash = dashboard{
		scope: query.NewScope(m.ctx),
		tab:   m.defaultTab,
		cm:    newCommentsState(),
		nt:    newNotesState(),
		panel: viewport.New(0, 0),
	}
	m.dash.video = query.Peek[*api.Video](m.cache, keyVideo)
	return tea.Batch(m.fetchVideo(), m.fetchRating())
}

// unmountDashboard cancels everything the mount started. Late results are
// dropped because their scope is no longer current.
func (m *Model) unmountDashboard() {
	if m.dash.scope != nil {
		m.dash.scope.Close()
	}
	m.dash = dashboard{}
}

func (m *Model) current(scope uint64) bool {
	return m.dash.mounted() && m.dash.scope.ID() == scope
}

func (m *Model) handleVideo(res query.Result[*api.Video]) tea.Cmd {
	m.dash.video = res
	if res.Err != nil && api.IsStatus(res.Err, http.StatusUnauthorized) {
		// The cookie expired; the session check will send us to login.
		return refreshSessionCmd(m.ctx, m.session)
	}
	if m.dash.videoData() == nil {
		return nil
	}
	return tea.Batch(m.fetchComments(), m.fetchNotes())
}

// refreshAll marks every dashboard query stale and fetches again.
func (m *Model) refreshAll() tea.Cmd {
	var keys []query.Key
	for _, prefix := range []query.Key{keyVideo, keyComments, keyNotes, keyRating} {
		keys = append(keys, m.cache.Invalidate(prefix)...)
	}
	m.setStatus(statusInfo, "Refreshing…")
	return tea.Batch(m.fetchVideo(), m.refetch(keys))
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Logout) && (msg.Type == tea.KeyCtrlL || !m.dash.typing()) {
		return m.startLogout()
	}

	if m.dash.typing() {
		if m.dash.tab == tabNotes {
			return m.handleNotesInput(msg)
		}
		return m.handleCommentsInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		m.clearStatus()
		if m.dash.tab == tabComments {
			m.dash.tab = tabNotes
		} else {
			m.dash.tab = tabComments
		}
		return nil
	case key.Matches(msg, m.keys.Like):
		return m.rateVideo(api.RatingLike)
	case key.Matches(msg, m.keys.Dislike):
		return m.rateVideo(api.RatingDislike)
	case key.Matches(msg, m.keys.EditVideo):
		return m.openVideoEditor()
	case key.Matches(msg, m.keys.Refresh):
		return m.refreshAll()
	}

	if m.dash.tab == tabNotes {
		if handled, cmd := m.handleNotesKey(msg); handled {
			return cmd
		}
	} else if handled, cmd := m.handleCommentsKey(msg); handled {
		return cmd
	}
	return m.globalKey(msg)
}

// handleSettled applies the outcome of a mutation to the local state and
// refetches whatever it invalidated.
func (m *Model) handleSettled(msg settledMsg) tea.Cmd {
	var cmds []tea.Cmd
	switch msg.op {
	case opRate:
		m.dash.rate.pending = false
		if msg.err == nil {
			m.dash.rate.flash = m.nextSeq()
			cmds = append(cmds, m.flashCmd(msg, m.dash.rate.flash))
		}
	case opUpdateVideo:
		m.dash.savingVideo = false
		if msg.err == nil {
			m.setStatus(statusSuccess, "Details saved")
		}
	case opAddComment, opReply, opDeleteComment:
		if cmd := m.settleComment(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case opAddNote, opUpdateNote, opDeleteNote:
		m.settleNote(msg)
	}

	if msg.err != nil {
		m.setStatus(statusError, msg.op.String()+" failed: "+describeError(msg.err))
		m.log.WithError(msg.err).WithField("op", msg.op.String()).Warn("mutation failed")
		return tea.Batch(cmds...)
	}
	cmds = append(cmds, m.refetch(msg.invalidated))
	return tea.Batch(cmds...)
}

func (m *Model) nextSeq() int {
	m.seq++
	return m.seq
}

func (m *Model) flashCmd(msg settledMsg, seq int) tea.Cmd {
	return m.after(SuccessFlash, flashDoneMsg{scope: msg.scope, op: msg.op, target: msg.target, seq: seq})
}

func (m *Model) clearFlash(msg flashDoneMsg) {
	switch msg.op {
	case opRate:
		if m.dash.rate.flash == msg.seq {
			m.dash.rate.flash = 0
		}
	case opAddComment:
		if m.dash.cm.postFlash == msg.seq {
			m.dash.cm.postFlash = 0
		}
	case opReply:
		if m.dash.cm.replyFlash[msg.target] == msg.seq {
			delete(m.dash.cm.replyFlash, msg.target)
		}
	}
}

func (m *Model) handleConfirmed(msg confirmedMsg) tea.Cmd {
	if !m.dash.mounted() {
		return nil
	}
	switch msg.op {
	case opDeleteComment:
		return m.deleteComment(msg.target)
	case opDeleteNote:
		return m.deleteNote(msg.target)
	}
	return nil
}

func (m *Model) clampSelections() {
	m.dash.cm.selected = clampIndex(m.dash.cm.selected, len(m.visibleComments()))
	if c, ok := m.selectedComment(); ok {
		m.dash.cm.replyCursor = min(m.dash.cm.replyCursor, len(c.Replies))
	} else {
		m.dash.cm.replyCursor = 0
	}
	m.dash.nt.selected = clampIndex(m.dash.nt.selected, len(m.visibleNotes()))
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// geometry splits the body between the video card and the panel.
func (m Model) geometry() (cardW, cardH, panelW, panelH int, stacked bool) {
	bodyH := max(m.height-2, 6)
	if m.width >= LayoutCompactWidth {
		return LayoutCardWidth, bodyH, m.width - LayoutCardWidth, bodyH, false
	}
	cardH = min(bodyH/2, 14)
	return m.width, cardH, m.width, bodyH - cardH, true
}

// syncPanel rebuilds the panel viewport content and keeps the selected row
// in view.
func (m *Model) syncPanel() {
	if !m.dash.mounted() || !m.ready {
		return
	}
	_, _, panelW, panelH, _ := m.geometry()
	w := max(panelW-2, 10)
	h := max(panelH-3, 1)
	m.dash.panel.Width = w
	m.dash.panel.Height = h

	var content string
	var selStart, selEnd int
	if m.dash.tab == tabNotes {
		content, selStart, selEnd = m.renderNotesPanel(w)
	} else {
		content, selStart, selEnd = m.renderCommentsPanel(w)
	}
	m.dash.panel.SetContent(content)

	switch {
	case selStart < m.dash.panel.YOffset:
		m.dash.panel.SetYOffset(selStart)
	case selEnd >= m.dash.panel.YOffset+h:
		m.dash.panel.SetYOffset(max(selEnd-h+1, selStart))
	}
}

// renderDashboard draws header, video card, tabbed panel and footer.
func (m Model) renderDashboard() string {
	cardW, cardH, panelW, panelH, stacked := m.geometry()

	card := m.renderTitledBox("Video", m.renderVideoCard(max(cardW-4, 10)), cardW, cardH, false)
	panel := m.renderTitledBox(m.panelTitle(), m.renderTabs()+"\n"+m.dash.panel.View(), panelW, panelH, true)

	var body string
	if stacked {
		body = lipgloss.JoinVertical(lipgloss.Left, card, panel)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, card, panel)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) panelTitle() string {
	if m.dash.tab == tabNotes {
		return "Notes"
	}
	return "Comments"
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	comments := "Comments"
	if m.dash.comments.HasData {
		comments += " (" + formatCount(uint64(len(m.dash.comments.Data))) + ")"
	}
	notes := "Notes"
	if m.dash.notes.HasData {
		notes += " (" + formatCount(uint64(len(m.dash.notes.Data))) + ")"
	}
	render := func(label string, active bool) string {
		if active {
			return styles.TabActive.Render(label)
		}
		return styles.Tab.Render(label)
	}
	return render(comments, m.dash.tab == tabComments) + render(notes, m.dash.tab == tabNotes)
}

// renderQueryState returns a placeholder line while a list query has
// nothing to show, and "" once data is present.
func (m Model) renderQueryState(status query.Status, hasData bool, err error, what string, width int) string {
	styles := m.theme.Styles()
	if hasData {
		return ""
	}
	switch status {
	case query.StatusError:
		return styles.DangerText.Render(wrap("Couldn't load "+what+": "+describeError(err), width))
	case query.StatusLoading:
		return m.spinnerView() + styles.MutedText.Render(" Loading "+what+"…")
	default:
		return styles.FaintText.Render("Waiting for the video…")
	}
}
