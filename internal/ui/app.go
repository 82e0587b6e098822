package ui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/prefs"
	"github.com/five82/companion/internal/query"
	"github.com/five82/companion/internal/route"
	"github.com/five82/companion/internal/session"
)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Backend      api.Backend
	Cache        *query.Cache
	Session      *session.Store
	Logger       logrus.FieldLogger
	ThemeName    string
	DefaultTab   string
	PrefsPath    string
	CallbackPort int
	Listen       Listener
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	backend      api.Backend
	cache        *query.Cache
	session      *session.Store
	log          logrus.FieldLogger
	prefsPath    string
	callbackPort int
	listen       Listener
	keys         keyMap
	muts         mutations

	// after schedules msg once d has passed.
	after   func(d time.Duration, msg tea.Msg) tea.Cmd
	animate bool

	// UI state
	theme      Theme
	defaultTab panelTab
	width      int
	height     int
	ready      bool
	spinner    spinner.Model
	seq        int

	// Routing
	router     *route.Router
	snap       session.Snapshot
	screen     route.Screen
	signingOut bool

	login    loginState
	loginSeq int
	dash     dashboard

	modal    Modal
	showHelp bool
	status   statusLine
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var log logrus.FieldLogger = opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	listen := opts.Listen
	if listen == nil {
		listen = ListenLoopback
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	router := route.NewRouter(route.PathDashboard)
	snap := session.Snapshot{State: session.StateUnknown, Loading: true}

	return Model{
		ctx:          ctx,
		backend:      opts.Backend,
		cache:        opts.Cache,
		session:      opts.Session,
		log:          log.WithField("component", "ui"),
		prefsPath:    prefsPath,
		callbackPort: opts.CallbackPort,
		listen:       listen,
		keys:         DefaultKeyMap(),
		muts:         newMutations(opts.Backend, opts.Cache, log),
		after:        tickAfter,
		animate:      true,
		theme:        GetTheme(themeName),
		defaultTab:   parseTab(opts.DefaultTab),
		spinner:      sp,
		router:       router,
		snap:         snap,
		screen:       router.Resolve(snap),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{checkSessionCmd(m.ctx, m.session)}
	if m.animate {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.syncPanel()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return nil

	case spinner.TickMsg:
		if !m.animate {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case sessionMsg:
		return m.applySession(msg.snap)

	case loginPendingMsg:
		return m.handleLoginPending(msg)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case logoutDoneMsg:
		m.signingOut = false
		if msg.err != nil {
			m.setStatus(statusWarn, "Signed out locally; server logout failed: "+describeError(msg.err))
		}
		return m.applySession(msg.snap)

	case videoMsg:
		if !m.current(msg.scope) {
			return nil
		}
		return m.handleVideo(msg.res)

	case commentsMsg:
		if !m.current(msg.scope) {
			return nil
		}
		m.dash.comments = msg.res
		m.clampSelections()
		return nil

	case notesMsg:
		if !m.current(msg.scope) {
			return nil
		}
		m.dash.notes = msg.res
		m.clampSelections()
		return nil

	case ratingMsg:
		if !m.current(msg.scope) {
			return nil
		}
		m.dash.rating = msg.res
		return nil

	case settledMsg:
		if !m.current(msg.scope) {
			return nil
		}
		return m.handleSettled(msg)

	case flashDoneMsg:
		if !m.current(msg.scope) {
			return nil
		}
		m.clearFlash(msg)
		return nil

	case confirmedMsg:
		return m.handleConfirmed(msg)

	case editVideoSubmitMsg:
		return m.submitVideoEdit(msg.update)
	}

	return nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	if m.signingOut {
		return m.renderCentered(m.spinnerView() + " Signing out…")
	}

	switch m.screen {
	case route.ScreenLogin:
		return m.renderLogin()
	case route.ScreenDashboard:
		return m.renderDashboard()
	case route.ScreenNotFound:
		return m.renderNotFound()
	default:
		return m.renderCentered(m.spinnerView() + " Checking session…")
	}
}

// handleKey processes keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return nil
	}

	if m.screen == route.ScreenDashboard && msg.Type == tea.KeyCtrlL {
		return m.startLogout()
	}

	if m.modal != nil {
		next, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = next
		}
		return cmd
	}

	if m.signingOut {
		return nil
	}

	switch m.screen {
	case route.ScreenLogin:
		return m.handleLoginKey(msg)
	case route.ScreenDashboard:
		return m.handleDashboardKey(msg)
	case route.ScreenNotFound:
		if key.Matches(msg, m.keys.Confirm) {
			m.router.Navigate(route.PathDashboard)
			return m.applySession(m.snap)
		}
	}
	return m.globalKey(msg)
}

// globalKey handles keys that work on every screen when no input has focus.
func (m *Model) globalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	}
	return nil
}

// cycleTheme switches to the next theme and persists the choice.
func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, DefaultTab: m.defaultTab.prefsName()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.WithError(err).Warn("save prefs")
	}
}

// applySession records a session transition and mounts or unmounts the
// dashboard to match the screen the router resolves.
func (m *Model) applySession(snap session.Snapshot) tea.Cmd {
	if snap.State == session.StateAnonymous && m.screen == route.ScreenDashboard {
		// Return to the login entry that led here rather than stacking a
		// new one on every sign-out.
		m.router.Back()
	}
	m.snap = snap
	m.screen = m.router.Resolve(snap)
	m.log.WithFields(logrus.Fields{
		"screen":  m.screen.String(),
		"history": m.router.History().Entries(),
	}).Debug("route resolved")
	if m.screen == route.ScreenDashboard {
		if m.dash.mounted() {
			return nil
		}
		return m.mountDashboard()
	}
	m.unmountDashboard()
	return nil
}

// startLogout ends the session from any dashboard state. The dashboard is
// torn down immediately so nothing in flight can land after the cache is
// cleared.
func (m *Model) startLogout() tea.Cmd {
	if m.signingOut {
		return nil
	}
	m.signingOut = true
	m.modal = nil
	m.unmountDashboard()
	return logoutCmd(m.ctx, m.session)
}

func (m Model) spinnerView() string {
	return m.theme.Styles().AccentText.Render(m.spinner.View())
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
