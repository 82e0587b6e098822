package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loginState tracks the browser consent flow started from the login screen.
type loginState struct {
	attempt int
	waiting bool
	url     string
	openErr error
	err     error
	cb      LoginCallback
	cancel  context.CancelFunc
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Login):
		if m.login.waiting {
			return nil
		}
		m.loginSeq++
		m.login = loginState{attempt: m.loginSeq, waiting: true}
		return startLoginCmd(m.loginSeq, m.listen, m.callbackPort, m.session)
	case key.Matches(msg, m.keys.Escape):
		m.cancelLogin()
		return nil
	}
	return m.globalKey(msg)
}

func (m *Model) handleLoginPending(msg loginPendingMsg) tea.Cmd {
	if msg.attempt != m.login.attempt || !m.login.waiting {
		// Cancelled or superseded before the callback was ready.
		if msg.cb != nil {
			_ = msg.cb.Close()
		}
		return nil
	}
	if msg.err != nil {
		m.login = loginState{attempt: msg.attempt, err: msg.err}
		m.log.WithError(msg.err).Warn("start login")
		return nil
	}
	ctx, cancel := context.WithTimeout(m.ctx, LoginWaitTimeout)
	m.login.url = msg.url
	m.login.openErr = msg.openErr
	m.login.cb = msg.cb
	m.login.cancel = cancel
	if msg.openErr != nil {
		m.log.WithError(msg.openErr).Warn("open browser")
	}
	return waitLoginCmd(ctx, msg.attempt, msg.cb, m.session)
}

func (m *Model) handleLoginDone(msg loginDoneMsg) tea.Cmd {
	if msg.attempt != m.login.attempt {
		return nil
	}
	if !m.login.waiting && errors.Is(msg.err, context.Canceled) {
		// The user already cancelled this attempt.
		return nil
	}
	if m.login.cancel != nil {
		m.login.cancel()
	}
	m.login = loginState{attempt: msg.attempt}
	switch {
	case errors.Is(msg.err, context.Canceled):
	case errors.Is(msg.err, context.DeadlineExceeded):
		m.login.err = errors.New("timed out waiting for the browser")
	case msg.err != nil:
		m.login.err = msg.err
		m.log.WithError(msg.err).Warn("login failed")
	case !msg.snap.Authenticated():
		m.login.err = errors.New("sign-in did not complete")
	}
	return m.applySession(msg.snap)
}

// cancelLogin stops the current attempt and releases its callback port
// before returning, so a new attempt can listen on the same port.
func (m *Model) cancelLogin() {
	if m.login.cancel != nil {
		m.login.cancel()
		m.login.cancel = nil
	}
	if m.login.cb != nil {
		if err := m.login.cb.Close(); err != nil {
			m.log.WithError(err).Debug("close login callback")
		}
		m.login.cb = nil
	}
	m.login.waiting = false
	m.login.url = ""
	m.login.openErr = nil
}

// renderLogin draws the sign-in screen.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	width := min(max(m.width-8, 30), 64)

	var b strings.Builder
	b.WriteString(styles.Logo.Render("▶ " + appTitle))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(wrap("Manage your video from the terminal: statistics, rating, details, comments and private notes.", width)))
	b.WriteString("\n\n")

	switch {
	case m.login.waiting && m.login.url == "":
		b.WriteString(m.spinnerView() + styles.MutedText.Render(" Starting sign-in…"))
	case m.login.waiting:
		if m.login.openErr != nil {
			b.WriteString(styles.WarningText.Render("Couldn't open a browser. Open this address to continue:"))
		} else {
			b.WriteString(m.spinnerView() + styles.MutedText.Render(" Waiting for you to finish signing in with Google…"))
		}
		b.WriteString("\n\n")
		b.WriteString(styles.AccentText.Render(wrap(m.login.url, width)))
		b.WriteString("\n\n")
		b.WriteString(styles.Key.Render("esc") + styles.MutedText.Render(" cancel"))
	default:
		b.WriteString(styles.Key.Render("enter") + styles.Text.Render(" Sign in with Google"))
		b.WriteString("\n")
		b.WriteString(styles.Key.Render("q") + styles.MutedText.Render("     quit"))
	}

	if m.login.err != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.DangerText.Render(wrap("Sign-in failed: "+describeError(m.login.err), width)))
	}
	if m.status.text != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.WarningText.Render(wrap(m.status.text, width)))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 3).
		Width(width + 6).
		Render(b.String())
	return m.renderCentered(box)
}
