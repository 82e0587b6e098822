package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/prefs"
	"github.com/five82/companion/internal/query"
	"github.com/five82/companion/internal/route"
	"github.com/five82/companion/internal/session"
)

func TestStartupAnonymousShowsLogin(t *testing.T) {
	fb := newFakeBackend()
	fb.user = nil

	_, m := newHarness(t, fb)

	if m.screen != route.ScreenLogin {
		t.Fatalf("screen = %v, want %v", m.screen, route.ScreenLogin)
	}
	if m.dash.mounted() {
		t.Fatalf("dashboard mounted for anonymous user")
	}
	if n := fb.count("FetchVideo"); n != 0 {
		t.Fatalf("FetchVideo calls = %d, want 0", n)
	}
	viewContains(t, m, "Sign in with Google")
}

func TestStartupSignedInLoadsDashboard(t *testing.T) {
	fb := newFakeBackend()

	_, m := newHarness(t, fb)

	if m.screen != route.ScreenDashboard {
		t.Fatalf("screen = %v, want %v", m.screen, route.ScreenDashboard)
	}
	for _, name := range []string{"FetchVideo", "FetchRating", "FetchComments", "FetchNotes"} {
		if n := fb.count(name); n != 1 {
			t.Fatalf("%s calls = %d, want 1", name, n)
		}
	}
	if got := len(m.visibleComments()); got != 2 {
		t.Fatalf("visible comments = %d, want 2", got)
	}
	viewContains(t, m, "Great video")
	viewContains(t, m, "Ada")
}

func TestLoginCallbackSignsIn(t *testing.T) {
	fb := newFakeBackend()
	fb.user = nil
	h, m := newHarness(t, fb)

	m = press(t, m, keyOf(tea.KeyEnter))

	if m.screen != route.ScreenDashboard {
		t.Fatalf("screen = %v, want %v", m.screen, route.ScreenDashboard)
	}
	if h.creds.token != "good-token" {
		t.Fatalf("stored token = %q, want good-token", h.creds.token)
	}
	if len(h.opened) != 1 || !strings.Contains(h.opened[0], "redirect=") {
		t.Fatalf("opened = %v, want one consent url", h.opened)
	}
	if m.login.waiting || m.login.err != nil {
		t.Fatalf("login state = %+v, want idle", m.login)
	}
	if n := fb.count("FetchVideo"); n != 1 {
		t.Fatalf("FetchVideo calls = %d, want 1", n)
	}
}

func TestLoginRejectedTokenStaysOnLogin(t *testing.T) {
	fb := newFakeBackend()
	fb.user = nil
	_, m := newHarness(t, fb)
	m.listen = func(int) (LoginCallback, error) {
		return &fakeCallback{token: "bad-token"}, nil
	}

	m = press(t, m, keyOf(tea.KeyEnter))

	if m.screen != route.ScreenLogin {
		t.Fatalf("screen = %v, want %v", m.screen, route.ScreenLogin)
	}
	if m.login.err == nil {
		t.Fatalf("login error = nil, want rejection")
	}
	viewContains(t, m, "Sign-in failed")
}

func TestLoginCancelledBeforeCallbackClosesIt(t *testing.T) {
	fb := newFakeBackend()
	fb.user = nil
	_, m := newHarness(t, fb)
	cb := &fakeCallback{token: "good-token"}
	m.listen = func(int) (LoginCallback, error) { return cb, nil }

	m, cmd := send(m, keyOf(tea.KeyEnter))
	if !m.login.waiting {
		t.Fatalf("login not waiting after enter")
	}
	m = press(t, m, keyOf(tea.KeyEsc))
	m = drain(t, m, cmd)

	if !cb.closed {
		t.Fatalf("callback not closed after cancel")
	}
	if m.screen != route.ScreenLogin {
		t.Fatalf("screen = %v, want %v", m.screen, route.ScreenLogin)
	}
}

// blockingCallback never receives a redirect; Wait returns when ctx ends.
type blockingCallback struct {
	port   int
	closed bool
}

func (c *blockingCallback) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", c.port)
}

func (c *blockingCallback) Wait(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (c *blockingCallback) Close() error {
	c.closed = true
	return nil
}

func TestLoginRetryIgnoresCancelledAttempt(t *testing.T) {
	fb := newFakeBackend()
	fb.user = nil
	_, m := newHarness(t, fb)
	var cbs []*blockingCallback
	m.listen = func(port int) (LoginCallback, error) {
		cb := &blockingCallback{port: 9000 + len(cbs)}
		cbs = append(cbs, cb)
		return cb, nil
	}

	m, start := send(m, keyOf(tea.KeyEnter))
	next, wait1 := m.Update(start())
	m = next.(Model)
	if wait1 == nil || !m.login.waiting {
		t.Fatalf("first attempt did not start waiting")
	}

	m = press(t, m, keyOf(tea.KeyEsc))
	if !cbs[0].closed {
		t.Fatalf("cancel did not close the first callback")
	}

	m, start = send(m, keyOf(tea.KeyEnter))
	next, _ = m.Update(start())
	m = next.(Model)

	// The first attempt's wait unblocks with its cancellation.
	next, _ = m.Update(wait1())
	m = next.(Model)

	if !m.login.waiting || m.login.url == "" {
		t.Fatalf("login = waiting %v url %q, want second attempt still waiting", m.login.waiting, m.login.url)
	}
	if cbs[1].closed {
		t.Fatalf("second callback closed by the first attempt")
	}
	if m.login.err != nil {
		t.Fatalf("login error = %v, want nil", m.login.err)
	}
}

func TestLoginRetryClosesSupersededCallback(t *testing.T) {
	fb := newFakeBackend()
	fb.user = nil
	_, m := newHarness(t, fb)
	var cbs []*blockingCallback
	m.listen = func(port int) (LoginCallback, error) {
		cb := &blockingCallback{port: 9000 + len(cbs)}
		cbs = append(cbs, cb)
		return cb, nil
	}

	m, start1 := send(m, keyOf(tea.KeyEnter))
	m = press(t, m, keyOf(tea.KeyEsc))
	m, start2 := send(m, keyOf(tea.KeyEnter))

	// The first listen completes only after the retry began.
	next, cmd := m.Update(start1())
	m = next.(Model)
	if cmd != nil {
		t.Fatalf("superseded attempt started waiting")
	}
	if !cbs[0].closed {
		t.Fatalf("superseded callback left open")
	}
	if !m.login.waiting {
		t.Fatalf("superseded attempt stopped the retry")
	}

	next, cmd = m.Update(start2())
	m = next.(Model)
	if cmd == nil || m.login.url == "" || cbs[1].closed {
		t.Fatalf("retry did not start waiting: url %q closed %v", m.login.url, cbs[1].closed)
	}
}

func TestLogoutDuringNoteEditReturnsToLogin(t *testing.T) {
	fb := newFakeBackend()
	h, m := newHarness(t, fb)

	m = press(t, m, keyOf(tea.KeyTab), runes("e"), runes(" soon"))
	if m.dash.nt.editingID != "n1" {
		t.Fatalf("editingID = %q, want n1", m.dash.nt.editingID)
	}

	m, cmd := send(m, keyOf(tea.KeyCtrlL))
	if !m.signingOut {
		t.Fatalf("signingOut = false after ctrl+l")
	}
	if m.dash.mounted() {
		t.Fatalf("dashboard still mounted while signing out")
	}
	viewContains(t, m, "Signing out")

	m = drain(t, m, cmd)

	if m.screen != route.ScreenLogin {
		t.Fatalf("screen = %v, want %v", m.screen, route.ScreenLogin)
	}
	if n := h.cache.Len(); n != 0 {
		t.Fatalf("cache entries = %d, want 0", n)
	}
	if got := h.store.Snapshot().State; got != session.StateAnonymous {
		t.Fatalf("session state = %v, want %v", got, session.StateAnonymous)
	}
	if n := fb.count("UpdateNote"); n != 0 {
		t.Fatalf("UpdateNote calls = %d, want 0", n)
	}
	if m.dash.nt.editingID != "" {
		t.Fatalf("note edit survived logout")
	}
}

func TestLogoutServerFailureStillSignsOut(t *testing.T) {
	fb := newFakeBackend()
	fb.logoutErr = &api.HTTPError{Status: 500}
	h, m := newHarness(t, fb)

	m = press(t, m, runes("L"))

	if m.screen != route.ScreenLogin {
		t.Fatalf("screen = %v, want %v", m.screen, route.ScreenLogin)
	}
	if h.cache.Len() != 0 {
		t.Fatalf("cache not cleared after failed server logout")
	}
	if m.status.level != statusWarn {
		t.Fatalf("status level = %v, want warning", m.status.level)
	}
	viewContains(t, m, "Signed out locally")
}

func TestLateResultsAfterLogoutAreDropped(t *testing.T) {
	fb := newFakeBackend()
	h, m := newHarness(t, fb)

	// Capture a refresh without running it, then sign out.
	m, refresh := send(m, runes("R"))
	m = press(t, m, keyOf(tea.KeyCtrlL))
	m = drain(t, m, refresh)

	if m.screen != route.ScreenLogin || m.dash.mounted() {
		t.Fatalf("late refresh remounted the dashboard")
	}
	if res := query.Peek[*api.Video](h.cache, keyVideo); res.HasData {
		t.Fatalf("video cached after logout")
	}
}

func TestUnauthorizedVideoRechecksSession(t *testing.T) {
	fb := newFakeBackend()
	_, m := newHarness(t, fb)

	// The cookie expires server side.
	fb.mu.Lock()
	fb.user = nil
	fb.videoErr = &api.HTTPError{Status: 401}
	fb.mu.Unlock()

	m = press(t, m, runes("R"))

	if m.screen != route.ScreenLogin {
		t.Fatalf("screen = %v, want %v", m.screen, route.ScreenLogin)
	}
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	fb := newFakeBackend()
	fb.user = nil
	_, m := newHarness(t, fb)

	m = press(t, m, runes("T"))

	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", p.Theme)
	}
	if p.DefaultTab != prefs.TabComments {
		t.Fatalf("saved tab = %q, want %q", p.DefaultTab, prefs.TabComments)
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	_, m := newHarness(t, newFakeBackend())

	m = press(t, m, runes("?"))
	if !m.showHelp {
		t.Fatalf("help not shown")
	}
	viewContains(t, m, "Comments")

	m = press(t, m, runes("x"))
	if m.showHelp {
		t.Fatalf("help still shown")
	}
}

func TestQuitKey(t *testing.T) {
	_, m := newHarness(t, newFakeBackend())

	_, cmd := send(m, runes("q"))
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestDefaultTabFromOptions(t *testing.T) {
	fb := newFakeBackend()
	cache := query.New()
	m := New(Options{
		Backend:    fb,
		Cache:      cache,
		Session:    session.New(fb, cache),
		DefaultTab: "Notes",
		PrefsPath:  t.TempDir() + "/prefs.toml",
	})
	m.animate = false
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = drain(t, next.(Model), m.Init())

	if m.dash.tab != tabNotes {
		t.Fatalf("tab = %v, want notes", m.dash.tab)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&api.HTTPError{Status: 401}, "your session has expired"},
		{&api.HTTPError{Status: 404, Message: "video not found"}, "video not found"},
		{&api.HTTPError{Status: 503}, "Service Unavailable"},
		{&api.NetworkError{Err: errors.New("refused")}, "can't reach the server"},
		{&api.TimeoutError{Err: errors.New("deadline")}, "the server took too long to respond"},
		{errors.New("boom"), "boom"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := describeError(tt.err); got != tt.want {
			t.Fatalf("describeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRepeatedSignInKeepsHistoryShort(t *testing.T) {
	fb := newFakeBackend()
	fb.user = nil
	_, m := newHarness(t, fb)

	for i := 0; i < 3; i++ {
		m = press(t, m, keyOf(tea.KeyEnter))
		if m.screen != route.ScreenDashboard {
			t.Fatalf("round %d: screen = %v after sign-in", i, m.screen)
		}
		got := m.router.History().Entries()
		if len(got) != 2 || got[0] != route.PathLogin || got[1] != route.PathDashboard {
			t.Fatalf("round %d: history after sign-in = %v", i, got)
		}

		m = press(t, m, runes("L"))
		if m.screen != route.ScreenLogin {
			t.Fatalf("round %d: screen = %v after sign-out", i, m.screen)
		}
		got = m.router.History().Entries()
		if len(got) != 1 || got[0] != route.PathLogin {
			t.Fatalf("round %d: history after sign-out = %v, want [/login]", i, got)
		}
	}
}
