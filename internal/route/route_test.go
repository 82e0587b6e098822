package route

import (
	"testing"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/session"
)

var (
	unknown   = session.Snapshot{State: session.StateUnknown, Loading: true}
	anonymous = session.Snapshot{State: session.StateAnonymous}
	signedIn  = session.Snapshot{State: session.StateAuthenticated, User: &api.User{ID: "u1"}}
)

func TestGuard(t *testing.T) {
	tests := []struct {
		snap session.Snapshot
		want Decision
	}{
		{unknown, Decision{Action: ActionLoading}},
		{anonymous, Decision{Action: ActionRedirect, To: PathLogin, Replace: true}},
		{signedIn, Decision{Action: ActionRender}},
	}
	for _, tt := range tests {
		if got := Guard(tt.snap); got != tt.want {
			t.Fatalf("Guard(%v) = %+v, want %+v", tt.snap.State, got, tt.want)
		}
	}
}

func TestLoginGate(t *testing.T) {
	tests := []struct {
		snap session.Snapshot
		want Decision
	}{
		{unknown, Decision{Action: ActionLoading}},
		{anonymous, Decision{Action: ActionRender}},
		{signedIn, Decision{Action: ActionRedirect, To: PathDashboard}},
	}
	for _, tt := range tests {
		if got := LoginGate(tt.snap); got != tt.want {
			t.Fatalf("LoginGate(%v) = %+v, want %+v", tt.snap.State, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory("/")
	h.Push("/login")
	h.Replace("/x")
	if h.Current() != "/x" || len(h.Entries()) != 2 {
		t.Fatalf("history = %v, want [/ /x]", h.Entries())
	}
	if !h.Back() || h.Current() != "/" {
		t.Fatalf("Back: history = %v", h.Entries())
	}
	if h.Back() {
		t.Fatalf("Back at first entry returned true")
	}
}

func TestRouter_ProtectedVisitRedirectsThenRendersAfterLogin(t *testing.T) {
	r := NewRouter(PathDashboard)

	if got := r.Resolve(unknown); got != ScreenLoading {
		t.Fatalf("Resolve(unknown) = %v, want loading", got)
	}
	if got := r.Resolve(anonymous); got != ScreenLogin {
		t.Fatalf("Resolve(anonymous) = %v, want login", got)
	}
	if len(r.History().Entries()) != 1 || r.History().Current() != PathLogin {
		t.Fatalf("history = %v, want [/login] (redirect replaces)", r.History().Entries())
	}

	if got := r.Resolve(signedIn); got != ScreenDashboard {
		t.Fatalf("Resolve(signed in) = %v, want dashboard", got)
	}
	if got := r.History().Entries(); len(got) != 2 || got[1] != PathDashboard {
		t.Fatalf("history = %v, want [/login /]", got)
	}

	r.Navigate(PathDashboard)
	if got := r.Resolve(signedIn); got != ScreenDashboard {
		t.Fatalf("revisit = %v, want dashboard without redirect", got)
	}
	if r.History().Current() != PathDashboard {
		t.Fatalf("current = %q", r.History().Current())
	}
}

func TestRouter_BackDoesNotLoopIntoGuard(t *testing.T) {
	r := NewRouter(PathDashboard)
	r.Resolve(anonymous)
	if r.Back() {
		t.Fatalf("Back returned true; the guarded entry should have been replaced")
	}
}

func TestRouter_UnknownPath(t *testing.T) {
	r := NewRouter("/nope")
	if got := r.Resolve(signedIn); got != ScreenNotFound {
		t.Fatalf("Resolve = %v, want not found", got)
	}
}
