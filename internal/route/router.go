package route

import (
	"github.com/five82/companion/internal/session"
)

// Screen is what the UI should draw.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenDashboard
	ScreenNotFound
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenLogin:
		return "login"
	case ScreenDashboard:
		return "dashboard"
	case ScreenNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// maxRedirects bounds a resolution; the gates never chain more than one.
const maxRedirects = 4

// Router applies the gates to the history's current entry.
type Router struct {
	history *History
}

// NewRouter starts at path.
func NewRouter(path string) *Router {
	return &Router{history: NewHistory(path)}
}

// History exposes the navigation stack.
func (r *Router) History() *History {
	return r.history
}

// Navigate pushes path without resolving it.
func (r *Router) Navigate(path string) {
	r.history.Push(path)
}

// Back pops one entry.
func (r *Router) Back() bool {
	return r.history.Back()
}

// Resolve follows redirects for the current location and returns the screen
// to draw.
func (r *Router) Resolve(snap session.Snapshot) Screen {
	for i := 0; i < maxRedirects; i++ {
		var d Decision
		var screen Screen
		switch r.history.Current() {
		case PathDashboard:
			d, screen = Guard(snap), ScreenDashboard
		case PathLogin:
			d, screen = LoginGate(snap), ScreenLogin
		default:
			return ScreenNotFound
		}

		switch d.Action {
		case ActionRender:
			return screen
		case ActionLoading:
			return ScreenLoading
		case ActionRedirect:
			if d.Replace {
				r.history.Replace(d.To)
			} else {
				r.history.Push(d.To)
			}
		}
	}
	return ScreenLoading
}
