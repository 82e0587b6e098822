package route

import "github.com/five82/companion/internal/session"

const (
	PathDashboard = "/"
	PathLogin     = "/login"
)

// Action is what a gate decided for the current location.
type Action int

const (
	ActionRender Action = iota
	ActionLoading
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionRender:
		return "render"
	case ActionLoading:
		return "loading"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a gate.
type Decision struct {
	Action  Action
	To      string
	Replace bool
}

// Guard protects the dashboard: it renders only for a signed-in user, shows
// a placeholder while the session check is pending and otherwise replaces the
// location with the login page.
func Guard(snap session.Snapshot) Decision {
	switch snap.State {
	case session.StateAuthenticated:
		return Decision{Action: ActionRender}
	case session.StateUnknown:
		return Decision{Action: ActionLoading}
	default:
		return Decision{Action: ActionRedirect, To: PathLogin, Replace: true}
	}
}

// LoginGate sends a signed-in user from the login page to the dashboard.
func LoginGate(snap session.Snapshot) Decision {
	switch snap.State {
	case session.StateAuthenticated:
		return Decision{Action: ActionRedirect, To: PathDashboard}
	case session.StateUnknown:
		return Decision{Action: ActionLoading}
	default:
		return Decision{Action: ActionRender}
	}
}
