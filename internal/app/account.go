package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/session"
)

const (
	loginTimeout  = 5 * time.Minute
	logoutTimeout = 10 * time.Second
)

// ErrNotSignedIn is returned when the backend does not recognise the
// stored session.
var ErrNotSignedIn = errors.New("not signed in")

// Login runs the browser consent flow and waits for the loopback callback.
// Progress is written to out.
func (e *Env) Login(ctx context.Context, out io.Writer) (*api.User, error) {
	cb, err := session.ListenCallback(e.Config.CallbackPort)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cb.Close() }()

	redirect := cb.URL()
	if err := e.Session.Login(redirect); err != nil {
		e.Log.WithError(err).Warn("open browser")
		fmt.Fprintf(out, "Couldn't open a browser. Open this address to sign in:\n\n  %s\n\n", e.Session.LoginURL(redirect))
	} else {
		fmt.Fprintln(out, "Finish signing in with Google in your browser…")
	}

	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	token, err := cb.Wait(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("timed out waiting for the browser")
	}
	if err != nil {
		return nil, fmt.Errorf("wait for login: %w", err)
	}
	return e.AcceptToken(ctx, token)
}

// AcceptToken stores a session token obtained out of band and confirms it
// with the backend.
func (e *Env) AcceptToken(ctx context.Context, token string) (*api.User, error) {
	snap, err := e.Session.AcceptToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !snap.Authenticated() {
		return nil, ErrNotSignedIn
	}
	return snap.User, nil
}

// Logout ends the session. Local credentials are cleared even when the
// server call fails; that failure is returned for reporting.
func (e *Env) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
	defer cancel()
	return e.Session.Logout(ctx)
}

// WhoAmI returns the signed-in user, or ErrNotSignedIn.
func (e *Env) WhoAmI(ctx context.Context) (*api.User, error) {
	user, err := e.Client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}
	return user, nil
}
