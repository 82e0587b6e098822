package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const callbackPath = "/callback"

const callbackPage = `<!doctype html><title>companion</title><p>%s You can close this tab and return to the terminal.</p>`

// Callback is a one-shot loopback server that receives the session token
// after the identity provider redirects the browser back.
type Callback struct {
	ln     net.Listener
	srv    *http.Server
	result chan callbackResult

	closeOnce sync.Once
	closeErr  error
}

type callbackResult struct {
	token string
	err   error
}

// ListenCallback binds 127.0.0.1:port. Port 0 picks a free port.
func ListenCallback(port int) (*Callback, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen for login callback: %w", err)
	}
	cb := &Callback{ln: ln, result: make(chan callbackResult, 1)}
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, cb.handle)
	cb.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = cb.srv.Serve(ln) }()
	return cb, nil
}

// URL is the redirect target to hand to the backend.
func (c *Callback) URL() string {
	return "http://" + c.ln.Addr().String() + callbackPath
}

// Wait blocks until the browser lands on the callback or ctx ends. The
// server is shut down before Wait returns.
func (c *Callback) Wait(ctx context.Context) (string, error) {
	defer func() { _ = c.Close() }()
	select {
	case res := <-c.result:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the server and releases the port. It is safe to call more
// than once.
func (c *Callback) Close() error {
	c.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		err := c.srv.Shutdown(ctx)
		if !errors.Is(err, http.ErrServerClosed) {
			c.closeErr = err
		}
	})
	return c.closeErr
}

func (c *Callback) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var res callbackResult
	switch {
	case strings.TrimSpace(q.Get("session")) != "":
		res.token = strings.TrimSpace(q.Get("session"))
	case q.Get("error") != "":
		res.err = fmt.Errorf("login rejected: %s", q.Get("error"))
	default:
		// Prefetches and reloads land here. They must not consume the
		// one result slot meant for the real redirect.
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprintf(w, callbackPage, "No sign-in result in this request.")
		return
	}

	if res.err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprintf(w, callbackPage, "Sign-in failed.")
	} else {
		_, _ = fmt.Fprintf(w, callbackPage, "Signed in.")
	}

	select {
	case c.result <- res:
	default:
	}
}
