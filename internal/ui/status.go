package ui

import (
	"context"
	"errors"
	"net/http"

	"github.com/five82/companion/internal/api"
)

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarn
	statusError
)

// statusLine is the transient message shown in the footer.
type statusLine struct {
	text  string
	level statusLevel
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.status = statusLine{text: text, level: level}
}

func (m *Model) clearStatus() {
	m.status = statusLine{}
}

// describeError turns a request failure into a short user-facing reason.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *api.HTTPError
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case api.IsTimeout(err):
		return "the server took too long to respond"
	case api.IsNetwork(err):
		return "can't reach the server"
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusUnauthorized {
			return "your session has expired"
		}
		if httpErr.Message != "" {
			return httpErr.Message
		}
		return http.StatusText(httpErr.Status)
	default:
		return err.Error()
	}
}
