package api

import "net/http"

// retryTransport repeats an idempotent GET once when the transport fails.
// HTTP error statuses are responses, not failures, and are never retried.
type retryTransport struct {
	base http.RoundTripper
}

func newRetryTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if _, ok := base.(*retryTransport); ok {
		return base
	}
	return &retryTransport{base: base}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil || req.Method != http.MethodGet || req.Body != nil && req.Body != http.NoBody {
		return resp, err
	}
	if req.Context().Err() != nil {
		return resp, err
	}
	return t.base.RoundTrip(req)
}
