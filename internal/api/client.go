package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Backend lists every remote operation the dashboard performs.
// It is implemented by *Client and replaced by fakes in tests.
type Backend interface {
	FetchVideo(ctx context.Context) (*Video, error)
	UpdateVideo(ctx context.Context, update VideoUpdate) (*Video, error)
	FetchComments(ctx context.Context) ([]Comment, error)
	AddComment(ctx context.Context, text string) (*Comment, error)
	ReplyToComment(ctx context.Context, commentID ID, text string) (*Reply, error)
	DeleteComment(ctx context.Context, id ID) error
	FetchNotes(ctx context.Context, videoID ID) ([]Note, error)
	AddNote(ctx context.Context, videoID ID, content string) (*Note, error)
	UpdateNote(ctx context.Context, id ID, content string) (*Note, error)
	DeleteNote(ctx context.Context, id ID) error
	FetchRating(ctx context.Context) (Rating, error)
	RateVideo(ctx context.Context, rating Rating) error
	CurrentUser(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
	LoginURL(redirect string) string
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

const (
	DefaultBaseURL        = "http://localhost:3000"
	DefaultRequestTimeout = 30 * time.Second
	defaultUserAgent      = "companion/dev"
	maxErrorBody          = 64 << 10
)

// Client talks to the companion backend REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	jar       http.CookieJar
	userAgent string
	timeout   time.Duration
	log       logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is still
// wrapped with the GET retry policy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request, including reading the response body.
// A non-positive value disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithJar attaches the cookie jar that carries the session credentials.
func WithJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

// WithLogger sets the request logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		timeout:   DefaultRequestTimeout,
		log:       discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	hc.Transport = newRetryTransport(hc.Transport)
	if c.jar != nil {
		hc.Jar = c.jar
	}
	c.http = &hc
	c.log = c.log.WithField("component", "api")
	return c, nil
}

// BaseURL returns a copy of the API root.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// FetchVideo retrieves the managed video.
func (c *Client) FetchVideo(ctx context.Context) (*Video, error) {
	var payload Video
	if err := c.do(ctx, http.MethodGet, "video", nil, &payload); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateVideo patches title and/or description and returns the new video.
func (c *Client) UpdateVideo(ctx context.Context, update VideoUpdate) (*Video, error) {
	if update.Empty() {
		return nil, errors.New("update video: nothing to update")
	}
	var payload Video
	if err := c.do(ctx, http.MethodPatch, "video/update", update, &payload); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchComments retrieves all comment threads of the video.
func (c *Client) FetchComments(ctx context.Context) ([]Comment, error) {
	var payload []Comment
	if err := c.do(ctx, http.MethodGet, "comments", nil, &payload); err != nil {
		return nil, err
	}
	for _, comment := range payload {
		if err := comment.Validate(); err != nil {
			return nil, err
		}
	}
	if payload == nil {
		payload = []Comment{}
	}
	return payload, nil
}

// AddComment posts a new top-level comment.
func (c *Client) AddComment(ctx context.Context, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("add comment: text is empty")
	}
	var payload Comment
	if err := c.do(ctx, http.MethodPost, "comments", commentRequest{Text: text}, &payload); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ReplyToComment posts a reply under an existing comment.
func (c *Client) ReplyToComment(ctx context.Context, commentID ID, text string) (*Reply, error) {
	if commentID == "" {
		return nil, errors.New("reply: comment id required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("reply: text is empty")
	}
	var payload Reply
	body := replyRequest{CommentID: commentID, Text: text}
	if err := c.do(ctx, http.MethodPost, "comments/reply", body, &payload); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteComment removes a comment thread.
func (c *Client) DeleteComment(ctx context.Context, id ID) error {
	if id == "" {
		return errors.New("delete comment: id required")
	}
	return c.do(ctx, http.MethodDelete, "comments/"+url.PathEscape(id.String()), nil, nil)
}

// FetchNotes retrieves the notes attached to videoID.
func (c *Client) FetchNotes(ctx context.Context, videoID ID) ([]Note, error) {
	if videoID == "" {
		return nil, errors.New("fetch notes: video id required")
	}
	var payload []Note
	if err := c.do(ctx, http.MethodGet, "notes/"+url.PathEscape(videoID.String()), nil, &payload); err != nil {
		return nil, err
	}
	for _, note := range payload {
		if err := note.Validate(); err != nil {
			return nil, err
		}
	}
	if payload == nil {
		payload = []Note{}
	}
	return payload, nil
}

// AddNote creates a note on videoID.
func (c *Client) AddNote(ctx context.Context, videoID ID, content string) (*Note, error) {
	if videoID == "" {
		return nil, errors.New("add note: video id required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("add note: content is empty")
	}
	var payload Note
	body := noteRequest{VideoID: videoID, Content: content}
	if err := c.do(ctx, http.MethodPost, "notes", body, &payload); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateNote replaces the content of a note.
func (c *Client) UpdateNote(ctx context.Context, id ID, content string) (*Note, error) {
	if id == "" {
		return nil, errors.New("update note: id required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("update note: content is empty")
	}
	var payload Note
	if err := c.do(ctx, http.MethodPatch, "notes/"+url.PathEscape(id.String()), noteRequest{Content: content}, &payload); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, id ID) error {
	if id == "" {
		return errors.New("delete note: id required")
	}
	return c.do(ctx, http.MethodDelete, "notes/"+url.PathEscape(id.String()), nil, nil)
}

// FetchRating returns the current user's rating of the video.
func (c *Client) FetchRating(ctx context.Context) (Rating, error) {
	var payload ratingResponse
	if err := c.do(ctx, http.MethodGet, "video/rating", nil, &payload); err != nil {
		return "", err
	}
	if payload.Rating == "" {
		return RatingNone, nil
	}
	return payload.Rating, nil
}

// RateVideo sets the current user's rating.
func (c *Client) RateVideo(ctx context.Context, rating Rating) error {
	if _, err := ParseRating(string(rating)); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "video/rate", rateRequest{Rating: rating}, nil)
}

// CurrentUser asks the backend who is signed in. A 401 or a null body means nobody is
// signed in and is reported as (nil, nil).
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var payload *User
	err := c.do(ctx, http.MethodGet, "auth/user", nil, &payload)
	if IsStatus(err, http.StatusUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "auth/logout", nil, nil)
}

// LoginURL returns the identity provider consent entry point. When redirect
// is set the backend sends the browser there after consent.
func (c *Client) LoginURL(redirect string) string {
	rel := &url.URL{Path: "auth/google"}
	if redirect = strings.TrimSpace(redirect); redirect != "" {
		rel.RawQuery = url.Values{"redirect": {redirect}}.Encode()
	}
	return c.baseURL.ResolveReference(rel).String()
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return errors.New("client is nil")
	}
	parent := ctx
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(encoded)
	}

	rel, err := url.Parse(path)
	if err != nil {
		return errors.Wrapf(err, "parse path %q", path)
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(reqCtx, method, reqURL.String(), reader)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.classify(parent, reqCtx, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"duration":   time.Since(start).String(),
		"request_id": requestID,
	}).Debug("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			Status:  resp.StatusCode,
			Message: errorMessage(raw, resp.StatusCode),
			Method:  method,
			Path:    path,
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.classify(parent, reqCtx, method, path, err)
	}
	if dest == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.Errorf("decode response: %s %s returned an empty body", method, path)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func (c *Client) classify(parent, reqCtx context.Context, method, path string, err error) error {
	if parentErr := parent.Err(); parentErr != nil {
		return errors.WithMessagef(parentErr, "api %s %s", method, path)
	}
	var netErr net.Error
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		c.log.WithFields(logrus.Fields{"method": method, "path": path}).Warn("api request timed out")
		return &TimeoutError{Method: method, Path: path, After: c.timeout, Err: err}
	}
	c.log.WithFields(logrus.Fields{"method": method, "path": path, "error": err}).Warn("api request failed")
	return &NetworkError{Method: method, Path: path, Err: err}
}

func errorMessage(raw []byte, status int) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
	}
	return http.StatusText(status)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.Wrapf(err, "parse api url %q", raw)
	}
	if u.Host == "" {
		return nil, errors.Errorf("parse api url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
