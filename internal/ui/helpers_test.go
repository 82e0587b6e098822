package ui

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/query"
	"github.com/five82/companion/internal/session"
)

// fakeBackend is an in-memory api.Backend.
type fakeBackend struct {
	mu sync.Mutex

	user     *api.User
	video    *api.Video
	videoErr error
	comments []api.Comment
	notes    []api.Note
	rating   api.Rating

	addCommentErr error
	updateNoteErr error
	logoutErr     error

	calls       map[string]int
	order       []string
	rated       []api.Rating
	posted      []string
	replies     []replyVars
	deleted     []api.ID
	noteUpdates []noteVars
	videoUpdate *api.VideoUpdate
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		user: &api.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		video: &api.Video{
			ID:           "vid1",
			Title:        "Building a TUI",
			Description:  "All about terminals.",
			ChannelTitle: "Ada Codes",
			Statistics:   api.Statistics{ViewCount: 1234, LikeCount: 56, CommentCount: 2},
			PublishedAt:  "2024-03-01T10:00:00Z",
		},
		comments: []api.Comment{
			{CommentID: "c1", Text: "Great video", AuthorDisplayName: "Bob"},
			{CommentID: "c2", Text: "Zebras are neat", AuthorDisplayName: "Cy"},
		},
		notes: []api.Note{
			{ID: "n1", VideoID: "vid1", Content: "Film the outro again"},
		},
		rating: api.RatingNone,
		calls:  make(map[string]int),
	}
}

func (f *fakeBackend) record(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls[name]++
	f.order = append(f.order, name)
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// firstCall returns the position of the first call to name, or -1.
func (f *fakeBackend) firstCall(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.order {
		if n == name {
			return i
		}
	}
	return -1
}

func (f *fakeBackend) FetchVideo(ctx context.Context) (*api.Video, error) {
	if err := f.record(ctx, "FetchVideo"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	v := *f.video
	return &v, nil
}

func (f *fakeBackend) UpdateVideo(ctx context.Context, u api.VideoUpdate) (*api.Video, error) {
	if err := f.record(ctx, "UpdateVideo"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videoUpdate = &u
	if u.Title != nil {
		f.video.Title = *u.Title
	}
	if u.Description != nil {
		f.video.Description = *u.Description
	}
	v := *f.video
	return &v, nil
}

func (f *fakeBackend) FetchComments(ctx context.Context) ([]api.Comment, error) {
	if err := f.record(ctx, "FetchComments"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Comment(nil), f.comments...), nil
}

func (f *fakeBackend) AddComment(ctx context.Context, text string) (*api.Comment, error) {
	if err := f.record(ctx, "AddComment"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addCommentErr != nil {
		return nil, f.addCommentErr
	}
	f.posted = append(f.posted, text)
	c := api.Comment{CommentID: api.ID("new" + text), Text: text, AuthorDisplayName: "Ada"}
	f.comments = append([]api.Comment{c}, f.comments...)
	return &c, nil
}

func (f *fakeBackend) ReplyToComment(ctx context.Context, commentID api.ID, text string) (*api.Reply, error) {
	if err := f.record(ctx, "ReplyToComment"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replyVars{commentID: commentID, text: text})
	return &api.Reply{ID: "r1", Text: text}, nil
}

func (f *fakeBackend) DeleteComment(ctx context.Context, id api.ID) error {
	if err := f.record(ctx, "DeleteComment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	var kept []api.Comment
	for _, c := range f.comments {
		if c.CommentID == id {
			continue
		}
		var replies []api.Reply
		for _, r := range c.Replies {
			if r.ID != id {
				replies = append(replies, r)
			}
		}
		c.Replies = replies
		kept = append(kept, c)
	}
	f.comments = kept
	return nil
}

func (f *fakeBackend) FetchNotes(ctx context.Context, videoID api.ID) ([]api.Note, error) {
	if err := f.record(ctx, "FetchNotes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []api.Note
	for _, n := range f.notes {
		if n.VideoID == videoID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeBackend) AddNote(ctx context.Context, videoID api.ID, content string) (*api.Note, error) {
	if err := f.record(ctx, "AddNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := api.Note{ID: api.ID("n" + content), VideoID: videoID, Content: content}
	f.notes = append(f.notes, n)
	return &n, nil
}

func (f *fakeBackend) UpdateNote(ctx context.Context, id api.ID, content string) (*api.Note, error) {
	if err := f.record(ctx, "UpdateNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateNoteErr != nil {
		return nil, f.updateNoteErr
	}
	f.noteUpdates = append(f.noteUpdates, noteVars{noteID: id, content: content})
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Content = content
			n := f.notes[i]
			return &n, nil
		}
	}
	return nil, &api.HTTPError{Status: 404, Message: "note not found"}
}

func (f *fakeBackend) DeleteNote(ctx context.Context, id api.ID) error {
	if err := f.record(ctx, "DeleteNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []api.Note
	for _, n := range f.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(f.notes) {
		return &api.HTTPError{Status: 404, Message: "note not found"}
	}
	f.notes = kept
	return nil
}

func (f *fakeBackend) FetchRating(ctx context.Context) (api.Rating, error) {
	if err := f.record(ctx, "FetchRating"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rating, nil
}

func (f *fakeBackend) RateVideo(ctx context.Context, r api.Rating) error {
	if err := f.record(ctx, "RateVideo"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rated = append(f.rated, r)
	f.rating = r
	return nil
}

func (f *fakeBackend) CurrentUser(ctx context.Context) (*api.User, error) {
	if err := f.record(ctx, "CurrentUser"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, nil
	}
	u := *f.user
	return &u, nil
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	if err := f.record(ctx, "Logout"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
	return f.logoutErr
}

func (f *fakeBackend) LoginURL(redirect string) string {
	return "http://api.test/auth/google?redirect=" + url.QueryEscape(redirect)
}

var _ api.Backend = (*fakeBackend)(nil)

// fakeCreds signs the fake backend in when a token is stored.
type fakeCreds struct {
	backend *fakeBackend
	token   string
}

func (c *fakeCreds) Set(token string) error {
	if token != "good-token" {
		return errors.New("rejected")
	}
	c.token = token
	c.backend.mu.Lock()
	c.backend.user = &api.User{ID: "u1", Name: "Ada"}
	c.backend.mu.Unlock()
	return nil
}

func (c *fakeCreds) Clear() error {
	c.token = ""
	return nil
}

// fakeCallback delivers token as soon as Wait is called.
type fakeCallback struct {
	token  string
	closed bool
}

func (c *fakeCallback) URL() string { return "http://127.0.0.1:8765/callback" }

func (c *fakeCallback) Wait(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.token, nil
}

func (c *fakeCallback) Close() error {
	c.closed = true
	return nil
}

type harness struct {
	backend *fakeBackend
	cache   *query.Cache
	store   *session.Store
	creds   *fakeCreds
	opened  []string
	flashes []tea.Msg
}

func newHarness(t *testing.T, fb *fakeBackend) (*harness, Model) {
	t.Helper()
	h := &harness{backend: fb, cache: query.New(), creds: &fakeCreds{backend: fb}}
	h.store = session.New(fb, h.cache,
		session.WithCredentials(h.creds),
		session.WithOpener(func(u string) error {
			h.opened = append(h.opened, u)
			return nil
		}),
	)
	m := New(Options{
		Context:   context.Background(),
		Backend:   fb,
		Cache:     h.cache,
		Session:   h.store,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Listen: func(int) (LoginCallback, error) {
			return &fakeCallback{token: "good-token"}, nil
		},
	})
	m.animate = false
	m.after = func(_ time.Duration, msg tea.Msg) tea.Cmd {
		h.flashes = append(h.flashes, msg)
		return nil
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	return h, drain(t, m, m.Init())
}

// drain runs cmd and every command it produces, feeding each message back
// into the model, until nothing is left.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatalf("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

// press sends keys one at a time, draining after each.
func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(k)
		m = drain(t, next.(Model), cmd)
	}
	return m
}

// send delivers one key without running its command.
func send(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func viewContains(t *testing.T, m Model, want string) {
	t.Helper()
	if view := m.View(); !strings.Contains(view, want) {
		t.Fatalf("view does not contain %q:\n%s", want, view)
	}
}
