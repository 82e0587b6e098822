package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/query"
	"github.com/five82/companion/internal/session"
)

// LoginCallback receives the session token once the browser returns from
// the identity provider.
type LoginCallback interface {
	URL() string
	Wait(ctx context.Context) (string, error)
	Close() error
}

// Listener opens a LoginCallback on port.
type Listener func(port int) (LoginCallback, error)

// ListenLoopback is the default Listener.
func ListenLoopback(port int) (LoginCallback, error) {
	cb, err := session.ListenCallback(port)
	if err != nil {
		return nil, err
	}
	return cb, nil
}

// Session commands

func checkSessionCmd(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg{snap: store.Init(ctx)}
	}
}

func refreshSessionCmd(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg{snap: store.Refresh(ctx)}
	}
}

func startLoginCmd(attempt int, listen Listener, port int, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		cb, err := listen(port)
		if err != nil {
			return loginPendingMsg{attempt: attempt, err: err}
		}
		return loginPendingMsg{
			attempt: attempt,
			cb:      cb,
			url:     store.LoginURL(cb.URL()),
			openErr: store.Login(cb.URL()),
		}
	}
}

func waitLoginCmd(ctx context.Context, attempt int, cb LoginCallback, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		token, err := cb.Wait(ctx)
		if err != nil {
			return loginDoneMsg{attempt: attempt, snap: store.Snapshot(), err: err}
		}
		snap, err := store.AcceptToken(ctx, token)
		return loginDoneMsg{attempt: attempt, snap: snap, err: err}
	}
}

func logoutCmd(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, LogoutTimeout)
		defer cancel()
		err := store.Logout(ctx)
		return logoutDoneMsg{snap: store.Snapshot(), err: err}
	}
}

// Query commands

func fetchCmd[T any](scope *query.Scope, cache *query.Cache, key query.Key, fn func(context.Context) (T, error), wrapMsg func(uint64, query.Result[T]) tea.Msg, opts ...query.FetchOption) tea.Cmd {
	id := scope.ID()
	ctx := scope.Context()
	return func() tea.Msg {
		return wrapMsg(id, query.Fetch(ctx, cache, key, fn, opts...))
	}
}

func (m *Model) fetchVideo() tea.Cmd {
	return fetchCmd(m.dash.scope, m.cache, keyVideo, m.backend.FetchVideo,
		func(id uint64, res query.Result[*api.Video]) tea.Msg { return videoMsg{scope: id, res: res} })
}

// fetchComments is gated on the video having loaded.
func (m *Model) fetchComments() tea.Cmd {
	return fetchCmd(m.dash.scope, m.cache, keyComments, m.backend.FetchComments,
		func(id uint64, res query.Result[[]api.Comment]) tea.Msg { return commentsMsg{scope: id, res: res} },
		query.Enabled(m.dash.videoData() != nil))
}

// fetchNotes is gated on a known video id.
func (m *Model) fetchNotes() tea.Cmd {
	videoID := m.dash.videoID()
	backend := m.backend
	return fetchCmd(m.dash.scope, m.cache, notesKey(videoID),
		func(ctx context.Context) ([]api.Note, error) { return backend.FetchNotes(ctx, videoID) },
		func(id uint64, res query.Result[[]api.Note]) tea.Msg { return notesMsg{scope: id, res: res} },
		query.Enabled(videoID != ""))
}

// fetchRating is gated on a signed-in user.
func (m *Model) fetchRating() tea.Cmd {
	return fetchCmd(m.dash.scope, m.cache, keyRating, m.backend.FetchRating,
		func(id uint64, res query.Result[api.Rating]) tea.Msg { return ratingMsg{scope: id, res: res} },
		query.Enabled(m.snap.User != nil))
}

// refetch re-runs the queries for the invalidated keys.
func (m *Model) refetch(keys []query.Key) tea.Cmd {
	var cmds []tea.Cmd
	seen := map[string]bool{}
	for _, k := range keys {
		if len(k) == 0 || seen[k[0]] {
			continue
		}
		seen[k[0]] = true
		switch k[0] {
		case keyVideo[0]:
			cmds = append(cmds, m.fetchVideo())
		case keyComments[0]:
			cmds = append(cmds, m.fetchComments())
		case keyNotes[0]:
			cmds = append(cmds, m.fetchNotes())
		case keyRating[0]:
			cmds = append(cmds, m.fetchRating())
		}
	}
	return tea.Batch(cmds...)
}

func tickAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}
