package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/companion/internal/api"
)

// State is the resolved authentication state.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable copy of the store.
type Snapshot struct {
	State   State
	User    *api.User
	Loading bool
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Backend is the part of the API client the store needs.
type Backend interface {
	CurrentUser(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
	LoginURL(redirect string) string
}

// Clearer drops cached server state.
type Clearer interface {
	Clear()
	Len() int
}

// Credentials holds the session cookie.
type Credentials interface {
	Set(value string) error
	Clear() error
}

// Opener shows a URL to the user, normally by launching a browser.
type Opener func(url string) error

// Store owns the current user. One store exists per process and is passed
// to whoever needs it.
type Store struct {
	backend Backend
	cache   Clearer
	creds   Credentials
	open    Opener
	log     logrus.FieldLogger

	mu      sync.RWMutex
	snap    Snapshot
	nextSub int
	subs    map[int]func(Snapshot)
}

// Option configures a Store.
type Option func(*Store)

// WithCredentials sets where session tokens are stored.
func WithCredentials(c Credentials) Option {
	return func(s *Store) { s.creds = c }
}

// WithOpener sets how the consent URL is shown.
func WithOpener(open Opener) Option {
	return func(s *Store) { s.open = open }
}

// WithLogger sets the store logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// New returns a store in the Unknown state.
func New(backend Backend, cache Clearer, opts ...Option) *Store {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Store{
		backend: backend,
		cache:   cache,
		log:     discard,
		subs:    make(map[int]func(Snapshot)),
		snap:    Snapshot{State: StateUnknown},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "session")
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn for every transition and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Init checks the session starting from the Unknown state.
func (s *Store) Init(ctx context.Context) Snapshot {
	s.set(Snapshot{State: StateUnknown, Loading: true})
	return s.check(ctx)
}

// Refresh checks the session again without leaving the current state until
// the check resolves.
func (s *Store) Refresh(ctx context.Context) Snapshot {
	snap := s.Snapshot()
	snap.Loading = true
	s.set(snap)
	return s.check(ctx)
}

func (s *Store) check(ctx context.Context) Snapshot {
	user, err := s.backend.CurrentUser(ctx)
	var next Snapshot
	switch {
	case err != nil:
		s.log.WithError(err).Warn("session check failed")
		next = Snapshot{State: StateAnonymous}
	case user == nil:
		next = Snapshot{State: StateAnonymous}
	default:
		u := *user
		next = Snapshot{State: StateAuthenticated, User: &u}
		s.log.WithField("user_id", u.ID.String()).Info("signed in")
	}
	s.set(next)
	return next
}

// LoginURL returns the consent URL, redirecting back to redirect.
func (s *Store) LoginURL(redirect string) string {
	return s.backend.LoginURL(redirect)
}

// Login opens the identity provider's consent flow. The state does not
// change; completion arrives through AcceptToken.
func (s *Store) Login(redirect string) error {
	if s.open == nil {
		return fmt.Errorf("no browser opener configured")
	}
	target := s.backend.LoginURL(redirect)
	if err := s.open(target); err != nil {
		return fmt.Errorf("open consent url: %w", err)
	}
	return nil
}

// AcceptToken stores a session token delivered by the login redirect and
// checks the session again.
func (s *Store) AcceptToken(ctx context.Context, token string) (Snapshot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Snapshot(), fmt.Errorf("empty session token")
	}
	if s.creds == nil {
		return s.Snapshot(), fmt.Errorf("no credential store configured")
	}
	if err := s.creds.Set(token); err != nil {
		return s.Snapshot(), fmt.Errorf("store session: %w", err)
	}
	return s.Refresh(ctx), nil
}

// Logout ends the session. Local state is cleared whether or not the server
// call succeeds; the server error is returned for reporting only.
func (s *Store) Logout(ctx context.Context) error {
	err := s.backend.Logout(ctx)
	if err != nil {
		s.log.WithError(err).Warn("server logout failed; clearing local session anyway")
	}
	dropped := 0
	if s.cache != nil {
		dropped = s.cache.Len()
		s.cache.Clear()
	}
	if s.creds != nil {
		if clearErr := s.creds.Clear(); clearErr != nil {
			s.log.WithError(clearErr).Warn("clear credentials")
		}
	}
	s.set(Snapshot{State: StateAnonymous})
	s.log.WithField("cached_entries", dropped).Info("signed out")
	return err
}

func (s *Store) set(next Snapshot) {
	s.mu.Lock()
	s.snap = next
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(next)
	}
}
