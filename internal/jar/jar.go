package jar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketCookies = []byte("cookies")

const dbFile = "cookies.db"

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c storedCookie) httpCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

// Jar is an http.CookieJar whose cookies survive restarts. Cookies are kept
// in a bbolt file keyed by origin and replayed into an in-memory jar on open.
type Jar struct {
	mu  sync.Mutex
	db  *bolt.DB
	mem *cookiejar.Jar
	now func() time.Time
}

var _ http.CookieJar = (*Jar)(nil)

// Open loads the jar stored in dir. An empty dir gives a memory-only jar.
func Open(dir string) (*Jar, error) {
	mem, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &Jar{mem: mem, now: time.Now}
	if dir == "" {
		return j, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create jar dir: %w", err)
	}
	db, err := bolt.Open(filepath.Join(dir, dbFile), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cookie db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCookies)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	j.db = db
	if err := j.replay(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the database file.
func (j *Jar) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.mem.Cookies(u)
}

// SetCookies implements http.CookieJar. Persistence failures are dropped;
// the in-memory jar stays authoritative for the running process.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.mem.SetCookies(u, cookies)
	_ = j.persist(u, cookies)
}

// SetSession stores a session cookie for the origin of u, as a browser
// would after the backend's login redirect.
func (j *Jar) SetSession(u *url.URL, name, value string) error {
	if name == "" {
		return fmt.Errorf("session cookie name required")
	}
	if value == "" {
		return fmt.Errorf("session value required")
	}
	cookie := &http.Cookie{Name: name, Value: value, Path: "/", HttpOnly: true}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.mem.SetCookies(u, []*http.Cookie{cookie})
	return j.persist(u, []*http.Cookie{cookie})
}

// HasCookie reports whether a cookie called name would be sent to u.
func (j *Jar) HasCookie(u *url.URL, name string) bool {
	for _, c := range j.Cookies(u) {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Clear forgets every cookie in memory and on disk.
func (j *Jar) Clear() error {
	mem, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.mem = mem
	if j.db == nil {
		return nil
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketCookies); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketCookies)
		return err
	})
}

func (j *Jar) persist(u *url.URL, cookies []*http.Cookie) error {
	if j.db == nil || u == nil || len(cookies) == 0 {
		return nil
	}
	key := []byte(origin(u))
	now := j.now()
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCookies)
		if b == nil {
			return bolt.ErrBucketNotFound
		}
		var existing []storedCookie
		if v := b.Get(key); v != nil {
			_ = json.Unmarshal(v, &existing)
		}
		for _, c := range cookies {
			existing = merge(existing, c, now)
		}
		if len(existing) == 0 {
			return b.Delete(key)
		}
		data, err := json.Marshal(existing)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (j *Jar) replay() error {
	now := j.now()
	return j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCookies)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			u, err := url.Parse(string(k))
			if err != nil {
				return nil
			}
			var stored []storedCookie
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil
			}
			live := make([]*http.Cookie, 0, len(stored))
			for _, c := range stored {
				if c.expired(now) {
					continue
				}
				live = append(live, c.httpCookie())
			}
			j.mem.SetCookies(u, live)
			return nil
		})
	})
}

func merge(list []storedCookie, c *http.Cookie, now time.Time) []storedCookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	out := list[:0]
	for _, existing := range list {
		existingPath := existing.Path
		if existingPath == "" {
			existingPath = "/"
		}
		if existing.Name == c.Name && existingPath == path && existing.Domain == c.Domain {
			continue
		}
		if existing.expired(now) {
			continue
		}
		out = append(out, existing)
	}

	expires := c.Expires
	if c.MaxAge > 0 {
		expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	removed := c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now))
	if removed {
		return out
	}
	return append(out, storedCookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     path,
		Domain:   c.Domain,
		Expires:  expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	})
}

func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/"
}

// SessionCookie is the session credential for one API origin.
type SessionCookie struct {
	jar    *Jar
	origin *url.URL
	name   string
}

// Session returns the credential handle for the cookie called name on the
// origin of u.
func (j *Jar) Session(u *url.URL, name string) *SessionCookie {
	o := *u
	o.Path = "/"
	o.RawPath = ""
	o.RawQuery = ""
	o.Fragment = ""
	return &SessionCookie{jar: j, origin: &o, name: name}
}

// Set stores the session value.
func (s *SessionCookie) Set(value string) error {
	return s.jar.SetSession(s.origin, s.name, value)
}

// Present reports whether the session cookie is stored.
func (s *SessionCookie) Present() bool {
	return s.jar.HasCookie(s.origin, s.name)
}

// Clear forgets every cookie in the jar, not only the session cookie.
func (s *SessionCookie) Clear() error {
	return s.jar.Clear()
}
