package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of a cached entry.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type entry struct {
	key       Key
	data      any
	hasData   bool
	status    Status
	err       error
	stale     bool
	fetching  bool
	version   uint64
	updatedAt time.Time
}

// Cache maps keys to the last fetched value. It is safe for concurrent use;
// fetches for the same key that overlap share one call.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
	group   singleflight.Group
	retries int
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRetries sets how many times a failed fetch is repeated before the
// error is stored. The default is one.
func WithRetries(n int) Option {
	return func(c *Cache) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Cache{
		entries: make(map[string]*entry),
		retries: 1,
		log:     discard,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "query")
	return c
}

// Result is a typed view of one entry.
type Result[T any] struct {
	Key       Key
	Data      T
	HasData   bool
	Status    Status
	Err       error
	Stale     bool
	Fetching  bool
	UpdatedAt time.Time
}

// Loading reports whether nothing is shown yet because a fetch is running.
func (r Result[T]) Loading() bool {
	return r.Status == StatusLoading
}

type fetchOptions struct {
	enabled bool
}

// FetchOption configures a single Fetch call.
type FetchOption func(*fetchOptions)

// Enabled gates the fetch. A disabled fetch never calls the fetch function
// and reports whatever is cached, or idle.
func Enabled(on bool) FetchOption {
	return func(o *fetchOptions) {
		o.enabled = on
	}
}

// Fetch returns the cached value for key when it is fresh. Otherwise it
// calls fn, sharing the call with any concurrent Fetch of the same key,
// retries a failure once and stores the outcome.
//
// Results that complete after Clear are returned to the caller but never
// stored.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error), opts ...FetchOption) Result[T] {
	o := fetchOptions{enabled: true}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.enabled {
		return Peek[T](c, key)
	}

	c.mu.Lock()
	e := c.entries[key.mapKey()]
	if e != nil && e.status == StatusSuccess && !e.stale {
		res := view[T](e)
		c.mu.Unlock()
		return res
	}
	if e == nil {
		e = &entry{key: key.clone()}
		c.entries[key.mapKey()] = e
	}
	if !e.hasData {
		e.status = StatusLoading
	}
	e.fetching = true
	gen := c.gen
	version := e.version
	c.mu.Unlock()

	flightKey := fmt.Sprintf("%s#%d#%d", key.mapKey(), gen, version)
	value, err, shared := c.group.Do(flightKey, func() (any, error) {
		return c.run(ctx, key, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
	})
	if shared {
		c.log.WithField("key", key.String()).Debug("joined in-flight fetch")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		res := Result[T]{Key: key.clone(), Err: err}
		if err != nil {
			res.Status = StatusError
		} else if data, ok := value.(T); ok {
			res.Data, res.HasData, res.Status = data, true, StatusSuccess
		}
		return res
	}

	e = c.entries[key.mapKey()]
	e.fetching = false
	switch {
	case err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()):
		if e.hasData {
			e.status = StatusSuccess
		} else {
			e.status = StatusIdle
		}
		res := view[T](e)
		res.Err = err
		return res
	case err != nil:
		e.status = StatusError
		e.err = err
	default:
		e.data = value
		e.hasData = true
		e.status = StatusSuccess
		e.err = nil
		e.stale = e.version != version
		e.updatedAt = c.now()
	}
	return view[T](e)
}

func (c *Cache) run(ctx context.Context, key Key, fn func(context.Context) (any, error)) (any, error) {
	var (
		value any
		err   error
	)
	for attempt := 0; ; attempt++ {
		value, err = fn(ctx)
		if err == nil || attempt >= c.retries || ctx.Err() != nil {
			break
		}
		c.log.WithFields(logrus.Fields{"key": key.String(), "error": err}).Debug("retrying failed fetch")
	}
	if err != nil && ctx.Err() == nil {
		c.log.WithFields(logrus.Fields{"key": key.String(), "error": err}).Warn("fetch failed")
	}
	return value, err
}

// Peek returns the cached entry for key without fetching.
func Peek[T any](c *Cache, key Key) Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key.mapKey()]
	if e == nil {
		return Result[T]{Key: key.clone(), Status: StatusIdle}
	}
	return view[T](e)
}

// Set stores data for key as a fresh success entry.
func Set[T any](c *Cache, key Key, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key.mapKey()]
	if e == nil {
		e = &entry{key: key.clone()}
		c.entries[key.mapKey()] = e
	}
	e.data = data
	e.hasData = true
	e.status = StatusSuccess
	e.err = nil
	e.stale = false
	e.version++
	e.updatedAt = c.now()
}

// Invalidate marks every entry whose key starts with prefix as stale and
// returns the affected keys in sorted order. Stale entries keep their data
// until the next Fetch replaces it.
func (c *Cache) Invalidate(prefix Key) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []Key
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.stale = true
		e.version++
		keys = append(keys, e.key.clone())
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	if len(keys) > 0 {
		c.log.WithFields(logrus.Fields{"prefix": prefix.String(), "count": len(keys)}).Debug("invalidated")
	}
	return keys
}

// Clear drops every entry. Fetches already running when Clear is called do
// not repopulate the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.gen++
	c.log.Debug("cleared")
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func view[T any](e *entry) Result[T] {
	res := Result[T]{
		Key:       e.key.clone(),
		Status:    e.status,
		Err:       e.err,
		Stale:     e.stale,
		Fetching:  e.fetching,
		UpdatedAt: e.updatedAt,
	}
	if e.hasData {
		if data, ok := e.data.(T); ok {
			res.Data = data
			res.HasData = true
		}
	}
	return res
}
