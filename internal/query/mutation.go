package query

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Stage is a point in a mutation's lifecycle.
type Stage int

const (
	StagePending Stage = iota
	StageSucceeded
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Settled reports whether the stage is terminal.
func (s Stage) Settled() bool {
	return s == StageSucceeded || s == StageFailed
}

// Event is one stage transition of a mutation call.
type Event[V, R any] struct {
	Stage       Stage
	Vars        V
	Result      R
	Err         error
	Invalidated []Key
}

// Mutation performs a server write and invalidates the affected keys once
// the write has succeeded. Mutations are never retried.
type Mutation[V, R any] struct {
	name        string
	cache       *Cache
	fn          func(context.Context, V) (R, error)
	invalidates func(V, R) []Key

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(Event[V, R])
	pending int
}

// NewMutation binds fn to cache. invalidates may be nil.
func NewMutation[V, R any](name string, cache *Cache, fn func(context.Context, V) (R, error), invalidates func(V, R) []Key) *Mutation[V, R] {
	return &Mutation[V, R]{
		name:        name,
		cache:       cache,
		fn:          fn,
		invalidates: invalidates,
		subs:        make(map[int]func(Event[V, R])),
	}
}

// Subscribe registers fn for every stage transition and returns a function
// that removes it.
func (m *Mutation[V, R]) Subscribe(fn func(Event[V, R])) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Pending reports whether any call is in flight.
func (m *Mutation[V, R]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

// Mutate runs the write and returns the settled event.
func (m *Mutation[V, R]) Mutate(ctx context.Context, vars V) Event[V, R] {
	m.mu.Lock()
	m.pending++
	m.mu.Unlock()
	m.emit(Event[V, R]{Stage: StagePending, Vars: vars})

	result, err := m.fn(ctx, vars)

	ev := Event[V, R]{Vars: vars, Result: result, Err: err}
	if err != nil {
		ev.Stage = StageFailed
		m.cache.log.WithFields(logrus.Fields{"mutation": m.name, "error": err}).Warn("mutation failed")
	} else {
		ev.Stage = StageSucceeded
		if m.invalidates != nil {
			for _, prefix := range m.invalidates(vars, result) {
				ev.Invalidated = append(ev.Invalidated, m.cache.Invalidate(prefix)...)
			}
		}
		m.cache.log.WithFields(logrus.Fields{"mutation": m.name, "invalidated": len(ev.Invalidated)}).Debug("mutation succeeded")
	}

	m.mu.Lock()
	m.pending--
	m.mu.Unlock()
	m.emit(ev)
	return ev
}

func (m *Mutation[V, R]) emit(ev Event[V, R]) {
	m.mu.Lock()
	subs := make([]func(Event[V, R]), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}
